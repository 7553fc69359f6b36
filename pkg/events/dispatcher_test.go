package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

func TestDispatchOrder(t *testing.T) {
	d := NewDispatcher()

	var order []string
	d.Register(5, wire.EventClicked, func(wire.Event) { order = append(order, "first") })
	d.Register(5, wire.EventClicked, func(wire.Event) { order = append(order, "second") })
	d.Register(5, wire.EventPointerPressed, func(wire.Event) { order = append(order, "other type") })
	d.Register(6, wire.EventClicked, func(wire.Event) { order = append(order, "other handle") })

	n := d.Dispatch(wire.Event{Handle: 5, Type: wire.EventClicked})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 4, d.Count())
}

func TestDispatchPassesData(t *testing.T) {
	d := NewDispatcher()

	var got wire.Event
	d.Register(3, wire.EventItemClicked, func(ev wire.Event) { got = ev })

	d.Dispatch(wire.Event{Handle: 3, Type: wire.EventItemClicked, Data: []int32{4}})

	assert.Equal(t, wire.Handle(3), got.Handle)
	assert.Equal(t, []int32{4}, got.Data)
}

func TestDispatchUnbound(t *testing.T) {
	d := NewDispatcher()
	assert.Equal(t, 0, d.Dispatch(wire.Event{Handle: 9, Type: wire.EventClicked}))
	assert.Equal(t, 0, d.Dispatch(wire.Event{Handle: 9, Type: "SomethingNew"}))
}

func TestBindingRemove(t *testing.T) {
	d := NewDispatcher()

	calls := 0
	b := d.Register(1, wire.EventClicked, func(wire.Event) { calls++ })
	d.Register(1, wire.EventClicked, func(wire.Event) { calls += 10 })

	b.Remove()
	b.Remove()

	d.Dispatch(wire.Event{Handle: 1, Type: wire.EventClicked})
	assert.Equal(t, 10, calls)
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 1, d.CountFor(1, wire.EventClicked))
}

func TestRemoveDuringDispatch(t *testing.T) {
	d := NewDispatcher()

	var second *Binding
	calls := 0
	d.Register(1, wire.EventClicked, func(wire.Event) {
		calls++
		second.Remove()
	})
	second = d.Register(1, wire.EventClicked, func(wire.Event) { calls += 100 })

	n := d.Dispatch(wire.Event{Handle: 1, Type: wire.EventClicked})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, calls)
}

func TestAddDuringDispatch(t *testing.T) {
	d := NewDispatcher()

	added := 0
	d.Register(1, wire.EventClicked, func(wire.Event) {
		d.Register(1, wire.EventClicked, func(wire.Event) { added++ })
	})

	d.Dispatch(wire.Event{Handle: 1, Type: wire.EventClicked})
	assert.Equal(t, 0, added, "new listener waits for the next event")

	d.Dispatch(wire.Event{Handle: 1, Type: wire.EventClicked})
	assert.Equal(t, 1, added)
}

func TestRemoveHandle(t *testing.T) {
	d := NewDispatcher()

	called := false
	b := d.Register(2, wire.EventClicked, func(wire.Event) { called = true })
	d.Register(2, wire.EventTabChanged, func(wire.Event) { called = true })
	d.Register(3, wire.EventClicked, func(wire.Event) {})

	assert.Equal(t, 2, d.RemoveHandle(2))
	assert.Equal(t, 1, d.Count())
	assert.Zero(t, d.CountFor(2, wire.EventClicked))
	assert.Zero(t, d.CountFor(2, wire.EventTabChanged))
	assert.Equal(t, 1, d.CountFor(3, wire.EventClicked))

	d.Dispatch(wire.Event{Handle: 2, Type: wire.EventClicked})
	assert.False(t, called)

	// Removing a binding already dropped with its handle is a no-op.
	b.Remove()
	assert.Equal(t, 1, d.Count())
}
