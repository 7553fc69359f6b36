// Package events routes native widget events to script listeners.
package events

import "github.com/nativeui-go/nativeui/pkg/wire"

// Listener receives a widget event.
type Listener func(ev wire.Event)

type key struct {
	handle wire.Handle
	typ    wire.EventType
}

// Binding is one registered listener.
type Binding struct {
	d        *Dispatcher
	key      key
	listener Listener
	removed  bool
}

// Handle returns the widget handle the binding listens on.
func (b *Binding) Handle() wire.Handle { return b.key.handle }

// Type returns the event type the binding listens for.
func (b *Binding) Type() wire.EventType { return b.key.typ }

// Remove unbinds the listener. Removing twice is a no-op.
func (b *Binding) Remove() {
	if b.removed {
		return
	}
	b.d.remove(b)
}

// Dispatcher keeps ordered listener lists keyed by (handle, event type).
//
// Listeners for the same key run in registration order. Registration is
// additive. Dispatcher is not safe for concurrent use; events are delivered
// on the session's loop.
type Dispatcher struct {
	bindings map[key][]*Binding
	count    int
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{bindings: make(map[key][]*Binding)}
}

// Register appends a listener for events of type typ on handle h.
func (d *Dispatcher) Register(h wire.Handle, typ wire.EventType, l Listener) *Binding {
	b := &Binding{d: d, key: key{handle: h, typ: typ}, listener: l}
	d.bindings[b.key] = append(d.bindings[b.key], b)
	d.count++
	return b
}

// Dispatch delivers ev to every listener bound to its handle and type and
// returns how many ran. Events without listeners are dropped.
//
// The listener list is fixed when dispatch starts: a listener added during
// dispatch first runs for the next event, and a listener removed during
// dispatch is skipped.
func (d *Dispatcher) Dispatch(ev wire.Event) int {
	list := d.bindings[key{handle: ev.Handle, typ: ev.Type}]
	if len(list) == 0 {
		return 0
	}
	snapshot := make([]*Binding, len(list))
	copy(snapshot, list)

	n := 0
	for _, b := range snapshot {
		if b.removed {
			continue
		}
		b.listener(ev)
		n++
	}
	return n
}

// RemoveHandle drops every binding of h and returns how many were removed.
func (d *Dispatcher) RemoveHandle(h wire.Handle) int {
	n := 0
	for k, list := range d.bindings {
		if k.handle != h {
			continue
		}
		for _, b := range list {
			b.removed = true
		}
		n += len(list)
		delete(d.bindings, k)
	}
	d.count -= n
	return n
}

// Count returns the number of live bindings.
func (d *Dispatcher) Count() int {
	return d.count
}

// CountFor returns the number of live bindings for a handle and type.
func (d *Dispatcher) CountFor(h wire.Handle, typ wire.EventType) int {
	return len(d.bindings[key{handle: h, typ: typ}])
}

func (d *Dispatcher) remove(b *Binding) {
	b.removed = true
	list := d.bindings[b.key]
	for i, x := range list {
		if x != b {
			continue
		}
		next := make([]*Binding, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(d.bindings, b.key)
		} else {
			d.bindings[b.key] = next
		}
		d.count--
		return
	}
}
