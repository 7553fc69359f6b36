package nativesim

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

type recorder struct {
	mu          sync.Mutex
	completions []*wire.Completion
	events      []*wire.Event
}

func (h *recorder) HandleCompletion(c *wire.Completion) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completions = append(h.completions, c)
	return nil
}

func (h *recorder) HandleEvent(ev *wire.Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return 1
}

func create(t *testing.T, r *Runtime, typ, id string) wire.Handle {
	t.Helper()
	c := r.Process(&wire.Request{
		CallID:     "create-" + id,
		Operation:  wire.OpCreate,
		EntityID:   id,
		WidgetType: typ,
	})
	require.Equal(t, wire.CompletionCreated, c.Kind, "create %s: code %s", id, c.Code)
	return c.Handle
}

func TestProcessCreateAllocatesHandles(t *testing.T) {
	r := New(Config{})

	h1 := create(t, r, "Screen", "screen")
	h2 := create(t, r, "Button", "btn1")

	assert.Equal(t, wire.Handle(1), h1)
	assert.Equal(t, wire.Handle(2), h2)

	w, ok := r.Lookup("btn1")
	require.True(t, ok)
	assert.Equal(t, h2, w.Handle)
	assert.Equal(t, "Button", w.Type)
	assert.Equal(t, 2, r.Len())
}

func TestProcessCreateUnknownType(t *testing.T) {
	r := New(Config{})
	c := r.Process(&wire.Request{CallID: "create-x", Operation: wire.OpCreate, EntityID: "x", WidgetType: "Teapot"})

	assert.Equal(t, wire.CompletionError, c.Kind)
	assert.Equal(t, wire.ResultInvalidTypeName, c.Code)
	assert.Equal(t, 0, r.Len())
}

func TestProcessTree(t *testing.T) {
	r := New(Config{})
	screen := create(t, r, "Screen", "screen")
	layout := create(t, r, "VerticalLayout", "layout")
	a := create(t, r, "Button", "a")
	b := create(t, r, "Button", "b")
	c := create(t, r, "Label", "c")

	tests := []struct {
		name string
		req  wire.Request
		want wire.ResultCode
	}{
		{"layout into screen", wire.Request{Operation: wire.OpAddChild, Parent: screen, Child: layout}, wire.ResultOK},
		{"append a", wire.Request{Operation: wire.OpAddChild, Parent: layout, Child: a}, wire.ResultOK},
		{"append c", wire.Request{Operation: wire.OpInsertChild, Parent: layout, Child: c, Index: -1}, wire.ResultOK},
		{"insert b at 1", wire.Request{Operation: wire.OpInsertChild, Parent: layout, Child: b, Index: 1}, wire.ResultOK},
		{"already parented", wire.Request{Operation: wire.OpAddChild, Parent: screen, Child: a}, wire.ResultError},
		{"leaf is not a layout", wire.Request{Operation: wire.OpAddChild, Parent: a, Child: screen}, wire.ResultInvalidLayout},
		{"unknown child", wire.Request{Operation: wire.OpAddChild, Parent: layout, Child: 99}, wire.ResultInvalidHandle},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.CallID = "call-" + string(rune('a'+i))
			got := r.Process(&req)
			if tt.want == wire.ResultOK {
				assert.Equal(t, wire.CompletionSuccess, got.Kind)
			} else {
				assert.Equal(t, wire.CompletionError, got.Kind)
				assert.Equal(t, tt.want, got.Code)
			}
		})
	}

	w, _ := r.Widget(layout)
	assert.Equal(t, []wire.Handle{a, b, c}, w.Children)

	got := r.Process(&wire.Request{CallID: "remove", Operation: wire.OpRemoveChild, Widget: b, Parent: layout})
	assert.Equal(t, wire.CompletionSuccess, got.Kind)
	w, _ = r.Widget(layout)
	assert.Equal(t, []wire.Handle{a, c}, w.Children)

	got = r.Process(&wire.Request{CallID: "destroy", Operation: wire.OpDestroy, Widget: layout})
	assert.Equal(t, wire.CompletionSuccess, got.Kind)
	assert.Equal(t, 2, r.Len(), "screen and detached b remain")
	w, _ = r.Widget(screen)
	assert.Empty(t, w.Children)
}

func TestProcessProperties(t *testing.T) {
	r := New(Config{})
	h := create(t, r, "Label", "label")

	c := r.Process(&wire.Request{CallID: "get-1", Operation: wire.OpGetProperty, Widget: h, Property: "text"})
	assert.Equal(t, wire.ResultInvalidPropertyName, c.Code)

	c = r.Process(&wire.Request{CallID: "set-1", Operation: wire.OpSetProperty, Widget: h, Property: "text", Value: "hi"})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)

	c = r.Process(&wire.Request{CallID: "get-2", Operation: wire.OpGetProperty, Widget: h, Property: "text"})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)
	assert.Equal(t, "hi", c.Value)

	c = r.Process(&wire.Request{CallID: "set-2", Operation: wire.OpSetProperty, Widget: h, Property: "enabled", Value: "maybe"})
	assert.Equal(t, wire.ResultInvalidPropertyValue, c.Code)
}

func TestProcessScreens(t *testing.T) {
	r := New(Config{})
	stack := create(t, r, "StackScreen", "stack")
	screen := create(t, r, "Screen", "screen")
	button := create(t, r, "Button", "button")
	dialog := create(t, r, "Dialog", "dialog")

	c := r.Process(&wire.Request{CallID: "show-button", Operation: wire.OpScreenShow, Widget: button})
	assert.Equal(t, wire.ResultInvalidScreen, c.Code)

	c = r.Process(&wire.Request{CallID: "show-stack", Operation: wire.OpScreenShow, Widget: stack})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)
	assert.Equal(t, stack, r.Screen())

	c = r.Process(&wire.Request{CallID: "pop-empty", Operation: wire.OpStackPop, Widget: stack})
	assert.Equal(t, wire.ResultError, c.Code)

	c = r.Process(&wire.Request{CallID: "push", Operation: wire.OpStackPush, Widget: stack, Child: screen})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)
	w, _ := r.Widget(stack)
	assert.Equal(t, []wire.Handle{screen}, w.Stack)

	c = r.Process(&wire.Request{CallID: "pop", Operation: wire.OpStackPop, Widget: stack})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)

	c = r.Process(&wire.Request{CallID: "modal", Operation: wire.OpModalShow, Widget: dialog})
	assert.Equal(t, wire.CompletionSuccess, c.Kind)
	w, _ = r.Widget(dialog)
	assert.True(t, w.Shown)

	c = r.Process(&wire.Request{CallID: "modal-button", Operation: wire.OpModalShow, Widget: button})
	assert.Equal(t, wire.CompletionError, c.Kind)
}

func TestFailNext(t *testing.T) {
	r := New(Config{})
	r.FailNext(wire.OpCreate, wire.ResultFeatureNotAvailable)

	c := r.Process(&wire.Request{CallID: "create-a", Operation: wire.OpCreate, EntityID: "a", WidgetType: "Button"})
	assert.Equal(t, wire.CompletionError, c.Kind)
	assert.Equal(t, wire.ResultFeatureNotAvailable, c.Code)

	create(t, r, "Button", "a")
}

func TestDirectDeliveryOrder(t *testing.T) {
	r := New(Config{})
	h := &recorder{}
	r.Attach(h)

	var order []string
	err := r.Send(&wire.Request{CallID: "create-a", Operation: wire.OpCreate, EntityID: "a", WidgetType: "Button"}, func() {
		order = append(order, "processed")
		h.mu.Lock()
		order = append(order, "completions="+string(rune('0'+len(h.completions))))
		h.mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Pending())
	assert.Equal(t, 0, r.Len(), "requests are processed on Step")

	assert.Equal(t, 1, r.Flush())
	assert.Equal(t, []string{"processed", "completions=1"}, order)
	require.Len(t, h.completions, 1)
	assert.Equal(t, wire.Handle(1), h.completions[0].Handle)

	require.NoError(t, r.Fire(1, wire.EventClicked, 7))
	assert.Empty(t, h.events)
	r.Flush()
	require.Len(t, h.events, 1)
	assert.Equal(t, []int32{7}, h.events[0].Data)

	assert.ErrorIs(t, r.Fire(42, wire.EventClicked), ErrUnknownWidget)
}

func TestSendErrors(t *testing.T) {
	r := New(Config{})
	req := &wire.Request{CallID: "create-a", Operation: wire.OpCreate, EntityID: "a", WidgetType: "Button"}

	assert.ErrorIs(t, r.Send(req, nil), ErrNoHandler)

	r.Attach(&recorder{})
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Send(req, nil), ErrClosed)
}

func TestLoadResource(t *testing.T) {
	r := New(Config{})
	r.Attach(&recorder{})

	var got []wire.Handle
	done := func(id string, h wire.Handle, err error) {
		require.NoError(t, err)
		got = append(got, h)
	}
	r.LoadResource("img/logo.png", "a-image", done)
	r.LoadResource("img/logo.png", "b-image", done)
	r.LoadResource("img/other.png", "c-image", done)
	r.Flush()

	require.Len(t, got, 3)
	assert.Equal(t, got[0], got[1])
	assert.NotEqual(t, got[0], got[2])
}

func TestServe(t *testing.T) {
	scriptSide, nativeSide := net.Pipe()
	defer scriptSide.Close()

	r := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- r.ServeConn(ctx, nativeSide) }()

	f := transport.NewFramer(scriptSide)
	req := &wire.Request{
		MessageName: wire.MessageName,
		CallID:      "create-btn1",
		Operation:   wire.OpCreate,
		EntityID:    "btn1",
		WidgetType:  "Button",
	}
	require.NoError(t, f.WriteWireFrame(wire.RequestFrame(1, req)))

	fr, err := f.ReadWireFrame()
	require.NoError(t, err)
	require.Equal(t, wire.FrameCompletion, fr.Kind, "completion precedes the ack")
	assert.Equal(t, "create-btn1", fr.Completion.CallID)
	assert.Equal(t, wire.Handle(1), fr.Completion.Handle)

	fr, err = f.ReadWireFrame()
	require.NoError(t, err)
	assert.Equal(t, wire.FrameAck, fr.Kind)
	assert.Equal(t, uint32(1), fr.Seq)

	go func() { _ = r.Fire(1, wire.EventClicked) }()
	fr, err = f.ReadWireFrame()
	require.NoError(t, err)
	require.Equal(t, wire.FrameEvent, fr.Kind)
	assert.Equal(t, wire.EventClicked, fr.Event.Type)

	scriptSide.Close()
	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the peer hung up")
	}
}
