package transport

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

type recordingHandler struct {
	mu          sync.Mutex
	completions []*wire.Completion
	events      []*wire.Event
}

func (h *recordingHandler) HandleCompletion(c *wire.Completion) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completions = append(h.completions, c)
	return nil
}

func (h *recordingHandler) HandleEvent(ev *wire.Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return 1
}

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.completions), len(h.events)
}

type chanPoster chan func()

func (p chanPoster) Post(fn func()) bool {
	p <- fn
	return true
}

func TestStreamSendAckCompletion(t *testing.T) {
	scriptSide, nativeSide := net.Pipe()
	defer nativeSide.Close()

	s := NewStream(scriptSide, StreamConfig{})
	h := &recordingHandler{}
	poster := make(chanPoster, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(ctx, h, poster) }()

	native := NewFramer(nativeSide)
	processed := false

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- s.Send(&wire.Request{
			CallID:     "create-btn1",
			Operation:  wire.OpCreate,
			EntityID:   "btn1",
			WidgetType: "Button",
		}, func() { processed = true })
	}()

	f, err := native.ReadWireFrame()
	require.NoError(t, err)
	require.NoError(t, <-sendErr)
	require.Equal(t, wire.FrameRequest, f.Kind)
	assert.Equal(t, wire.MessageName, f.Request.MessageName)
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, native.WriteWireFrame(wire.CompletionFrame(&wire.Completion{
		Kind: wire.CompletionCreated, CallID: "create-btn1", EntityID: "btn1", Handle: 1,
	})))
	require.NoError(t, native.WriteWireFrame(wire.AckFrame(f.Seq)))

	// Deliveries run only when the poster runs them, in arrival order.
	(<-poster)()
	c, _ := h.counts()
	assert.Equal(t, 1, c)
	assert.False(t, processed)

	(<-poster)()
	assert.True(t, processed)
	assert.Equal(t, 0, s.Pending())

	require.NoError(t, native.WriteWireFrame(wire.EventFrame(&wire.Event{Handle: 1, Type: wire.EventClicked})))
	(<-poster)()
	_, e := h.counts()
	assert.Equal(t, 1, e)

	cancel()
	select {
	case err := <-serveErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestStreamIgnoresUnknownAck(t *testing.T) {
	scriptSide, nativeSide := net.Pipe()
	defer nativeSide.Close()

	s := NewStream(scriptSide, StreamConfig{})
	h := &recordingHandler{}

	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), h, nil) }()

	native := NewFramer(nativeSide)
	require.NoError(t, native.WriteWireFrame(wire.AckFrame(99)))
	require.NoError(t, native.WriteWireFrame(wire.EventFrame(&wire.Event{Handle: 2, Type: wire.EventClicked})))

	require.Eventually(t, func() bool {
		_, e := h.counts()
		return e == 1
	}, 2*time.Second, 5*time.Millisecond)

	nativeSide.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return on EOF")
	}
}

func TestStreamSendAfterClose(t *testing.T) {
	scriptSide, nativeSide := net.Pipe()
	defer nativeSide.Close()

	s := NewStream(scriptSide, StreamConfig{})
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	err := s.Send(&wire.Request{CallID: "destroy-a", Operation: wire.OpDestroy, Widget: 1}, nil)
	assert.ErrorIs(t, err, ErrStreamClosed)

	select {
	case <-s.Done():
	default:
		t.Error("Done not closed")
	}
}

func TestStreamSendInvalidRequest(t *testing.T) {
	scriptSide, nativeSide := net.Pipe()
	defer nativeSide.Close()
	defer scriptSide.Close()

	s := NewStream(scriptSide, StreamConfig{})
	err := s.Send(&wire.Request{Operation: wire.OpDestroy, Widget: 1}, func() {})
	assert.ErrorIs(t, err, wire.ErrMissingCallID)
	assert.Equal(t, 0, s.Pending(), "refused send leaves nothing pending")
}

func TestServerAcceptsAndServes(t *testing.T) {
	served := make(chan string, 1)
	srv, err := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		OnConnect: func(ctx context.Context, conn *ServerConn) {
			f, err := conn.Framer().ReadWireFrame()
			if err != nil {
				return
			}
			served <- f.Request.CallID
			conn.Framer().WriteWireFrame(wire.AckFrame(f.Seq))
			<-ctx.Done()
		},
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	s, err := Dial(context.Background(), srv.Addr().String(), StreamConfig{})
	require.NoError(t, err)
	defer s.Close()

	acked := make(chan struct{})
	go s.Serve(context.Background(), &recordingHandler{}, nil)
	require.NoError(t, s.Send(&wire.Request{CallID: "screenShow-main", Operation: wire.OpScreenShow, Widget: 1},
		func() { close(acked) }))

	select {
	case id := <-served:
		assert.Equal(t, "screenShow-main", id)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive request")
	}
	select {
	case <-acked:
	case <-time.After(2 * time.Second):
		t.Fatal("no ack")
	}
	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNewServerRequiresHandler(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}
