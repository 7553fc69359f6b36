package transport

import "github.com/nativeui-go/nativeui/pkg/wire"

// Sender delivers requests to the native runtime.
//
// onProcessed, if not nil, runs once the native side has processed the
// request. It runs on the session's goroutine. A returned error means the
// request was not sent and onProcessed will never run.
type Sender interface {
	Send(req *wire.Request, onProcessed func()) error
}

// Handler receives inbound completions and widget events.
// Implemented by bridge.Session.
type Handler interface {
	HandleCompletion(c *wire.Completion) error
	HandleEvent(ev *wire.Event) int
}

// Poster schedules a function on the goroutine that owns session state.
// Implemented by runloop.Loop.
type Poster interface {
	Post(fn func()) bool
}

// FrameReadWriter provides length-prefixed frame I/O.
// Implemented by Framer.
type FrameReadWriter interface {
	// ReadFrame reads a length-prefixed frame.
	ReadFrame() ([]byte, error)

	// WriteFrame writes a length-prefixed frame.
	WriteFrame(data []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ Sender          = (*Stream)(nil)
	_ FrameReadWriter = (*Framer)(nil)
)
