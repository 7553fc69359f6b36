package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nativeui-go/nativeui/pkg/log"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Stream errors.
var (
	ErrStreamClosed   = errors.New("stream closed")
	ErrAlreadyServing = errors.New("stream already serving")
)

// StreamConfig configures a Stream.
type StreamConfig struct {
	// MaxMessageSize is the maximum frame payload (default: 64KB).
	MaxMessageSize uint32

	// Logger for operational diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives frame and message events (optional).
	ProtocolLogger log.Logger

	// SessionID tags protocol log events.
	SessionID string
}

// Stream is a Sender over a byte stream.
type Stream struct {
	conn   io.ReadWriteCloser
	framer *Framer
	logger *slog.Logger

	mu      sync.Mutex
	nextSeq uint32
	pending map[uint32]func()
	closed  bool
	serving bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewStream wraps conn. Call Serve to start receiving.
func NewStream(conn io.ReadWriteCloser, config StreamConfig) *Stream {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	framer := NewFramerWithMaxSize(conn, config.MaxMessageSize)
	if config.ProtocolLogger != nil {
		framer.SetLogger(config.ProtocolLogger, config.SessionID, log.RoleScript)
	}
	return &Stream{
		conn:    conn,
		framer:  framer,
		logger:  config.Logger,
		pending: make(map[uint32]func()),
		done:    make(chan struct{}),
	}
}

// Send writes a request frame. onProcessed runs on the Serve poster when
// the matching ack arrives.
func (s *Stream) Send(req *wire.Request, onProcessed func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.nextSeq++
	if s.nextSeq == 0 {
		s.nextSeq = 1
	}
	seq := s.nextSeq
	if onProcessed != nil {
		s.pending[seq] = onProcessed
	}
	s.mu.Unlock()

	if req.MessageName == "" {
		req.MessageName = wire.MessageName
	}
	if err := s.framer.WriteWireFrame(wire.RequestFrame(seq, req)); err != nil {
		s.mu.Lock()
		delete(s.pending, seq)
		s.mu.Unlock()
		return fmt.Errorf("send %s: %w", req.CallID, err)
	}
	return nil
}

// Pending returns the number of requests still waiting for an ack.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Serve reads frames until the stream closes or ctx is done. Acks,
// completions and events are delivered through p; with a nil poster they
// run on the reading goroutine.
func (s *Stream) Serve(ctx context.Context, h Handler, p Poster) error {
	s.mu.Lock()
	if s.serving {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.serving = true
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	post := func(fn func()) {
		if p == nil {
			fn()
			return
		}
		if !p.Post(fn) {
			s.debugLog("Serve: poster rejected delivery")
		}
	}

	for {
		f, err := s.framer.ReadWireFrame()
		if err != nil {
			if s.isClosed() {
				return ctx.Err()
			}
			if errors.Is(err, ErrMalformedFrame) {
				s.debugLog("Serve: dropping malformed frame", "error", err)
				continue
			}
			s.Close()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		switch f.Kind {
		case wire.FrameAck:
			if fn := s.takePending(f.Seq); fn != nil {
				post(fn)
			}
		case wire.FrameCompletion:
			c := f.Completion
			post(func() {
				if err := h.HandleCompletion(c); err != nil {
					s.debugLog("Serve: completion rejected", "callID", c.CallID, "error", err)
				}
			})
		case wire.FrameEvent:
			ev := f.Event
			post(func() { h.HandleEvent(ev) })
		default:
			s.debugLog("Serve: unexpected frame from native side", "kind", f.Kind.String())
		}
	}
}

// Done is closed when the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Close closes the underlying connection. Requests still waiting for an
// ack are dropped.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		dropped := len(s.pending)
		s.pending = make(map[uint32]func())
		s.mu.Unlock()

		if dropped > 0 {
			s.debugLog("Close: dropping unacknowledged requests", "count", dropped)
		}
		err = s.conn.Close()
		close(s.done)
	})
	return err
}

func (s *Stream) takePending(seq uint32) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.pending[seq]
	if !ok {
		return nil
	}
	delete(s.pending, seq)
	return fn
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// debugLog logs a debug message if logging is enabled.
func (s *Stream) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
