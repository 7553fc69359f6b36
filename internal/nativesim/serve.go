package nativesim

import (
	"context"
	"errors"
	"io"

	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Serve answers request frames read from f until the connection ends. Each
// request gets a completion frame followed by an ack frame. Close the
// underlying connection to stop it early.
func (r *Runtime) Serve(ctx context.Context, f *transport.Framer) error {
	r.mu.Lock()
	r.out = f
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		if r.out == f {
			r.out = nil
		}
		r.mu.Unlock()
	}()

	for {
		fr, err := f.ReadWireFrame()
		if err != nil {
			if errors.Is(err, transport.ErrMalformedFrame) {
				r.debugLog("Serve: dropping malformed frame", "error", err)
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if fr.Kind != wire.FrameRequest {
			r.debugLog("Serve: ignoring frame", "kind", fr.Kind.String())
			continue
		}

		c := r.Process(fr.Request)
		if err := r.write(wire.CompletionFrame(c)); err != nil {
			return err
		}
		if err := r.write(wire.AckFrame(fr.Seq)); err != nil {
			return err
		}
	}
}

// ServeConn serves conn and closes it when ctx is done or the peer hangs up.
func (r *Runtime) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()
	return r.Serve(ctx, transport.NewFramer(conn))
}

// write sends one frame on the served connection. Writes are serialized so
// events and replies never interleave.
func (r *Runtime) write(fr *wire.Frame) error {
	r.mu.Lock()
	out := r.out
	r.mu.Unlock()
	if out == nil {
		return ErrNotServing
	}

	r.wmu.Lock()
	defer r.wmu.Unlock()
	return out.WriteWireFrame(fr)
}
