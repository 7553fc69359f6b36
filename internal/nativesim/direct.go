package nativesim

import (
	"fmt"

	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Compile-time interface satisfaction check.
var _ transport.Sender = (*Runtime)(nil)

// Attach sets the handler that receives completions and events in direct
// mode.
func (r *Runtime) Attach(h transport.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

// Send queues req. The next Step processes it, delivers the completion and
// then runs onProcessed.
func (r *Runtime) Send(req *wire.Request, onProcessed func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.handler == nil {
		return ErrNoHandler
	}
	req = cloneRequest(req)
	r.queue = append(r.queue, func() {
		c := r.Process(req)
		if err := r.deliverCompletion(c); err != nil {
			r.debugLog("Send: completion rejected", "callID", c.CallID, "error", err)
		}
		if onProcessed != nil {
			onProcessed()
		}
	})
	return nil
}

// Step runs the next queued delivery. It reports false when nothing is
// queued. Step must be called from the goroutine that owns the handler.
func (r *Runtime) Step() bool {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return false
	}
	fn := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	r.mu.Unlock()

	fn()
	return true
}

// Flush runs queued deliveries, including ones queued while flushing,
// until none remain. It returns the number of steps taken.
func (r *Runtime) Flush() int {
	n := 0
	for r.Step() {
		n++
	}
	return n
}

// Pending returns the number of queued deliveries.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Fire emits a widget event. In direct mode the event is delivered on the
// next Step; on a served connection it is written immediately.
func (r *Runtime) Fire(h wire.Handle, typ wire.EventType, data ...int32) error {
	ev := &wire.Event{Handle: h, Type: typ, Data: data}
	if err := ev.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.widgets[h]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownWidget, h)
	}
	out, handler := r.out, r.handler
	if out == nil && handler != nil {
		r.queue = append(r.queue, func() { handler.HandleEvent(ev) })
	}
	r.mu.Unlock()

	switch {
	case out != nil:
		return r.write(wire.EventFrame(ev))
	case handler != nil:
		return nil
	default:
		return ErrNotServing
	}
}

// LoadResource registers the resource at path and reports its handle on the
// next Step. Loading the same path twice yields the same handle.
func (r *Runtime) LoadResource(path, id string, done func(id string, h wire.Handle, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.resources[path]
	if !ok {
		h = r.next
		r.next++
		r.resources[path] = h
	}
	r.queue = append(r.queue, func() { done(id, h, nil) })
}

// Close refuses further sends and drops queued deliveries.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.queue = nil
	return nil
}

func (r *Runtime) deliverCompletion(c *wire.Completion) error {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h == nil {
		return ErrNoHandler
	}
	return h.HandleCompletion(c)
}

func cloneRequest(req *wire.Request) *wire.Request {
	cp := *req
	return &cp
}
