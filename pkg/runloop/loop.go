// Package runloop runs posted functions one at a time on a single goroutine.
//
// A bridge session is not safe for concurrent use. Everything that touches
// it (script code, transport deliveries, REPL input) is posted to one Loop,
// which gives the session the single-threaded cooperative model it expects
// without locks.
package runloop

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned when work is posted to a stopped loop.
var ErrStopped = errors.New("run loop stopped")

// ErrRunning is returned by Run when the loop has already been run.
var ErrRunning = errors.New("run loop already running")

// Loop is a FIFO queue of functions drained by Run.
// Post and Call are safe for concurrent use.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	started bool
	done    chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks, so functions running on the loop may
// post more work. Post reports false if the loop is stopped or fn is nil.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to run, returning its error.
// It must not be called from the loop goroutine.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		// The function may have run just before the loop stopped.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until Stop is called or ctx is done. Functions
// already queued when Stop is called still run. A loop runs once; later
// calls return ErrRunning.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrRunning
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.done)
	for {
		batch, stopped := l.take()
		for _, fn := range batch {
			fn()
		}
		if stopped {
			return nil
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.queue = nil
			l.mu.Unlock()
			return ctx.Err()
		}
	}
}

// Stop makes Run return once the queued functions have run.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Len returns the number of queued functions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch, l.stopped && len(batch) == 0
}
