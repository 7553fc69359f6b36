package runloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestPostRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}

	// Call runs after everything posted before it.
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestPostFromLoop(t *testing.T) {
	l, _ := startLoop(t)

	var order []string
	err := l.Call(context.Background(), func() error {
		l.Post(func() { order = append(order, "nested") })
		order = append(order, "outer")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	assert.Equal(t, []string{"outer", "nested"}, order)
}

func TestCallReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	boom := errors.New("boom")
	assert.ErrorIs(t, l.Call(context.Background(), func() error { return boom }), boom)
}

func TestConcurrentPosters(t *testing.T) {
	l, _ := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, l.Call(context.Background(), func() error { got = counter; return nil }))
	assert.Equal(t, 400, got)
}

func TestStopDrainsQueued(t *testing.T) {
	l := New()

	ran := 0
	l.Post(func() { ran++ })
	l.Post(func() { ran++ })
	l.Stop()

	assert.False(t, l.Post(func() { ran++ }))
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 2, ran)

	assert.ErrorIs(t, l.Call(context.Background(), func() error { return nil }), ErrStopped)
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, l.Post(func() {}))
}

func TestCallContextTimeout(t *testing.T) {
	l := New() // never run

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Call(ctx, func() error { return nil }), context.DeadlineExceeded)
	assert.Equal(t, 1, l.Len())
}

func TestPostNil(t *testing.T) {
	assert.False(t, New().Post(nil))
}

func TestRunTwice(t *testing.T) {
	l, _ := startLoop(t)
	require.NoError(t, l.Call(context.Background(), func() error { return nil }))

	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
	require.NoError(t, l.Call(context.Background(), func() error { return nil }), "first run keeps serving")

	l.Stop()
	<-l.Done()
	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}
