package nativesim

import "errors"

// Simulator errors.
var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("simulator closed")

	// ErrNoHandler is returned by Send when no handler is attached.
	ErrNoHandler = errors.New("no handler attached")

	// ErrUnknownWidget is returned by Fire for a handle that does not exist.
	ErrUnknownWidget = errors.New("unknown widget")

	// ErrNotServing is returned by Fire when the runtime has neither a
	// handler nor a connection.
	ErrNotServing = errors.New("simulator not connected")
)
