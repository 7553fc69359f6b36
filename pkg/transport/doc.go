// Package transport carries bridge messages between the script session and
// a native UI runtime.
//
// The bridge itself only needs a Sender: something that accepts a request
// and later reports that the native side processed it. Stream implements
// Sender over any byte stream (TCP connection, child process pipes) using
// length-prefixed CBOR frames.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│  wire.Frame (CBOR, int keys)   │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│  TCP or process stdin/stdout   │
//	└────────────────────────────────┘
//
// # Processed Signal
//
// Every request frame carries a sequence number. The native side answers
// with an ack frame holding the same number once the request has been
// handled; Stream then runs the onProcessed callback given to Send. Acks
// are independent of completions, which are matched by call ID in the
// session.
//
// # Delivery
//
// Stream reads on its own goroutine but never touches session state there:
// every ack, completion and event is handed to a Poster (usually the
// session's run loop) and runs on that goroutine.
package transport
