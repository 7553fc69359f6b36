// Package wire defines the message model exchanged with the native UI runtime.
//
// Messages are CBOR (RFC 8949) maps with integer keys. The script side sends
// requests; the native side answers with completions, raises events, and
// acknowledges every request once it has been processed.
//
// # Message Types
//
//   - Request: script to native (create, destroy, tree edits, properties,
//     screens, dialogs, listener registration)
//   - Completion: native to script (created, success or error for one call ID)
//   - Event: native to script (widget events keyed by handle and event type)
//   - Ack: native to script (the request with this sequence number was processed)
//
// # Call IDs
//
// Every request carries a call ID. The matching completion echoes it so the
// script side can find the callbacks registered for that call. Acks are
// unrelated to call IDs; they only report transport-level processing and
// use the frame sequence number instead.
package wire
