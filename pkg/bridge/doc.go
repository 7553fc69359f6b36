// Package bridge lets script code drive a handle-based native UI runtime.
//
// A Session owns all bridge state: the id to handle registry, the table of
// pending calls, the widget event dispatcher and the live entities. Script
// code works with Entity values identified by string ids; the session turns
// entity operations into wire requests, hands them to a transport.Sender and
// resolves the callbacks when the native completion arrives.
//
// # Ordering
//
// Operations on an entity that has not been created yet, or that reference
// an entity without a handle, are queued. The queue drains one request at a
// time: the next queued operation is issued only after the native side has
// processed the previous one. Operations on a created entity whose
// references all resolve are sent immediately.
//
// # Threading
//
// A Session is not safe for concurrent use. All calls, including inbound
// deliveries from the transport, must happen on one goroutine; see package
// runloop.
package bridge
