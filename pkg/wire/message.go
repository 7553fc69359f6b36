package wire

import (
	"errors"
	"fmt"
)

// MessageName is the message name every request carries. The native host
// dispatches widget requests on it before looking at the action.
const MessageName = "NativeUI"

// CompletionKind distinguishes the three completion replies.
type CompletionKind uint8

const (
	// CompletionCreated reports a successful create with the new handle.
	CompletionCreated CompletionKind = 1

	// CompletionSuccess reports a successful operation and an optional value.
	CompletionSuccess CompletionKind = 2

	// CompletionError reports a failed operation with a native result code.
	CompletionError CompletionKind = 3
)

// String returns the completion kind name.
func (k CompletionKind) String() string {
	switch k {
	case CompletionCreated:
		return "created"
	case CompletionSuccess:
		return "success"
	case CompletionError:
		return "error"
	default:
		return "unknown"
	}
}

// IsValid returns true if the completion kind is known.
func (k CompletionKind) IsValid() bool {
	return k >= CompletionCreated && k <= CompletionError
}

// Validation errors.
var (
	ErrMissingCallID     = errors.New("missing call id")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidIndex      = errors.New("invalid insert index")
	ErrTooMuchEventData  = errors.New("too many event data arguments")
	ErrInvalidFrame      = errors.New("invalid frame")
	ErrInvalidCompletion = errors.New("invalid completion")
)

// Request is a widget request sent to the native runtime.
//
// CBOR encoding:
//
//	{
//	  1: messageName,  // "NativeUI"
//	  2: callId,       // echoed by the completion
//	  3: operation,    // uint8
//	  4: entityId,     // script-side id (create, for the created reply)
//	  5: widgetType,   // create
//	  6: widget,       // target handle
//	  7: parent,       // parent handle (addChild, insertChild)
//	  8: child,        // child handle (addChild, insertChild, stackPush)
//	  9: index,        // insertChild, -1 appends
//	  10: property,    // setProperty, getProperty
//	  11: value,       // setProperty
//	  12: eventType    // registerListener
//	}
type Request struct {
	MessageName string    `cbor:"1,keyasint"`
	CallID      string    `cbor:"2,keyasint"`
	Operation   Operation `cbor:"3,keyasint"`
	EntityID    string    `cbor:"4,keyasint,omitempty"`
	WidgetType  string    `cbor:"5,keyasint,omitempty"`
	Widget      Handle    `cbor:"6,keyasint,omitempty"`
	Parent      Handle    `cbor:"7,keyasint,omitempty"`
	Child       Handle    `cbor:"8,keyasint,omitempty"`
	Index       int32     `cbor:"9,keyasint,omitempty"`
	Property    string    `cbor:"10,keyasint,omitempty"`
	Value       string    `cbor:"11,keyasint,omitempty"`
	EventType   EventType `cbor:"12,keyasint,omitempty"`
}

// Validate checks the request carries the fields its operation needs.
func (r *Request) Validate() error {
	if !r.Operation.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidOperation, r.Operation)
	}
	if r.CallID == "" {
		return ErrMissingCallID
	}

	switch r.Operation {
	case OpCreate:
		if r.WidgetType == "" {
			return fmt.Errorf("%w: %s needs widget type", ErrMissingField, r.Operation)
		}
		if r.EntityID == "" {
			return fmt.Errorf("%w: %s needs entity id", ErrMissingField, r.Operation)
		}
	case OpAddChild:
		if !r.Parent.Valid() || !r.Child.Valid() {
			return fmt.Errorf("%w: %s needs parent and child", ErrMissingField, r.Operation)
		}
	case OpInsertChild:
		if !r.Parent.Valid() || !r.Child.Valid() {
			return fmt.Errorf("%w: %s needs parent and child", ErrMissingField, r.Operation)
		}
		if r.Index < -1 {
			return fmt.Errorf("%w: %d", ErrInvalidIndex, r.Index)
		}
	case OpStackPush:
		if !r.Widget.Valid() || !r.Child.Valid() {
			return fmt.Errorf("%w: %s needs stack and screen", ErrMissingField, r.Operation)
		}
	case OpSetProperty, OpGetProperty:
		if !r.Widget.Valid() || r.Property == "" {
			return fmt.Errorf("%w: %s needs widget and property", ErrMissingField, r.Operation)
		}
	case OpRegisterListener:
		if !r.Widget.Valid() || r.EventType == "" {
			return fmt.Errorf("%w: %s needs widget and event type", ErrMissingField, r.Operation)
		}
	default:
		if !r.Widget.Valid() {
			return fmt.Errorf("%w: %s needs widget", ErrMissingField, r.Operation)
		}
	}
	return nil
}

// Completion is the native reply to one request, matched by call ID.
//
// CBOR encoding:
//
//	{
//	  1: kind,      // 1=created, 2=success, 3=error
//	  2: callId,
//	  3: entityId,  // created only
//	  4: handle,    // created only
//	  5: code,      // result code
//	  6: value      // success value (getProperty)
//	}
type Completion struct {
	Kind     CompletionKind `cbor:"1,keyasint"`
	CallID   string         `cbor:"2,keyasint"`
	EntityID string         `cbor:"3,keyasint,omitempty"`
	Handle   Handle         `cbor:"4,keyasint,omitempty"`
	Code     ResultCode     `cbor:"5,keyasint,omitempty"`
	Value    string         `cbor:"6,keyasint,omitempty"`
}

// Validate checks the completion is well formed.
func (c *Completion) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: kind %d", ErrInvalidCompletion, c.Kind)
	}
	if c.CallID == "" {
		return ErrMissingCallID
	}
	return nil
}

// Event is a widget event raised by the native runtime.
//
// CBOR encoding:
//
//	{
//	  1: handle,
//	  2: eventType,
//	  3: [data...]   // up to three integers
//	}
type Event struct {
	Handle Handle    `cbor:"1,keyasint"`
	Type   EventType `cbor:"2,keyasint"`
	Data   []int32   `cbor:"3,keyasint,omitempty"`
}

// Validate checks the event is well formed.
func (e *Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: event type", ErrMissingField)
	}
	if len(e.Data) > MaxEventData {
		return fmt.Errorf("%w: %d", ErrTooMuchEventData, len(e.Data))
	}
	return nil
}

// FrameKind identifies the payload of a frame.
type FrameKind uint8

const (
	// FrameRequest carries a request, script to native.
	FrameRequest FrameKind = 1

	// FrameAck acknowledges that the request with the same sequence number
	// was processed.
	FrameAck FrameKind = 2

	// FrameCompletion carries a completion, native to script.
	FrameCompletion FrameKind = 3

	// FrameEvent carries a widget event, native to script.
	FrameEvent FrameKind = 4
)

// String returns the frame kind name.
func (k FrameKind) String() string {
	switch k {
	case FrameRequest:
		return "request"
	case FrameAck:
		return "ack"
	case FrameCompletion:
		return "completion"
	case FrameEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Frame is the envelope moved by stream transports.
//
// CBOR encoding:
//
//	{
//	  1: kind,
//	  2: seq,         // request sequence number (request, ack)
//	  3: request,
//	  4: completion,
//	  5: event
//	}
type Frame struct {
	Kind       FrameKind   `cbor:"1,keyasint"`
	Seq        uint32      `cbor:"2,keyasint,omitempty"`
	Request    *Request    `cbor:"3,keyasint,omitempty"`
	Completion *Completion `cbor:"4,keyasint,omitempty"`
	Event      *Event      `cbor:"5,keyasint,omitempty"`
}

// Validate checks that the frame kind and its payload agree.
func (f *Frame) Validate() error {
	switch f.Kind {
	case FrameRequest:
		if f.Request == nil || f.Seq == 0 {
			return fmt.Errorf("%w: request frame needs request and seq", ErrInvalidFrame)
		}
		return f.Request.Validate()
	case FrameAck:
		if f.Seq == 0 {
			return fmt.Errorf("%w: ack needs seq", ErrInvalidFrame)
		}
		return nil
	case FrameCompletion:
		if f.Completion == nil {
			return fmt.Errorf("%w: completion frame without completion", ErrInvalidFrame)
		}
		return f.Completion.Validate()
	case FrameEvent:
		if f.Event == nil {
			return fmt.Errorf("%w: event frame without event", ErrInvalidFrame)
		}
		return f.Event.Validate()
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidFrame, f.Kind)
	}
}
