package log

import (
	"time"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the bridge session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates whether the script or the native side logged it.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address, if any.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// EntityID is the script-side entity involved, if known.
	EntityID string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Entity/session state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the message encoding layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerSession is the bridge session layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which side of the bridge logged the event.
type Role uint8

const (
	// RoleScript is the scripting front-end.
	RoleScript Role = 0
	// RoleNative is the native UI runtime.
	RoleNative Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleScript:
		return "SCRIPT"
	case RoleNative:
		return "NATIVE"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded bridge message at the wire layer.
type MessageEvent struct {
	// Type distinguishes request/ack/completion/event.
	Type MessageType `cbor:"1,keyasint"`

	// Seq is the frame sequence number (requests and acks).
	Seq uint32 `cbor:"2,keyasint,omitempty"`

	// CallID correlates requests and completions.
	CallID string `cbor:"3,keyasint,omitempty"`

	// For requests: the operation being performed.
	Operation *wire.Operation `cbor:"4,keyasint,omitempty"`

	// Handle is the target widget (requests) or event source (events).
	Handle *wire.Handle `cbor:"5,keyasint,omitempty"`

	// For completions: the completion kind.
	Completion *wire.CompletionKind `cbor:"6,keyasint,omitempty"`

	// For completions: the native result code.
	Code *wire.ResultCode `cbor:"7,keyasint,omitempty"`

	// For events: the event type.
	EventType wire.EventType `cbor:"8,keyasint,omitempty"`

	// Property name and value (property requests, getProperty results).
	Property string `cbor:"9,keyasint,omitempty"`
	Value    string `cbor:"10,keyasint,omitempty"`

	// For events: the integer arguments.
	Data []int32 `cbor:"11,keyasint,omitempty"`
}

// MessageType distinguishes the frame kinds.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeAck indicates a processed acknowledgement.
	MessageTypeAck MessageType = 1
	// MessageTypeCompletion indicates a completion message.
	MessageTypeCompletion MessageType = 2
	// MessageTypeEvent indicates a widget event.
	MessageTypeEvent MessageType = 3
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeAck:
		return "ACK"
	case MessageTypeCompletion:
		return "COMPLETION"
	case MessageTypeEvent:
		return "EVENT"
	default:
		return "UNKNOWN"
	}
}

// MessageFromFrame builds the message event for a decoded frame.
func MessageFromFrame(f *wire.Frame) *MessageEvent {
	m := &MessageEvent{Seq: f.Seq}
	switch f.Kind {
	case wire.FrameRequest:
		m.Type = MessageTypeRequest
		if f.Request != nil {
			fillRequest(m, f.Request)
		}
	case wire.FrameAck:
		m.Type = MessageTypeAck
	case wire.FrameCompletion:
		m.Type = MessageTypeCompletion
		if c := f.Completion; c != nil {
			kind, code := c.Kind, c.Code
			m.CallID = c.CallID
			m.Completion = &kind
			m.Code = &code
			m.Value = c.Value
			if c.Handle != 0 {
				h := c.Handle
				m.Handle = &h
			}
		}
	case wire.FrameEvent:
		m.Type = MessageTypeEvent
		if e := f.Event; e != nil {
			h := e.Handle
			m.Handle = &h
			m.EventType = e.Type
			m.Data = e.Data
		}
	}
	return m
}

// MessageFromRequest builds the message event for an outbound request.
func MessageFromRequest(seq uint32, req *wire.Request) *MessageEvent {
	m := &MessageEvent{Type: MessageTypeRequest, Seq: seq}
	fillRequest(m, req)
	return m
}

func fillRequest(m *MessageEvent, req *wire.Request) {
	op := req.Operation
	m.CallID = req.CallID
	m.Operation = &op
	m.Property = req.Property
	m.Value = req.Value
	m.EventType = req.EventType
	if req.Widget != 0 {
		h := req.Widget
		m.Handle = &h
	}
}

// StateChangeEvent captures entity and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a transport connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 1
	// StateEntityWidget indicates a script entity state change.
	StateEntityWidget StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	case StateEntityWidget:
		return "WIDGET"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the native result code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
