package bridge

import (
	"errors"
	"fmt"

	"github.com/nativeui-go/nativeui/pkg/correlation"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Sentinel errors.
var (
	// ErrEntityDestroyed is returned for operations on a destroyed entity and
	// passed to queued operations dropped by a destroy.
	ErrEntityDestroyed = errors.New("entity destroyed")

	// ErrAlreadyCreated is returned by Create on an entity that is creating
	// or created.
	ErrAlreadyCreated = errors.New("entity already created")

	// ErrNotContainerRoot is returned by Show on an entity that cannot be a
	// top-level screen.
	ErrNotContainerRoot = errors.New("entity is not a container root")

	// ErrSessionClosed is returned for operations after Close and passed to
	// calls still pending at Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrDuplicateEntity is returned when an id is already used by a live entity.
	ErrDuplicateEntity = errors.New("duplicate entity id")

	// ErrNoResourceLoader is returned by SetImage when no loader is configured.
	ErrNoResourceLoader = errors.New("no resource loader configured")

	// ErrUnknownCall is returned for a completion without a pending call.
	ErrUnknownCall = correlation.ErrUnknownCall

	// ErrDuplicateCall is returned when a call ID is reused while live.
	ErrDuplicateCall = correlation.ErrDuplicateCall
)

// NativeError is a failure reported by the native runtime.
type NativeError struct {
	Op       wire.Operation
	CallID   string
	EntityID string
	Code     wire.ResultCode
}

// Error implements the error interface.
func (e *NativeError) Error() string {
	return fmt.Sprintf("%s %s: native error %s (%d)", e.Op, e.EntityID, e.Code, int32(e.Code))
}

// ProtocolError reports a completion that does not fit the call it names.
type ProtocolError struct {
	CallID string
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s: %s", e.CallID, e.Reason)
}

// IsNativeCode reports whether err is a NativeError with the given code.
func IsNativeCode(err error, code wire.ResultCode) bool {
	var ne *NativeError
	return errors.As(err, &ne) && ne.Code == code
}
