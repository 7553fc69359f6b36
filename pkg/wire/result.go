package wire

import "strconv"

// Handle is an opaque widget handle assigned by the native runtime.
type Handle int32

// Valid returns true if the handle refers to a widget. The native runtime
// reports failed creation with zero or a negative result code.
func (h Handle) Valid() bool {
	return h > 0
}

// String returns the decimal form used when a handle is passed as a
// property value.
func (h Handle) String() string {
	return strconv.FormatInt(int64(h), 10)
}

// ResultCode is a native result code. Zero and positive values are success.
type ResultCode int32

const (
	// ResultOK indicates the operation succeeded.
	ResultOK ResultCode = 0

	// ResultError is the generic native failure.
	ResultError ResultCode = -2

	// ResultInvalidPropertyName indicates an unknown property for the widget type.
	ResultInvalidPropertyName ResultCode = -3

	// ResultInvalidPropertyValue indicates a value the property does not accept.
	ResultInvalidPropertyValue ResultCode = -4

	// ResultInvalidHandle indicates the handle does not refer to a live widget.
	ResultInvalidHandle ResultCode = -5

	// ResultInvalidTypeName indicates an unknown widget type.
	ResultInvalidTypeName ResultCode = -6

	// ResultInvalidIndex indicates an insert index out of range.
	ResultInvalidIndex ResultCode = -7

	// ResultInvalidStringBufferSize indicates a property value too large to return.
	ResultInvalidStringBufferSize ResultCode = -8

	// ResultInvalidScreen indicates the widget is not a screen.
	ResultInvalidScreen ResultCode = -9

	// ResultInvalidLayout indicates the parent cannot hold children.
	ResultInvalidLayout ResultCode = -10

	// ResultRemovedRoot indicates an attempt to remove a root widget.
	ResultRemovedRoot ResultCode = -11

	// ResultFeatureNotAvailable indicates the platform lacks the feature.
	ResultFeatureNotAvailable ResultCode = -12

	// ResultCannotInsertDialog indicates a dialog cannot be a child.
	ResultCannotInsertDialog ResultCode = -13
)

// String returns the result code name.
func (c ResultCode) String() string {
	switch c {
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	case ResultInvalidPropertyName:
		return "INVALID_PROPERTY_NAME"
	case ResultInvalidPropertyValue:
		return "INVALID_PROPERTY_VALUE"
	case ResultInvalidHandle:
		return "INVALID_HANDLE"
	case ResultInvalidTypeName:
		return "INVALID_TYPE_NAME"
	case ResultInvalidIndex:
		return "INVALID_INDEX"
	case ResultInvalidStringBufferSize:
		return "INVALID_STRING_BUFFER_SIZE"
	case ResultInvalidScreen:
		return "INVALID_SCREEN"
	case ResultInvalidLayout:
		return "INVALID_LAYOUT"
	case ResultRemovedRoot:
		return "REMOVED_ROOT"
	case ResultFeatureNotAvailable:
		return "FEATURE_NOT_AVAILABLE"
	case ResultCannotInsertDialog:
		return "CANNOT_INSERT_DIALOG"
	default:
		if c > 0 {
			return "OK"
		}
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the code indicates success.
func (c ResultCode) IsSuccess() bool {
	return c >= ResultOK
}
