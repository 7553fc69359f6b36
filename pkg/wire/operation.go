package wire

// Operation identifies a native widget operation.
type Operation uint8

const (
	// OpCreate creates a widget of a given type.
	OpCreate Operation = 1

	// OpDestroy destroys a widget and releases its handle.
	OpDestroy Operation = 2

	// OpAddChild appends a child widget to a parent.
	OpAddChild Operation = 3

	// OpInsertChild inserts a child widget at an index (-1 appends).
	OpInsertChild Operation = 4

	// OpRemoveChild detaches a widget from its parent.
	OpRemoveChild Operation = 5

	// OpSetProperty sets a widget property.
	OpSetProperty Operation = 6

	// OpGetProperty reads a widget property.
	OpGetProperty Operation = 7

	// OpScreenShow makes a screen the visible root.
	OpScreenShow Operation = 8

	// OpStackPush pushes a screen onto a stack screen.
	OpStackPush Operation = 9

	// OpStackPop pops the top screen of a stack screen.
	OpStackPop Operation = 10

	// OpModalShow shows a modal dialog.
	OpModalShow Operation = 11

	// OpModalHide hides a modal dialog.
	OpModalHide Operation = 12

	// OpRegisterListener asks the native side to start reporting an event
	// type for a widget.
	OpRegisterListener Operation = 13
)

// String returns the operation name. The name is also the call ID prefix.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDestroy:
		return "destroy"
	case OpAddChild:
		return "addChild"
	case OpInsertChild:
		return "insertChild"
	case OpRemoveChild:
		return "removeChild"
	case OpSetProperty:
		return "setProperty"
	case OpGetProperty:
		return "getProperty"
	case OpScreenShow:
		return "screenShow"
	case OpStackPush:
		return "stackPush"
	case OpStackPop:
		return "stackPop"
	case OpModalShow:
		return "modalShow"
	case OpModalHide:
		return "modalHide"
	case OpRegisterListener:
		return "registerListener"
	default:
		return "unknown"
	}
}

// Action returns the native action name the runtime dispatches on.
func (o Operation) Action() string {
	switch o {
	case OpCreate:
		return "maWidgetCreate"
	case OpDestroy:
		return "maWidgetDestroy"
	case OpAddChild:
		return "maWidgetAddChild"
	case OpInsertChild:
		return "maWidgetInsertChild"
	case OpRemoveChild:
		return "maWidgetRemoveChild"
	case OpSetProperty:
		return "maWidgetSetProperty"
	case OpGetProperty:
		return "maWidgetGetProperty"
	case OpScreenShow:
		return "maWidgetScreenShow"
	case OpStackPush:
		return "maWidgetStackScreenPush"
	case OpStackPop:
		return "maWidgetStackScreenPop"
	case OpModalShow:
		return "maWidgetModalDialogShow"
	case OpModalHide:
		return "maWidgetModalDialogHide"
	case OpRegisterListener:
		return "maWidgetRegisterListener"
	default:
		return ""
	}
}

// IsValid returns true if the operation is part of the closed operation set.
func (o Operation) IsValid() bool {
	return o >= OpCreate && o <= OpRegisterListener
}
