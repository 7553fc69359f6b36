package wire

// EventType names a widget event reported by the native runtime.
// Names outside the catalog below are carried through unchanged.
type EventType string

// Widget event catalog.
const (
	EventPointerPressed           EventType = "PointerPressed"
	EventPointerReleased          EventType = "PointerReleased"
	EventContentLoaded            EventType = "ContentLoaded"
	EventClicked                  EventType = "Clicked"
	EventItemClicked              EventType = "ItemClicked"
	EventTabChanged               EventType = "TabChanged"
	EventGLViewReady              EventType = "GLViewReady"
	EventWebViewURLChanged        EventType = "WebViewURLChanged"
	EventStackScreenPopped        EventType = "StackScreenPopped"
	EventSliderValueChanged       EventType = "SliderValueChanged"
	EventDatePickerValueChanged   EventType = "DatePickerValueChanged"
	EventNumberPickerValueChanged EventType = "NumberPickerValueChanged"
	EventVideoStateChanged        EventType = "VideoStateChanged"
	EventEditBoxEditingDidBegin   EventType = "EditBoxEditingDidBegin"
	EventEditBoxEditingDidEnd     EventType = "EditBoxEditingDidEnd"
	EventEditBoxTextChanged       EventType = "EditBoxTextChanged"
	EventEditBoxReturn            EventType = "EditBoxReturn"
	EventWebViewContentLoading    EventType = "WebViewContentLoading"
	EventWebViewHookInvoked       EventType = "WebViewHookInvoked"
	EventDialogDismissed          EventType = "DialogDismissed"
)

var knownEvents = map[EventType]struct{}{
	EventPointerPressed:           {},
	EventPointerReleased:          {},
	EventContentLoaded:            {},
	EventClicked:                  {},
	EventItemClicked:              {},
	EventTabChanged:               {},
	EventGLViewReady:              {},
	EventWebViewURLChanged:        {},
	EventStackScreenPopped:        {},
	EventSliderValueChanged:       {},
	EventDatePickerValueChanged:   {},
	EventNumberPickerValueChanged: {},
	EventVideoStateChanged:        {},
	EventEditBoxEditingDidBegin:   {},
	EventEditBoxEditingDidEnd:     {},
	EventEditBoxTextChanged:       {},
	EventEditBoxReturn:            {},
	EventWebViewContentLoading:    {},
	EventWebViewHookInvoked:       {},
	EventDialogDismissed:          {},
}

// IsKnown returns true if the event type is part of the widget event catalog.
func (t EventType) IsKnown() bool {
	_, ok := knownEvents[t]
	return ok
}

// MaxEventData is the maximum number of integer data arguments an event carries.
const MaxEventData = 3
