package nativesim

import (
	"maps"
	"slices"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Widget types the simulator can create.
var widgetTypes = map[string]kind{
	"Screen":            kindScreen,
	"TabScreen":         kindTabScreen,
	"StackScreen":       kindStackScreen,
	"Dialog":            kindDialog,
	"HorizontalLayout":  kindLayout,
	"VerticalLayout":    kindLayout,
	"RelativeLayout":    kindLayout,
	"ListView":          kindLayout,
	"ListViewItem":      kindLayout,
	"Button":            kindLeaf,
	"ImageButton":       kindLeaf,
	"Label":             kindLeaf,
	"Image":             kindLeaf,
	"EditBox":           kindLeaf,
	"CheckBox":          kindLeaf,
	"ToggleButton":      kindLeaf,
	"WebView":           kindLeaf,
	"GLView":            kindLeaf,
	"GL2View":           kindLeaf,
	"Slider":            kindLeaf,
	"ProgressBar":       kindLeaf,
	"ActivityIndicator": kindLeaf,
	"DatePicker":        kindLeaf,
	"TimePicker":        kindLeaf,
	"NumberPicker":      kindLeaf,
	"VideoView":         kindLeaf,
	"NavBar":            kindLeaf,
	"SearchBar":         kindLeaf,
	"MapView":           kindLeaf,
}

type kind uint8

const (
	kindLeaf kind = iota
	kindLayout
	kindScreen
	kindTabScreen
	kindStackScreen
	kindDialog
)

func (k kind) isScreen() bool {
	return k == kindScreen || k == kindTabScreen || k == kindStackScreen
}

// Boolean properties reject values other than "true" and "false".
var boolProperties = []string{"enabled", "visible", "checked", "editable"}

// Widget is a snapshot of a simulated widget.
type Widget struct {
	Handle     wire.Handle
	Type       string
	EntityID   string
	Parent     wire.Handle
	Children   []wire.Handle
	Properties map[string]string
	Listeners  []wire.EventType
	Stack      []wire.Handle
	Shown      bool
}

type widget struct {
	handle    wire.Handle
	typ       string
	kind      kind
	entityID  string
	parent    wire.Handle
	children  []wire.Handle
	props     map[string]string
	listeners map[wire.EventType]struct{}
	stack     []wire.Handle
	shown     bool
}

func (w *widget) snapshot() Widget {
	listeners := make([]wire.EventType, 0, len(w.listeners))
	for t := range w.listeners {
		listeners = append(listeners, t)
	}
	slices.Sort(listeners)
	return Widget{
		Handle:     w.handle,
		Type:       w.typ,
		EntityID:   w.entityID,
		Parent:     w.parent,
		Children:   slices.Clone(w.children),
		Properties: maps.Clone(w.props),
		Listeners:  listeners,
		Stack:      slices.Clone(w.stack),
		Shown:      w.shown,
	}
}

// accepts reports whether w can hold child.
func (w *widget) accepts(child *widget) bool {
	switch w.kind {
	case kindTabScreen:
		return child.kind == kindScreen || child.kind == kindStackScreen
	case kindScreen, kindDialog:
		return !child.kind.isScreen() && child.kind != kindDialog && len(w.children) == 0
	case kindLayout:
		return !child.kind.isScreen() && child.kind != kindDialog
	default:
		return false
	}
}
