// Package attrs translates script-facing attribute names and values to the
// canonical names the native widget runtime expects.
package attrs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Translator maps attribute names and values to their canonical form.
// Unknown names and values are returned unchanged.
type Translator interface {
	Name(name string) string
	Value(value string) string
}

// FillParent is the native value for a dimension that fills its parent.
const FillParent = "-1"

var defaultNames = []string{
	"fontSize",
	"fontColor",
	"backgroundColor",
	"backgroundGradient",
	"currentTab",
	"backButtonEnabled",
	"textVerticalAlignment",
	"textHorizontalAlignment",
	"fontHandle",
	"maxNumberOfLines",
	"backgroundImage",
	"scaleMode",
	"showKeyboard",
	"editMode",
	"inputMode",
	"inputFlag",
	"accessoryType",
	"childVerticalAlignment",
	"childHorizontalAlignment",
	"paddingTop",
	"paddingLeft",
	"paddingRight",
	"paddingBottom",
	"softHook",
	"hardHook",
	"horizontalScrollBarEnabled",
	"verticalScrollBarEnabled",
	"enableZoom",
	"incrementProgress",
	"inProgress",
	"increaseValue",
	"decreaseValue",
	"maxDate",
	"minDate",
	"dayOfMonth",
	"currentHour",
	"currentMinute",
	"minValue",
	"maxValue",
}

var defaultValues = map[string]string{
	"100%": FillParent,
}

var containerRoots = map[string]struct{}{
	"Screen":      {},
	"TabScreen":   {},
	"StackScreen": {},
}

// IsContainerRoot returns true if widgets of this type can be shown as a
// top-level screen.
func IsContainerRoot(widgetType string) bool {
	_, ok := containerRoots[widgetType]
	return ok
}

// Table is a case-insensitive translation table.
type Table struct {
	names  map[string]string
	values map[string]string
}

// New creates an empty table.
func New() *Table {
	return &Table{
		names:  make(map[string]string),
		values: make(map[string]string),
	}
}

// Default returns the built-in widget property table.
func Default() *Table {
	t := New()
	for _, n := range defaultNames {
		t.SetName(n, n)
	}
	for k, v := range defaultValues {
		t.SetValue(k, v)
	}
	return t
}

// SetName maps name (matched case-insensitively) to canonical.
func (t *Table) SetName(name, canonical string) {
	t.names[strings.ToLower(name)] = canonical
}

// SetValue maps value (matched case-insensitively) to canonical.
func (t *Table) SetValue(value, canonical string) {
	t.values[strings.ToLower(value)] = canonical
}

// Name returns the canonical attribute name.
func (t *Table) Name(name string) string {
	if c, ok := t.names[strings.ToLower(name)]; ok {
		return c
	}
	return name
}

// Value returns the canonical attribute value.
func (t *Table) Value(value string) string {
	if c, ok := t.values[strings.ToLower(value)]; ok {
		return c
	}
	return value
}

// Len returns the number of name and value mappings.
func (t *Table) Len() (names, values int) {
	return len(t.names), len(t.values)
}

// overrides is the YAML shape of a translation file:
//
//	names:
//	  bgColor: backgroundColor
//	values:
//	  "50%": "-2"
type overrides struct {
	Names  map[string]string `yaml:"names"`
	Values map[string]string `yaml:"values"`
}

// Parse merges YAML overrides into the table.
func (t *Table) Parse(data []byte) error {
	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse attribute table: %w", err)
	}
	for k, v := range o.Names {
		t.SetName(k, v)
	}
	for k, v := range o.Values {
		t.SetValue(k, v)
	}
	return nil
}

// LoadFile merges the YAML overrides at path into the table.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attribute table: %w", err)
	}
	return t.Parse(data)
}

// Compile-time interface satisfaction check.
var _ Translator = (*Table)(nil)
