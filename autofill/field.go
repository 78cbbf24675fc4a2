package autofill

import (
	"strings"

	"jobfill/dom"
)

// WidgetKind is the structural family of a control.
type WidgetKind int

const (
	KindText WidgetKind = iota
	KindSelect
	KindRadioGroup
	KindCheckbox
	KindAutocomplete
)

func (k WidgetKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSelect:
		return "select"
	case KindRadioGroup:
		return "radio-group"
	case KindCheckbox:
		return "checkbox"
	case KindAutocomplete:
		return "autocomplete"
	}
	return "unknown"
}

// Field describes one control, or one radio group, for a single fill pass.
type Field struct {
	Element      *dom.Element
	Members      []*dom.Element
	Kind         WidgetKind
	Name         string
	ID           string
	Placeholder  string
	AriaLabel    string
	Label        string
	Autocomplete string
	MaxLength    int
	// Text is the normalised concatenation of every identifying string.
	Text string
}

// Key names the field in reports: its name, else its id, else its XPath.
func (f *Field) Key() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.ID != "":
		return f.ID
	case f.Element != nil:
		return f.Element.XPath()
	}
	return ""
}

// IsSelect reports whether the field is a native <select>.
func (f *Field) IsSelect() bool {
	return f.Element != nil && f.Element.Tag() == "select"
}

var identSeparators = strings.NewReplacer("_", " ", "-", " ")

// combine joins identifying strings into match text. Identifier separators
// become spaces so word boundaries hold for snake_case and kebab-case.
func combine(parts ...string) string {
	return normalize(identSeparators.Replace(strings.Join(parts, " ")))
}
