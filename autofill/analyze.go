package autofill

import (
	"fmt"
	"strings"

	"jobfill/dom"
	"jobfill/models"
)

const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// FormField is a control described by a client that has no live page.
type FormField struct {
	FieldName   string   `json:"field_name"`
	FieldType   string   `json:"field_type"`
	FieldID     string   `json:"field_id,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Label       string   `json:"label,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// FieldMapping is the suggestion for one field. SuggestedValue is empty when
// nothing applies.
type FieldMapping struct {
	FieldName      string   `json:"field_name"`
	Kind           string   `json:"kind"`
	Category       Category `json:"category,omitempty"`
	SuggestedValue string   `json:"suggested_value"`
	Confidence     string   `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
}

// Analyzer suggests values for form fields without touching a page.
type Analyzer struct {
	resolver *Resolver
	intro    Introspector
}

func NewAnalyzer(resolver *Resolver) *Analyzer {
	if resolver == nil {
		resolver = NewResolver(nil, nil)
	}
	return &Analyzer{resolver: resolver}
}

// AnalyzeFields maps client-described fields onto profile values.
func (a *Analyzer) AnalyzeFields(fields []FormField, p *models.Profile) []FieldMapping {
	out := make([]FieldMapping, 0, len(fields))
	for _, ff := range fields {
		f := &Field{
			Kind:        kindForType(ff.FieldType, len(ff.Options) > 0),
			Name:        ff.FieldName,
			ID:          ff.FieldID,
			Placeholder: ff.Placeholder,
			Label:       ff.Label,
		}
		f.Text = combine(f.Name, f.ID, f.Placeholder, f.Label)
		var opts []dom.Option
		for i, o := range ff.Options {
			opts = append(opts, dom.Option{Index: i, Value: o, Text: o})
		}
		out = append(out, a.suggest(f, opts, p))
	}
	return out
}

// AnalyzeDocument maps every fillable control of a parsed page.
func (a *Analyzer) AnalyzeDocument(doc *dom.Document, p *models.Profile) []FieldMapping {
	controls := Discover(doc)
	var out []FieldMapping
	for _, el := range controls.Texts {
		out = append(out, a.suggest(a.intro.Describe(el), nil, p))
	}
	for _, el := range controls.Selects {
		out = append(out, a.suggest(a.intro.Describe(el), el.Options(), p))
	}
	for _, members := range controls.RadioGroups {
		f := a.intro.DescribeGroup(members)
		var opts []dom.Option
		for i, m := range members {
			label := optionLabel(m)
			opts = append(opts, dom.Option{Index: i, Value: firstNonEmpty(m.Attr("value"), label), Text: label})
		}
		out = append(out, a.suggest(f, opts, p))
	}
	for _, el := range controls.Checkboxes {
		out = append(out, a.suggest(a.intro.Describe(el), nil, p))
	}
	return out
}

func (a *Analyzer) suggest(f *Field, opts []dom.Option, p *models.Profile) FieldMapping {
	m := FieldMapping{FieldName: f.Key(), Kind: f.Kind.String(), Confidence: ConfidenceLow}

	if f.Kind == KindCheckbox {
		if IsConsent(f.Text) {
			m.SuggestedValue = "checked"
			m.Confidence = ConfidenceHigh
			m.Reasoning = "Consent language without marketing opt-in"
		} else {
			m.Reasoning = "Not a consent checkbox"
		}
		return m
	}

	var (
		res Resolution
		ok  bool
	)
	if f.Kind == KindRadioGroup {
		res, ok = a.resolver.ResolveChoice(f.Text)
	} else {
		res, ok = a.resolver.Resolve(f, p)
	}
	if !ok {
		m.Reasoning = "No pattern match found"
		if cat, matched := a.resolver.Classify(f); matched {
			m.Category = cat
			m.Reasoning = fmt.Sprintf("Matched pattern for %s but the profile has no value", cat)
		}
		return m
	}
	m.Category = res.Category
	m.SuggestedValue = res.Text()

	if len(opts) > 0 {
		idx := matchOption(opts, res)
		if idx < 0 {
			m.Reasoning = fmt.Sprintf("Matched pattern for %s but no option fits", res.Category)
			return m
		}
		m.SuggestedValue = firstNonEmpty(opts[idx].Text, opts[idx].Value)
	}
	m.Confidence = ConfidenceHigh
	m.Reasoning = fmt.Sprintf("Matched pattern for %s", res.Category)
	if res.Answer != "" {
		m.Reasoning += " (fixed answer)"
	}
	return m
}

func kindForType(fieldType string, hasOptions bool) WidgetKind {
	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "select", "select-one":
		return KindSelect
	case "radio":
		return KindRadioGroup
	case "checkbox":
		return KindCheckbox
	case "combobox", "autocomplete":
		return KindAutocomplete
	}
	if hasOptions {
		return KindSelect
	}
	return KindText
}
