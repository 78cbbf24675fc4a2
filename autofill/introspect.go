package autofill

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"jobfill/dom"
)

const (
	labelSearchLevels = 5
	groupSearchLevels = 8
	groupContextLimit = 500
)

var labelClassPattern = regexp.MustCompile(`label|title|question`)

// autocompleteHint matches label text for fields that usually pop a
// suggestion list.
var autocompleteHint = regexp.MustCompile(`\blocation\b|\bcity\b|where ([a-z]+ )?you (live|located|based)`)

// Introspector extracts the human-readable text around a control.
type Introspector struct{}

// Describe builds the Field for a single control.
func (in Introspector) Describe(el *dom.Element) *Field {
	f := &Field{
		Element:      el,
		Name:         el.Name(),
		ID:           el.ID(),
		Placeholder:  el.Attr("placeholder"),
		AriaLabel:    el.Attr("aria-label"),
		Autocomplete: el.Attr("autocomplete"),
		MaxLength:    el.MaxLength(),
	}
	f.Label = in.LabelFor(el)
	f.Text = combine(f.Name, f.ID, f.Placeholder, f.AriaLabel, f.Label, f.Autocomplete)

	switch {
	case el.Tag() == "select":
		f.Kind = KindSelect
	case el.Type() == "checkbox":
		f.Kind = KindCheckbox
		f.Text = combine(f.Name, f.ID, f.AriaLabel, f.Label, ownContext(el))
	case el.Type() == "radio":
		f.Kind = KindRadioGroup
		f.Members = []*dom.Element{el}
	case isAutocomplete(el, f):
		f.Kind = KindAutocomplete
	default:
		f.Kind = KindText
	}
	return f
}

// DescribeGroup builds the Field for a radio group. The group's question
// text stands in for the label.
func (in Introspector) DescribeGroup(members []*dom.Element) *Field {
	first := members[0]
	f := &Field{
		Element: first,
		Members: members,
		Kind:    KindRadioGroup,
		Name:    first.Name(),
		ID:      first.ID(),
	}
	f.Label = in.GroupContextFor(members)
	f.Text = combine(f.Name, f.Label)
	return f
}

func isAutocomplete(el *dom.Element, f *Field) bool {
	if strings.EqualFold(el.Attr("role"), "combobox") {
		return true
	}
	if ac := strings.ToLower(el.Attr("aria-autocomplete")); ac == "list" || ac == "both" {
		return true
	}
	if strings.EqualFold(el.Attr("aria-haspopup"), "listbox") {
		return true
	}
	class := strings.ToLower(el.Attr("class"))
	if strings.Contains(class, "autocomplete") || strings.Contains(class, "typeahead") {
		return true
	}
	return autocompleteHint.MatchString(normalize(f.Label + " " + f.Placeholder))
}

// LabelFor returns the visible label of a control. The first non-empty
// source wins: label[for], aria-labelledby, aria-label, a wrapping label,
// a label-like element within a few ancestor levels, the placeholder.
func (in Introspector) LabelFor(el *dom.Element) string {
	doc := el.Document()

	if id := el.ID(); id != "" {
		for _, label := range doc.Find("//label[@for]") {
			if label.Attr("for") == id {
				if t := label.Text(); t != "" {
					return t
				}
			}
		}
	}

	if ids := strings.Fields(el.Attr("aria-labelledby")); len(ids) > 0 {
		var parts []string
		for _, id := range ids {
			if ref := doc.ElementByID(id); ref != nil {
				if t := ref.Text(); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	if t := strings.TrimSpace(el.Attr("aria-label")); t != "" {
		return t
	}

	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag() == "label" {
			if t := p.TextExcluding(el); t != "" {
				return t
			}
			break
		}
	}

	level := el.Parent()
	for i := 0; i < labelSearchLevels && level != nil; i++ {
		if t := nearestLabel(level, el); t != "" {
			return t
		}
		level = level.Parent()
	}

	return strings.TrimSpace(el.Attr("placeholder"))
}

// nearestLabel finds the label-like element inside scope closest to el:
// the last one before it in document order, else the first one after.
func nearestLabel(scope, el *dom.Element) string {
	var before, after string
	passed := false
	for _, d := range scope.Descendants() {
		if d.Node == el.Node {
			passed = true
			continue
		}
		if d.Contains(el) || el.Contains(d) || !labelLike(d) || d.ContainsControl() {
			continue
		}
		if forID := d.Attr("for"); forID != "" && forID != el.ID() {
			continue
		}
		t := d.Text()
		if t == "" {
			continue
		}
		if !passed {
			before = t
		} else if after == "" {
			after = t
		}
	}
	if before != "" {
		return before
	}
	return after
}

func labelLike(el *dom.Element) bool {
	switch el.Tag() {
	case "label", "legend", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	case "input", "select", "textarea", "option", "button", "script", "style":
		return false
	}
	return labelClassPattern.MatchString(strings.ToLower(el.Attr("class")))
}

// GroupContextFor collects the question text around a group of controls.
// It climbs up to eight ancestor levels, accumulating the text of every
// label-like element, and stops at an ancestor that also holds controls
// from outside the group. If nothing was collected by then, the label-like
// element right before the group inside that ancestor is used. The result
// is capped at 500 characters.
func (in Introspector) GroupContextFor(members []*dom.Element) string {
	return groupContext(members, true)
}

// ownContext is the group context of a single checkbox, without the
// preceding-label fallback.
func ownContext(el *dom.Element) string {
	return groupContext([]*dom.Element{el}, false)
}

func groupContext(members []*dom.Element, preceding bool) string {
	if len(members) == 0 {
		return ""
	}
	var parts []string
	seen := make(map[string]bool)
	level := members[0].Parent()
	for i := 0; i < groupSearchLevels && level != nil; i++ {
		if holdsForeignControl(level, members) {
			if len(parts) == 0 && preceding {
				if t := labelBefore(level, members); t != "" {
					parts = append(parts, t)
				}
			}
			break
		}
		for _, d := range level.Descendants() {
			if !labelLike(d) || d.ContainsControl() || labelsOther(d, members) {
				continue
			}
			if t := d.Text(); t != "" && !seen[t] {
				seen[t] = true
				parts = append(parts, t)
			}
		}
		level = level.Parent()
	}
	return truncate(strings.Join(parts, " "), groupContextLimit)
}

// labelBefore returns the last label-like element inside scope that
// precedes the first member in document order.
func labelBefore(scope *dom.Element, members []*dom.Element) string {
	first := members[0]
	var before string
	for _, d := range scope.Descendants() {
		if d.Node == first.Node {
			break
		}
		if d.Contains(first) || !labelLike(d) || d.ContainsControl() || labelsOther(d, members) {
			continue
		}
		if t := d.Text(); t != "" {
			before = t
		}
	}
	return before
}

// labelsOther reports whether d is a label[for] naming a control outside
// members.
func labelsOther(d *dom.Element, members []*dom.Element) bool {
	forID := d.Attr("for")
	if forID == "" {
		return false
	}
	for _, m := range members {
		if m.ID() == forID {
			return false
		}
	}
	return true
}

func holdsForeignControl(scope *dom.Element, members []*dom.Element) bool {
	for _, d := range scope.Descendants() {
		if !d.IsControl() || d.Type() == "hidden" {
			continue
		}
		member := false
		for _, m := range members {
			if m.Node == d.Node {
				member = true
				break
			}
		}
		if !member {
			return true
		}
	}
	return false
}

// optionLabel returns the text naming a single radio or checkbox option.
func optionLabel(el *dom.Element) string {
	doc := el.Document()
	if id := el.ID(); id != "" {
		for _, label := range doc.Find("//label[@for]") {
			if label.Attr("for") == id {
				if t := label.Text(); t != "" {
					return t
				}
			}
		}
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag() == "label" {
			if t := p.TextExcluding(el); t != "" {
				return t
			}
			break
		}
	}
	if t := strings.TrimSpace(el.Attr("aria-label")); t != "" {
		return t
	}
	for n := el.Node.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				return t
			}
			continue
		}
		if n.Type == html.ElementNode {
			sib := doc.Wrap(n)
			if !sib.IsControl() && !sib.ContainsControl() {
				if t := sib.Text(); t != "" {
					return t
				}
			}
			break
		}
	}
	return el.Attr("value")
}
