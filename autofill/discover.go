package autofill

import (
	"regexp"

	"jobfill/dom"
)

var skippedInputTypes = map[string]bool{
	"hidden": true, "password": true, "search": true, "file": true,
	"button": true, "submit": true, "reset": true, "image": true,
}

var textInputTypes = map[string]bool{
	"text": true, "email": true, "tel": true, "url": true, "number": true,
}

// sensitiveControl matches names and ids the engine must never touch.
var sensitiveControl = regexp.MustCompile(`(?i)captcha|token|csrf|xsrf|card|cvv|cvc|\bssn\b|social ?security|honeypot`)

// Controls is the fillable surface of a page, partitioned by widget family
// and kept in document order.
type Controls struct {
	Texts       []*dom.Element
	Selects     []*dom.Element
	RadioGroups [][]*dom.Element
	Checkboxes  []*dom.Element
}

// Len counts controls, each radio group counting once.
func (c Controls) Len() int {
	return len(c.Texts) + len(c.Selects) + len(c.RadioGroups) + len(c.Checkboxes)
}

// Discover collects the visible, enabled, non-sensitive controls of doc.
func Discover(doc *dom.Document) Controls {
	var out Controls
	vp, hasViewport := doc.Viewport()
	groups := make(map[string]int)

	for _, el := range doc.Find("//*[self::input or self::select or self::textarea]") {
		if excluded(el) || !onScreen(el, vp, hasViewport) {
			continue
		}
		switch {
		case el.Tag() == "textarea":
			out.Texts = append(out.Texts, el)
		case el.Tag() == "select":
			out.Selects = append(out.Selects, el)
		case el.Type() == "radio":
			key := el.Name()
			if key == "" {
				key = el.XPath()
			}
			if i, ok := groups[key]; ok {
				out.RadioGroups[i] = append(out.RadioGroups[i], el)
				continue
			}
			groups[key] = len(out.RadioGroups)
			out.RadioGroups = append(out.RadioGroups, []*dom.Element{el})
		case el.Type() == "checkbox":
			out.Checkboxes = append(out.Checkboxes, el)
		case textInputTypes[el.Type()]:
			out.Texts = append(out.Texts, el)
		}
	}
	return out
}

func excluded(el *dom.Element) bool {
	if el.Tag() == "input" && skippedInputTypes[el.Type()] {
		return true
	}
	if el.Disabled() || el.ReadOnly() {
		return true
	}
	return sensitiveControl.MatchString(identSeparators.Replace(el.Name() + " " + el.ID()))
}

// onScreen applies the visibility rules. Position is checked only when the
// snapshot carries a rect and viewport, with a margin of one viewport
// height around the document so lazily rendered sections still count.
func onScreen(el *dom.Element, vp dom.Viewport, hasViewport bool) bool {
	if !el.Visible() {
		return false
	}
	r, ok := el.Rect()
	if !ok {
		return true
	}
	if r.Empty() {
		return false
	}
	if !hasViewport {
		return true
	}
	return r.Y+r.Height >= -vp.Height && r.Y <= vp.DocumentHeight+vp.Height
}
