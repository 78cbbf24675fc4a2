package autofill

import (
	"context"
	"strings"

	"jobfill/dom"
)

var (
	suggestionContainers = []string{
		`[role="listbox"]`,
		`[class*="autocomplete"]`,
		`[class*="suggestion"]`,
		`[class*="dropdown"]`,
		`[class*="listbox"]`,
		`[class*="menu"]`,
		`[class*="options"]`,
		`.pac-container`,
	}
	suggestionOptions = `[role="option"], li, .pac-item, [class*="option"], [class*="item"]`
)

// AutocompleteController types into a suggestion-driven input and picks the
// suggestion that matches the target.
type AutocompleteController struct{}

func (AutocompleteController) AttemptFill(ctx context.Context, s *Session, f *Field, target Resolution) (bool, error) {
	el := f.Element
	if strings.TrimSpace(el.Value()) != "" {
		return false, nil
	}
	text := target.Text()
	if f.MaxLength > 0 {
		text = truncate(text, f.MaxLength)
	}
	if text == "" {
		return false, nil
	}
	xpath := el.XPath()
	if err := typeText(ctx, s, xpath, text, false); err != nil {
		return false, err
	}
	if err := s.pause(ctx, 500, 1000); err != nil {
		return false, err
	}
	if err := s.refresh(ctx); err != nil {
		return false, err
	}

	if opt := findSuggestion(s.Doc, xpath, text); opt != nil {
		if err := s.hoverClick(ctx, opt); err != nil {
			return false, err
		}
		s.Logger.Debug("picked suggestion")
		return true, nil
	}

	// No list appeared; accept whatever the widget resolved on its own.
	if err := s.dispatch(ctx, xpath, dom.KeyDown("Enter"), dom.KeyDown("Tab")); err != nil {
		return false, err
	}
	return true, nil
}

// findSuggestion returns the first visible option in a suggestion list whose
// text and the target contain one another. Only the part before the first
// comma is compared, so "Austin" matches "Austin, TX, USA".
func findSuggestion(doc *dom.Document, inputXPath, target string) *dom.Element {
	want := normalize(firstSegment(target))
	if want == "" {
		return nil
	}
	for _, css := range suggestionContainers {
		for _, box := range doc.Select(css) {
			if box.IsControl() || !box.Visible() {
				continue
			}
			opts := box.Select(suggestionOptions)
			for _, opt := range opts {
				if opt.IsControl() || opt.XPath() == inputXPath || !opt.Visible() || wrapsAny(opt, opts) {
					continue
				}
				got := normalize(firstSegment(opt.Text()))
				if got == "" {
					continue
				}
				if strings.Contains(got, want) || strings.Contains(want, got) {
					return opt
				}
			}
		}
	}
	return nil
}

// wrapsAny reports whether el is an ancestor of another candidate, in
// which case the inner one is the real option.
func wrapsAny(el *dom.Element, candidates []*dom.Element) bool {
	for _, c := range candidates {
		if c.Node != el.Node && el.Contains(c) {
			return true
		}
	}
	return false
}
