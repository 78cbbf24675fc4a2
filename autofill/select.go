package autofill

import (
	"context"
	"strings"
	"unicode/utf8"

	"jobfill/dom"
)

// SelectController picks an option of a native <select>.
type SelectController struct{}

func (SelectController) AttemptFill(ctx context.Context, s *Session, f *Field, target Resolution) (bool, error) {
	el := f.Element
	opts := el.Options()
	if len(opts) == 0 || !selectUnset(el, opts) {
		return false, nil
	}
	idx := matchOption(opts, target)
	if idx < 0 || idx == el.SelectedIndex() {
		return false, nil
	}
	xpath := el.XPath()
	if err := s.Page.SetValue(ctx, xpath, opts[idx].Value); err != nil {
		return false, err
	}
	if err := s.dispatch(ctx, xpath, dom.Change(), dom.Input()); err != nil {
		return false, err
	}
	return true, nil
}

// selectUnset reports whether a select still shows its default choice: the
// first option, or an option with no value.
func selectUnset(el *dom.Element, opts []dom.Option) bool {
	idx := el.SelectedIndex()
	if idx <= 0 || idx >= len(opts) {
		return true
	}
	return strings.TrimSpace(opts[idx].Value) == ""
}

// matchOption returns the index of the option best matching target, or -1.
// Answers are matched by meaning first. Otherwise each tier is tried for
// every candidate spelling before moving to the next: exact value or text,
// containment either way, then first-word prefix. Options with an empty
// value or disabled are never chosen.
func matchOption(opts []dom.Option, target Resolution) int {
	eligible := func(o dom.Option) bool {
		return !o.Disabled && strings.TrimSpace(o.Value) != ""
	}

	if target.Answer != "" {
		for _, o := range opts {
			if !eligible(o) {
				continue
			}
			if a, ok := classifyAnswer(firstNonEmpty(o.Text, o.Value)); ok && a == target.Answer {
				return o.Index
			}
		}
	}

	var candidates []string
	for _, c := range target.Candidates() {
		if c = normalize(c); c != "" {
			candidates = append(candidates, c)
		}
	}

	tiers := []func(o dom.Option, text, c string) bool{
		func(o dom.Option, text, c string) bool {
			return text == c || normalize(o.Value) == c
		},
		func(o dom.Option, text, c string) bool {
			if text == "" {
				return false
			}
			return strings.Contains(text, c) || (utf8.RuneCountInString(text) >= 2 && strings.Contains(c, text))
		},
		func(o dom.Option, text, c string) bool {
			word := strings.Fields(c)[0]
			return utf8.RuneCountInString(word) >= 2 && strings.HasPrefix(text, word)
		},
	}
	for _, tier := range tiers {
		for _, c := range candidates {
			for _, o := range opts {
				if eligible(o) && tier(o, normalize(o.Text), c) {
					return o.Index
				}
			}
		}
	}
	return -1
}
