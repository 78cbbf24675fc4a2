package autofill

import (
	"context"
	"strings"

	"jobfill/dom"
)

// RadioController checks one member of a radio group.
type RadioController struct{}

func (RadioController) AttemptFill(ctx context.Context, s *Session, f *Field, target Resolution) (bool, error) {
	for _, m := range f.Members {
		if m.Checked() {
			return false, nil
		}
	}
	choice := pickRadio(f.Members, target)
	if choice == nil || choice.Disabled() {
		return false, nil
	}
	if err := s.approach(ctx, choice); err != nil {
		return false, err
	}
	if err := s.click(ctx, choice); err != nil {
		return false, err
	}
	xpath := choice.XPath()
	if err := s.Page.SetChecked(ctx, xpath, true); err != nil {
		return false, err
	}
	if err := s.dispatch(ctx, xpath, dom.Input(), dom.Change()); err != nil {
		return false, err
	}
	return true, nil
}

// pickRadio returns the member whose label expresses the target answer,
// else the first whose label or value contains a target spelling.
func pickRadio(members []*dom.Element, target Resolution) *dom.Element {
	labels := make([]string, len(members))
	for i, m := range members {
		labels[i] = optionLabel(m)
	}
	if target.Answer != "" {
		for i, m := range members {
			if a, ok := classifyAnswer(labels[i]); ok && a == target.Answer {
				return m
			}
		}
	}
	for _, c := range target.Candidates() {
		c = normalize(c)
		if c == "" {
			continue
		}
		for i, m := range members {
			label := normalize(labels[i])
			if label == c || normalize(m.Attr("value")) == c {
				return m
			}
		}
		for i, m := range members {
			label := normalize(labels[i])
			if label != "" && (strings.Contains(label, c) || strings.Contains(c, label)) {
				return m
			}
		}
	}
	return nil
}
