package autofill

import (
	"context"
	"regexp"

	"jobfill/dom"
)

var (
	consentPattern = regexp.MustCompile(`agree|accept|consent|confirm|acknowledg|certify|attest`)
	optOutPattern  = regexp.MustCompile(`marketing|newsletter|promot|third ?part|partner|advertis|special offers`)
)

// CheckboxController ticks consent boxes. A box is ticked only when its
// text reads as agreement and never when it reads as a marketing opt-in.
type CheckboxController struct{}

func (CheckboxController) AttemptFill(ctx context.Context, s *Session, f *Field, _ Resolution) (bool, error) {
	el := f.Element
	if el.Checked() || !IsConsent(f.Text) {
		return false, nil
	}
	if err := s.approach(ctx, el); err != nil {
		return false, err
	}
	if err := s.click(ctx, el); err != nil {
		return false, err
	}
	xpath := el.XPath()
	if err := s.Page.SetChecked(ctx, xpath, true); err != nil {
		return false, err
	}
	if err := s.dispatch(ctx, xpath, dom.Input(), dom.Change()); err != nil {
		return false, err
	}
	return true, nil
}

// IsConsent reports whether text asks for agreement rather than a
// marketing opt-in.
func IsConsent(text string) bool {
	t := combine(text)
	return consentPattern.MatchString(t) && !optOutPattern.MatchString(t)
}
