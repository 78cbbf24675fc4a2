package autofill

import (
	"context"
	"strings"

	"jobfill/dom"
)

// Controller fills one widget family. AttemptFill reports whether it
// changed the control; a false result with a nil error means no match.
type Controller interface {
	AttemptFill(ctx context.Context, s *Session, f *Field, target Resolution) (bool, error)
}

// TextController types into inputs and textareas.
type TextController struct{}

func (TextController) AttemptFill(ctx context.Context, s *Session, f *Field, target Resolution) (bool, error) {
	if strings.TrimSpace(f.Element.Value()) != "" {
		return false, nil
	}
	text := target.Text()
	if f.MaxLength > 0 {
		text = truncate(text, f.MaxLength)
	}
	if text == "" {
		return false, nil
	}
	if err := typeText(ctx, s, f.Element.XPath(), text, true); err != nil {
		return false, err
	}
	return true, nil
}

// typeText enters text into the control at xpath. In instant mode the value
// is set in one write; otherwise it grows one character at a time with
// keyboard events and cadence delays. blur ends the sequence by leaving
// the control, which suggestion widgets must not see yet.
func typeText(ctx context.Context, s *Session, xpath, text string, blur bool) error {
	if err := s.Page.Focus(ctx, xpath); err != nil {
		return err
	}
	if s.Cadence.Instant() {
		if err := s.Page.SetValue(ctx, xpath, text); err != nil {
			return err
		}
		return s.dispatch(ctx, xpath, dom.Input(), dom.Change())
	}

	if err := s.pause(ctx, 100, 300); err != nil {
		return err
	}
	runes := []rune(text)
	for i := range runes {
		if err := s.Page.SetValue(ctx, xpath, string(runes[:i+1])); err != nil {
			return err
		}
		key := string(runes[i])
		if err := s.dispatch(ctx, xpath, dom.Input(), dom.KeyDown(key), dom.KeyUp(key)); err != nil {
			return err
		}
		if err := s.sleep(ctx, s.Cadence.Keystroke()); err != nil {
			return err
		}
	}
	if err := s.dispatch(ctx, xpath, dom.Change()); err != nil {
		return err
	}
	if blur {
		return s.dispatch(ctx, xpath, dom.Blur())
	}
	return nil
}
