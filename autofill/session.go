package autofill

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jobfill/dom"
)

// Session carries the state of one fill pass to the controllers.
type Session struct {
	Page    dom.Page
	Doc     *dom.Document
	Cadence *Cadence
	Clock   Clock
	Logger  *zap.Logger
}

func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	return s.Clock.Sleep(ctx, d)
}

// pause sleeps for a uniform duration in [minMs, maxMs].
func (s *Session) pause(ctx context.Context, minMs, maxMs int) error {
	return s.sleep(ctx, s.Cadence.Between(minMs, maxMs))
}

// refresh replaces the snapshot with the page's current state.
func (s *Session) refresh(ctx context.Context) error {
	doc, err := s.Page.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.Doc = doc
	return nil
}

func (s *Session) dispatch(ctx context.Context, xpath string, events ...dom.Event) error {
	for _, ev := range events {
		if err := s.Page.Dispatch(ctx, xpath, ev); err != nil {
			return err
		}
	}
	return nil
}

// pointAt returns a point near the centre of el, jittered by up to 15% of
// its size, as an offset from its top-left corner.
func (s *Session) pointAt(el *dom.Element) (float64, float64) {
	r, ok := el.Rect()
	if !ok || r.Empty() {
		return 0, 0
	}
	x := s.Cadence.Jitter(r.Width/2, r.Width, 0.15)
	y := s.Cadence.Jitter(r.Height/2, r.Height, 0.15)
	return x, y
}

// approach scrolls el into view and moves the pointer onto it.
func (s *Session) approach(ctx context.Context, el *dom.Element) error {
	xpath := el.XPath()
	if err := s.Page.ScrollIntoView(ctx, xpath); err != nil {
		return err
	}
	if err := s.sleep(ctx, 200*time.Millisecond); err != nil {
		return err
	}
	x, y := s.pointAt(el)
	if err := s.dispatch(ctx, xpath, dom.Mouse("mousemove", x, y), dom.Mouse("mouseenter", x, y)); err != nil {
		return err
	}
	return s.pause(ctx, 100, 250)
}

// click sends the press, release and click a real pointer produces.
func (s *Session) click(ctx context.Context, el *dom.Element) error {
	x, y := s.pointAt(el)
	return s.dispatch(ctx, el.XPath(),
		dom.Mouse("mousedown", x, y),
		dom.Mouse("mouseup", x, y),
		dom.Mouse("click", x, y),
	)
}

// hoverClick is click preceded by the pointer arriving on el.
func (s *Session) hoverClick(ctx context.Context, el *dom.Element) error {
	x, y := s.pointAt(el)
	return s.dispatch(ctx, el.XPath(),
		dom.Mouse("mousemove", x, y),
		dom.Mouse("mouseenter", x, y),
		dom.Mouse("mousedown", x, y),
		dom.Mouse("mouseup", x, y),
		dom.Mouse("click", x, y),
	)
}
