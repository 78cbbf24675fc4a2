package autofill

import (
	"context"
	"math/rand"
	"time"

	"jobfill/models"
)

// Clock is the engine's only suspension point.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on a timer and wakes early when ctx is done.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Cadence draws human-looking delays from the typing settings.
type Cadence struct {
	settings models.Settings
	rng      *rand.Rand
}

func NewCadence(settings models.Settings, rng *rand.Rand) *Cadence {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Cadence{settings: settings, rng: rng}
}

// Instant reports whether typing bypasses per-keystroke simulation.
func (c *Cadence) Instant() bool {
	return c.settings.TypingSpeed == models.TypingInstant
}

// Keystroke returns the pause after one typed character. With random
// delays on, one keystroke in ten gets an extra 100-300ms hesitation.
func (c *Cadence) Keystroke() time.Duration {
	var d time.Duration
	switch c.settings.TypingSpeed {
	case models.TypingInstant:
		return 0
	case models.TypingFast:
		d = c.Between(30, 80)
	case models.TypingSlow:
		d = c.Between(100, 300)
	default:
		lo, hi := c.settings.TypingDelayMin, c.settings.TypingDelayMax
		if hi <= 0 || lo > hi {
			lo, hi = 50, 150
		}
		d = c.Between(lo, hi)
	}
	if c.settings.RandomDelays && c.rng.Float64() < 0.1 {
		d += c.Between(100, 300)
	}
	return d
}

// Between returns a uniform duration in [minMs, maxMs] milliseconds.
func (c *Cadence) Between(minMs, maxMs int) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	return time.Duration(minMs+c.rng.Intn(maxMs-minMs+1)) * time.Millisecond
}

// Jitter returns v moved by up to frac of span in either direction.
func (c *Cadence) Jitter(v, span, frac float64) float64 {
	return v + (c.rng.Float64()*2-1)*span*frac
}

// RandomDelays reports whether pauses between fields are enabled.
func (c *Cadence) RandomDelays() bool { return c.settings.RandomDelays }
