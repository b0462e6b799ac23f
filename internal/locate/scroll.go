package locate

import (
	"context"
	"time"

	"github.com/desertthunder/plbridge/internal/browser"
)

// Scripts issued by [Scroller].
const (
	ScrollScript = `window.scrollTo(0, Number.MAX_SAFE_INTEGER)`
	HeightScript = `document.body.scrollHeight`
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Scroller loads lazily rendered lists by scrolling to the bottom until the page stops growing.
type Scroller struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       SleepFunc // defaults to [Sleep]
}

// Load scrolls at most MaxAttempts times, waiting Delay after each scroll, and stops early once
// two consecutive height readings are equal. It returns the number of scrolls issued.
//
// Scrolling is best-effort: a failed script ends loading without an error. Only cancellation is
// reported.
func (sc Scroller) Load(ctx context.Context, s browser.Session) (int, error) {
	sleep := sc.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	last, err := height(ctx, s)
	if err != nil {
		return 0, ctx.Err()
	}

	attempts := 0
	for attempts < sc.MaxAttempts {
		if err := s.Evaluate(ctx, ScrollScript, nil); err != nil {
			return attempts, ctx.Err()
		}
		attempts++

		if err := sleep(ctx, sc.Delay); err != nil {
			return attempts, err
		}

		current, err := height(ctx, s)
		if err != nil {
			return attempts, ctx.Err()
		}
		if current == last {
			break
		}
		last = current
	}
	return attempts, nil
}

func height(ctx context.Context, s browser.Session) (int64, error) {
	var h int64
	err := s.Evaluate(ctx, HeightScript, &h)
	return h, err
}
