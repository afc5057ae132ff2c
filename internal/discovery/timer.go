package discovery

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// tickInterval is the spacing of Countdown events
const tickInterval = time.Second

// timerSource emits a Countdown immediately and then once per tick until
// the remaining time reaches zero.
type timerSource struct {
	clock    clock.Clock
	duration time.Duration
}

// Run implements Source. It returns after sending Countdown{0}.
func (t *timerSource) Run(ctx context.Context, events chan<- Event) error {
	// The ticker exists before the first event is sent so that a clock
	// advanced right after that event is never missed.
	ticker := t.clock.Ticker(tickInterval)
	defer ticker.Stop()

	start := t.clock.Now()
	remaining := remainingSeconds(t.duration, 0)
	for {
		select {
		case events <- Countdown{Remaining: remaining}:
		case <-ctx.Done():
			return nil
		}
		if remaining == 0 {
			return nil
		}

		select {
		case now := <-ticker.C:
			remaining = remainingSeconds(t.duration, now.Sub(start))
		case <-ctx.Done():
			return nil
		}
	}
}

// remainingSeconds returns whole seconds left after elapsed, never negative.
// elapsed is snapped to the tick schedule so delivery jitter does not
// shave a second off the displayed value or accumulate across the run.
func remainingSeconds(duration, elapsed time.Duration) uint64 {
	left := duration - elapsed.Round(tickInterval)
	if left <= 0 {
		return 0
	}
	return uint64(left / time.Second)
}
