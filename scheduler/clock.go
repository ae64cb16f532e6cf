package scheduler

import (
	"context"
	"time"
)

// Clock supplies monotonic time and cancellable sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d, until ctx is done (returning ctx.Err()), or until
	// the clock is woken early (returning nil).
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock relies on the monotonic reading carried by time.Now, so wall
// clock adjustments never distort the accumulated redraw time.
type realClock struct {
	wake <-chan struct{}
}

// NewClock returns the production clock. A receive on wake ends the current
// sleep early; wake may be nil.
func NewClock(wake <-chan struct{}) Clock {
	return realClock{wake: wake}
}

func (c realClock) Now() time.Time {
	return time.Now()
}

func (c realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-c.wake:
		return nil
	}
}
