package scheduler

import (
	"context"
	"time"

	"HomeworkBot/internal/ports"
)

// TimerSleeper waits on a time.Timer and wakes up early when the context ends.
type TimerSleeper struct{}

var _ ports.Sleeper = TimerSleeper{}

// NewTimerSleeper returns the production sleeper.
func NewTimerSleeper() TimerSleeper {
	return TimerSleeper{}
}

// Sleep blocks for d. It returns ctx.Err() if the context is cancelled first.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
