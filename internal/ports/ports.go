package ports

import (
	"context"
	"time"

	"HomeworkBot/internal/domain"
)

// ReviewService queries the homework review API for status changes.
type ReviewService interface {
	Fetch(ctx context.Context, since domain.Watermark) (domain.StatusUpdate, error)
}

// Notifier delivers text messages to the configured chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Sleeper blocks for the given duration or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Metrics records poll loop outcomes.
type Metrics interface {
	CycleSucceeded(watermark domain.Watermark)
	CycleFailed(kind domain.Kind)
	NotificationSent()
	NotificationFailed()
}
