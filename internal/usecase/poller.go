package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"HomeworkBot/internal/domain"
	"HomeworkBot/internal/ports"
)

const opAdvance = "advance watermark"

// PollerDeps wires the driven adapters into the poll loop.
type PollerDeps struct {
	Reviews  ports.ReviewService
	Notifier ports.Notifier
	Sleeper  ports.Sleeper
	Metrics  ports.Metrics
	Logger   *slog.Logger
}

// PollerOptions holds the loop timing and the starting watermark.
type PollerOptions struct {
	Interval      time.Duration
	RetryInterval time.Duration
	Watermark     domain.Watermark
}

// Poller repeatedly fetches homework statuses and reports changes to the chat.
// It owns the watermark; Run must not be called concurrently.
type Poller struct {
	reviews  ports.ReviewService
	notifier ports.Notifier
	sleeper  ports.Sleeper
	metrics  ports.Metrics
	logger   *slog.Logger

	interval      time.Duration
	retryInterval time.Duration
	watermark     domain.Watermark
}

// NewPoller constructs the poll loop.
func NewPoller(deps PollerDeps, opts PollerOptions) *Poller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Poller{
		reviews:       deps.Reviews,
		notifier:      deps.Notifier,
		sleeper:       deps.Sleeper,
		metrics:       metrics,
		logger:        logger,
		interval:      opts.Interval,
		retryInterval: opts.RetryInterval,
		watermark:     opts.Watermark,
	}
}

// Watermark returns the timestamp the next fetch will start from.
func (p *Poller) Watermark() domain.Watermark {
	return p.watermark
}

// Run polls until ctx is cancelled. Cycle failures never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	if p.reviews == nil || p.notifier == nil || p.sleeper == nil {
		return fmt.Errorf("poller is not fully configured")
	}

	p.logger.Info("poller started",
		"watermark", int64(p.watermark),
		"interval", p.interval,
		"retry_interval", p.retryInterval)

	for {
		delay := p.Step(ctx)
		if ctx.Err() != nil {
			break
		}
		if err := p.sleeper.Sleep(ctx, delay); err != nil {
			break
		}
	}

	p.logger.Info("poller stopped", "watermark", int64(p.watermark))
	return nil
}

// Step runs one cycle, handles its failure and returns how long to wait before the next one.
func (p *Poller) Step(ctx context.Context) time.Duration {
	log := p.logger.With("cycle", uuid.NewString())

	err := p.RunCycle(ctx, log)
	if err == nil {
		return p.interval
	}

	// Once ctx is done any failure is a consequence of shutdown, whatever its cause says.
	if ctx.Err() != nil {
		log.Info("cycle interrupted by shutdown", "error", err)
		return 0
	}

	p.reportFailure(ctx, log, err)
	return p.retryInterval
}

// RunCycle fetches, translates and notifies once. The watermark only moves when
// every step succeeded, so a failed cycle is retried with the same from_date.
func (p *Poller) RunCycle(ctx context.Context, log *slog.Logger) error {
	if log == nil {
		log = p.logger
	}

	update, err := p.reviews.Fetch(ctx, p.watermark)
	if err != nil {
		return err
	}

	if sub, ok := update.Latest(); ok {
		message, err := TranslateStatus(sub)
		if err != nil {
			return err
		}

		if err := p.notifier.Send(ctx, message); err != nil {
			p.metrics.NotificationFailed()
			return err
		}
		p.metrics.NotificationSent()
		log.Info("notification sent", "homework", sub.Name, "status", string(sub.Status))
	} else {
		log.Debug("no homework updates", "watermark", int64(p.watermark))
	}

	if update.CurrentDate != nil {
		next := *update.CurrentDate
		if !next.Valid() {
			return domain.Errorf(domain.KindDecode, opAdvance, "server returned invalid current_date %d", next)
		}
		p.watermark = next
	}

	p.metrics.CycleSucceeded(p.watermark)
	return nil
}

// reportFailure logs the error and tries once to tell the chat about it.
// A failed failure notification is only logged.
func (p *Poller) reportFailure(ctx context.Context, log *slog.Logger, err error) {
	kind := domain.KindOf(err)
	p.metrics.CycleFailed(kind)
	log.Error("poll cycle failed",
		"kind", string(kind),
		"error", err,
		"watermark", int64(p.watermark),
		"retry_in", p.retryInterval)

	if sendErr := p.notifier.Send(ctx, failureMessage(err)); sendErr != nil {
		p.metrics.NotificationFailed()
		log.Warn("failure notification not delivered", "error", sendErr)
		return
	}
	p.metrics.NotificationSent()
	log.Debug("failure notification sent", "kind", string(kind))
}

func failureMessage(err error) string {
	return fmt.Sprintf("Bot encountered an error: %v", err)
}

type noopMetrics struct{}

func (noopMetrics) CycleSucceeded(domain.Watermark) {}
func (noopMetrics) CycleFailed(domain.Kind)         {}
func (noopMetrics) NotificationSent()               {}
func (noopMetrics) NotificationFailed()             {}
