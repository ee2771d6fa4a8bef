package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"HomeworkBot/internal/config"
	"HomeworkBot/internal/domain"
	"HomeworkBot/internal/infrastructure/praktikum"
	"HomeworkBot/internal/infrastructure/scheduler"
	"HomeworkBot/internal/infrastructure/telegram"
	"HomeworkBot/internal/logging"
	"HomeworkBot/internal/metrics"
	"HomeworkBot/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	poller   *usecase.Poller
}

// New builds the application from an already validated config.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.NewWithWriter(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	}

	recorder := metrics.NewRecorder()

	poller := usecase.NewPoller(usecase.PollerDeps{
		Reviews:  praktikum.NewClient(cfg.Praktikum, nil),
		Notifier: telegram.NewNotifier(cfg.Notifications.Telegram, nil),
		Sleeper:  scheduler.NewTimerSleeper(),
		Metrics:  recorder,
		Logger:   baseLogger.With("component", "poller"),
	}, usecase.PollerOptions{
		Interval:      cfg.Poll.Interval,
		RetryInterval: cfg.Poll.RetryInterval,
		Watermark:     initialWatermark(cfg.Poll.StartFrom, time.Now()),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		recorder: recorder,
		poller:   poller,
	}
}

// Run starts the poller and, when configured, the metrics endpoint. The metrics
// listener is bound before polling starts, so a bad address fails at startup.
// Later metrics server failures are logged and never stop the poller.
func (a *Application) Run(ctx context.Context) error {
	var g errgroup.Group

	if addr := a.cfg.Metrics.Addr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("metrics listen %s: %w", addr, err)
		}

		g.Go(func() error {
			a.logger.Info("metrics endpoint listening", "addr", ln.Addr().String())
			if err := metrics.Serve(ctx, ln, a.recorder); err != nil {
				a.logger.Error("metrics endpoint stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return a.poller.Run(ctx)
	})

	return g.Wait()
}

func initialWatermark(startFrom int64, now time.Time) domain.Watermark {
	if startFrom == config.StartFromNow {
		return domain.Watermark(now.Unix())
	}
	return domain.Watermark(startFrom)
}
