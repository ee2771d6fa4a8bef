package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"HomeworkBot/internal/domain"
	"HomeworkBot/internal/ports"
)

const namespace = "homeworkbot"

// Recorder implements ports.Metrics on a private Prometheus registry.
type Recorder struct {
	registry      *prometheus.Registry
	cycles        *prometheus.CounterVec
	errors        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	watermark     prometheus.Gauge
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder registers the bot collectors together with Go runtime ones.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed poll cycles by error kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Telegram messages by delivery result.",
		}, []string{"result"}),
		watermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watermark_seconds",
			Help:      "Current from_date watermark.",
		}),
	}

	r.registry.MustRegister(
		r.cycles, r.errors, r.notifications, r.watermark,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// CycleSucceeded counts a successful cycle and publishes the new watermark.
func (r *Recorder) CycleSucceeded(watermark domain.Watermark) {
	r.cycles.WithLabelValues("success").Inc()
	r.watermark.Set(float64(watermark))
}

// CycleFailed counts a failed cycle under its error kind.
func (r *Recorder) CycleFailed(kind domain.Kind) {
	r.cycles.WithLabelValues("failure").Inc()
	r.errors.WithLabelValues(string(kind)).Inc()
}

// NotificationSent counts a delivered chat message.
func (r *Recorder) NotificationSent() {
	r.notifications.WithLabelValues("sent").Inc()
}

// NotificationFailed counts a chat message that was not delivered.
func (r *Recorder) NotificationFailed() {
	r.notifications.WithLabelValues("failed").Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve runs the /metrics endpoint on ln until ctx is done. It closes ln.
func Serve(ctx context.Context, ln net.Listener, r *Recorder) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
