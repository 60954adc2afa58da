// Package metrics exposes the worker's Prometheus instrumentation on
// METRICS_ADDR: job outcomes, analysis duration, and engine evaluation
// counts.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters/histograms the worker loop and pipeline
// increment. Jobs processed/failed are split so a poison-message delete
// doesn't look like a successful analysis.
type Metrics struct {
	JobsProcessed     prometheus.Counter
	JobsFailed        prometheus.Counter
	JobsPoisoned      prometheus.Counter
	AnalysisDuration  prometheus.Histogram
	EngineEvaluations prometheus.Counter

	server *http.Server
}

// New registers the worker's metric set against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		JobsProcessed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chessreview_jobs_processed_total",
			Help: "Games successfully analyzed and stored.",
		}),
		JobsFailed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chessreview_jobs_failed_total",
			Help: "Games that failed analysis and were left for redelivery.",
		}),
		JobsPoisoned: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chessreview_jobs_poisoned_total",
			Help: "Messages deleted as poison (game not found or malformed body).",
		}),
		AnalysisDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "chessreview_analysis_duration_seconds",
			Help:    "Wall-clock duration of a single game's analysis pipeline.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		EngineEvaluations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chessreview_engine_evaluations_total",
			Help: "Positions evaluated in the per-move pass (one per ply plus the final position); puzzle and zugzwang probes are not counted.",
		}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	m.server = &http.Server{Handler: mux}
	return m
}

// Serve starts the /metrics HTTP endpoint on addr. An empty addr disables
// metrics entirely. Serve blocks until ctx is cancelled, then shuts the
// server down gracefully.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		<-ctx.Done()
		return nil
	}
	m.server.Addr = addr

	errCh := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return m.server.Shutdown(shutdownCtx)
	}
}
