// Package metrics exposes monitor snapshots as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const namespace = "claude_code"

// Exporter holds the gauges updated on every monitor tick
type Exporter struct {
	registry *prometheus.Registry

	tokens       *prometheus.GaugeVec
	messages     prometheus.Gauge
	costUSD      prometheus.Gauge
	files        prometheus.Gauge
	failedFiles  prometheus.Gauge
	skippedLines prometheus.Gauge
	lastUpdate   prometheus.Gauge
	refreshes    prometheus.Counter
}

// New creates an exporter with its own registry
func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),

		tokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tokens",
			Help:      "Tokens recorded in local logs by category",
		}, []string{"category"}),
		messages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "messages",
			Help:      "Log entries carrying usage",
		}),
		costUSD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "estimated_cost_usd",
			Help:      "Estimated cost at the default rates",
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_files",
			Help:      "Log files discovered in the last refresh",
		}),
		failedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_files_failed",
			Help:      "Log files that could not be read in the last refresh",
		}),
		skippedLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lines_skipped",
			Help:      "Malformed lines skipped in the last refresh",
		}),
		lastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last refresh",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Completed monitor refreshes",
		}),
	}

	e.registry.MustRegister(
		e.tokens, e.messages, e.costUSD, e.files, e.failedFiles,
		e.skippedLines, e.lastUpdate, e.refreshes,
	)
	return e
}

// Registry returns the registry holding the exporter's metrics
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// HandleSnapshot updates all gauges from snap
func (e *Exporter) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	u := snap.Usage
	e.tokens.WithLabelValues("input").Set(float64(u.TotalInput))
	e.tokens.WithLabelValues("output").Set(float64(u.TotalOutput))
	e.tokens.WithLabelValues("cache_creation").Set(float64(u.TotalCacheCreation))
	e.tokens.WithLabelValues("cache_read").Set(float64(u.TotalCacheRead))
	e.messages.Set(float64(u.MessageCount))
	e.costUSD.Set(snap.Cost)
	e.files.Set(float64(snap.Files))
	e.failedFiles.Set(float64(snap.FailedFiles))
	e.skippedLines.Set(float64(snap.SkippedLines))
	e.lastUpdate.Set(float64(snap.TakenAt.Unix()))
	e.refreshes.Inc()
	return nil
}

// Handler serves /metrics behind the security headers and per-client rate limit
func (e *Exporter) Handler(limiter *IPRateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("claude-token-counter exporter: see /metrics\n"))
	})

	var h http.Handler = mux
	if limiter != nil {
		h = limiter.Limit(h)
	}
	return SecurityHeaders(h)
}
