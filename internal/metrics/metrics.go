package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the refresh pipeline.
type Metrics struct {
	FetchesTotal        prometheus.Counter
	FetchFailures       prometheus.Counter
	CacheFallbacks      prometheus.Counter
	RetriesScheduled    prometheus.Counter
	SignalsGenerated    prometheus.Counter
	AlertsTriggered     prometheus.Counter
	NotifyFailures      prometheus.Counter
	FetchDuration       prometheus.Histogram
	ConsecutiveFailures prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics registers and returns all instruments on a private registry,
// so multiple instances (tests) never collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_fetches_total",
			Help: "Refresh cycles started",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_fetch_failures_total",
			Help: "Refresh cycles that ended in failure",
		}),
		CacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_cache_fallbacks_total",
			Help: "Failed cycles served from the snapshot cache",
		}),
		RetriesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_retries_scheduled_total",
			Help: "Backoff retries scheduled after failures",
		}),
		SignalsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_signals_generated_total",
			Help: "Trading signals produced by successful cycles",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_alerts_triggered_total",
			Help: "Alert notifications fired (post-cooldown)",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_notify_failures_total",
			Help: "Notification channel send failures",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_fetch_duration_seconds",
			Help:    "Wall time of a full fetch cycle",
			Buckets: prometheus.DefBuckets,
		}),
		ConsecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_consecutive_failures",
			Help: "Current consecutive failure count for the selected coin",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FetchesTotal,
		m.FetchFailures,
		m.CacheFallbacks,
		m.RetriesScheduled,
		m.SignalsGenerated,
		m.AlertsTriggered,
		m.NotifyFailures,
		m.FetchDuration,
		m.ConsecutiveFailures,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
