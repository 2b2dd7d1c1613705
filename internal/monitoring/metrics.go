package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instrumentation for the service. A
// private registry keeps test instances from colliding on the global
// default registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	auditsTotal   *prometheus.CounterVec
	auditDuration prometheus.Histogram
	auditFailures *prometheus.CounterVec

	storeRetries  prometheus.Counter
	storedAudits  prometheus.Gauge
	rateLimitHits prometheus.Counter
}

// NewMetrics creates and registers the service metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry: registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinel_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		auditsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_audits_total",
			Help: "Completed audits by dataset mode and risk status.",
		}, []string{"dataset_mode", "risk_status"}),

		auditDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_audit_duration_seconds",
			Help:    "End-to-end audit computation latency.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		auditFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_audit_failures_total",
			Help: "Failed audits by error category.",
		}, []string{"category"}),

		storeRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_store_retries_total",
			Help: "Retried audit persistence attempts.",
		}),

		storedAudits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_stored_audits",
			Help: "Number of audits currently persisted.",
		}),

		rateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
}

// Handler returns the /metrics exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request.
func (m *Metrics) RecordRequest(method, route string, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordAudit records one completed audit.
func (m *Metrics) RecordAudit(mode, status string, duration time.Duration) {
	m.auditsTotal.WithLabelValues(mode, status).Inc()
	m.auditDuration.Observe(duration.Seconds())
}

// RecordAuditFailure records one failed audit by error category.
func (m *Metrics) RecordAuditFailure(category string) {
	m.auditFailures.WithLabelValues(category).Inc()
}

// RecordStoreRetry records one retried persistence attempt.
func (m *Metrics) RecordStoreRetry() {
	m.storeRetries.Inc()
}

// SetStoredAudits updates the persisted-audit gauge.
func (m *Metrics) SetStoredAudits(count int) {
	m.storedAudits.Set(float64(count))
}

// RecordRateLimitHit records one rate-limited request.
func (m *Metrics) RecordRateLimitHit() {
	m.rateLimitHits.Inc()
}
