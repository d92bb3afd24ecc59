package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"studymail/internal/structures"
	"time"
)

// Poll cycle and dispatch outcomes used as metric labels.
const (
	OutcomeIdle     = "idle"
	OutcomeOK       = "ok"
	OutcomeNotified = "notified"
	OutcomeFailed   = "failed"
	OutcomeError    = "error"
)

// Cache lookup results used as metric labels.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheLookup(record string, hit bool)
	ObservePersistenceDuration(record string, duration time.Duration)
	IncPollCycles(outcome string)
	IncDispatches(outcome string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheLookups        *prometheus.CounterVec
	persistenceDuration *prometheus.HistogramVec
	pollCycles          *prometheus.CounterVec
	dispatches          *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheLookup(record string, hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.cacheLookups.WithLabelValues(record, result).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(record string, duration time.Duration) {
	m.persistenceDuration.WithLabelValues(record).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPollCycles(outcome string) {
	m.pollCycles.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncDispatches(outcome string) {
	m.dispatches.WithLabelValues(outcome).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studymail_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studymail_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studymail_cache_lookups_total",
			Help: "Record cache lookups by record and result",
		}, []string{"record", "result"}),

		persistenceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studymail_persistence_duration_seconds",
			Help:    "Duration of record writes in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"record"}),

		pollCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studymail_poll_cycles_total",
			Help: "Poll cycles by outcome",
		}, []string{"outcome"}),

		dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "studymail_dispatches_total",
			Help: "Notification dispatch attempts by outcome",
		}, []string{"outcome"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                     {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)     {}
func (n *noopMetrics) IncCacheLookup(_ string, _ bool)                      {}
func (n *noopMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncPollCycles(_ string)                               {}
func (n *noopMetrics) IncDispatches(_ string)                               {}
