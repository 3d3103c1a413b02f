package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the lookup service's prometheus collectors. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Lookups         *prometheus.CounterVec
	CacheRequests   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Lookups served, by operation and outcome",
		}, []string{"operation", "outcome"}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Route cache reads, by result",
		}, []string{"result"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_seconds",
			Help:      "Latency of upstream flight-data requests",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
		}, []string{"endpoint"}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed upstream requests, by endpoint and reason",
		}, []string{"endpoint", "reason"}),
	}
}

func (m *Metrics) ObserveLookup(operation, outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveUpstream(endpoint string, elapsed time.Duration, reason string) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if reason != "" {
		m.UpstreamErrors.WithLabelValues(endpoint, reason).Inc()
	}
}
