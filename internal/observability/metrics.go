package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors used across the service.
type Metrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	checkouts *prometheus.CounterVec
}

// NewMetrics registers collectors on the given registerer. Passing nil
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "market_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "market_http_errors_total",
			Help: "Request errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "market_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "market_checkout_attempts_total",
			Help: "Checkout session/order creations by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}
}

// RecordRequest increments the request counter and latency histogram.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordCheckout tracks a checkout attempt per provider.
func (m *Metrics) RecordCheckout(provider, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(provider, outcome).Inc()
}
