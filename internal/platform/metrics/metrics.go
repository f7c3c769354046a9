package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide HTTP and infrastructure metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	BrokerPublished prometheus.Counter
	BrokerFailures  prometheus.Counter
	RateLimited     *prometheus.CounterVec
}

// New creates and registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers against reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alyra_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_http_requests_total",
			Help: "HTTP requests by route pattern, method and status class",
		}, []string{"route", "method", "status"}),
		BrokerPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_broker_records_published_total",
			Help: "Event records acknowledged by the broker",
		}),
		BrokerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_broker_publish_failures_total",
			Help: "Event records the broker did not acknowledge",
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by key kind",
		}, []string{"kind"}),
	}
}

// ObserveRequest records latency and outcome for one request.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	m.RequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
