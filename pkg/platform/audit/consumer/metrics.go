package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the audit sink did with each event.
type Metrics struct {
	Archived        *prometheus.CounterVec
	Duplicates      prometheus.Counter
	Dropped         *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Archived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_audit_sink_archived_total",
			Help: "Ballot events archived by the audit sink, by category",
		}, []string{"category"}),
		Duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_audit_sink_duplicates_total",
			Help: "Redelivered ballot events already present in the archive",
		}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_audit_sink_dropped_total",
			Help: "Ballot events dropped without archiving, by reason",
		}, []string{"reason"}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_audit_sink_persist_failures_total",
			Help: "Archive write failures, by category",
		}, []string{"category"}),
	}
}

// The helpers below accept a nil receiver so handlers work without metrics.

func (m *Metrics) archived(category string, inserted bool) {
	if m == nil {
		return
	}
	if inserted {
		m.Archived.WithLabelValues(category).Inc()
		return
	}
	m.Duplicates.Inc()
}

func (m *Metrics) dropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) persistFailed(category string) {
	if m != nil {
		m.PersistFailures.WithLabelValues(category).Inc()
	}
}
