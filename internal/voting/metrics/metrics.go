package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"alyra/internal/voting/models"
)

// Metrics provides observability for the voting module.
type Metrics struct {
	BallotsCreated      prometheus.Counter
	VotersRegistered    prometheus.Counter
	ProposalsRegistered prometheus.Counter
	VotesCast           prometheus.Counter
	PhaseTransitions    *prometheus.CounterVec
	Rejections          *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
}

// New registers the voting metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BallotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_ballots_created_total",
			Help: "Total number of ballots created",
		}),
		VotersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_voters_registered_total",
			Help: "Total number of voters registered across ballots",
		}),
		ProposalsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_proposals_registered_total",
			Help: "Total number of proposals registered, GENESIS excluded",
		}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "alyra_votes_cast_total",
			Help: "Total number of votes cast",
		}),
		PhaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_workflow_transitions_total",
			Help: "Workflow phase transitions by source and target phase",
		}, []string{"from", "to"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alyra_operation_rejections_total",
			Help: "Rejected ballot operations by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alyra_operation_duration_seconds",
			Help:    "Duration of ballot operations including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// RecordEvent counts the business effect of one committed event.
func (m *Metrics) RecordEvent(e models.Event) {
	switch ev := e.(type) {
	case models.BallotCreated:
		m.BallotsCreated.Inc()
	case models.VoterRegistered:
		m.VotersRegistered.Inc()
	case models.ProposalRegistered:
		m.ProposalsRegistered.Inc()
	case models.Voted:
		m.VotesCast.Inc()
	case models.WorkflowStatusChange:
		m.PhaseTransitions.WithLabelValues(ev.PreviousStatus.String(), ev.NewStatus.String()).Inc()
	}
}

// IncrementRejection records a failed operation.
func (m *Metrics) IncrementRejection(operation, code string) {
	m.Rejections.WithLabelValues(operation, code).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
