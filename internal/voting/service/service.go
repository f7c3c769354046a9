package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"alyra/internal/voting/metrics"
	"alyra/internal/voting/models"
	"alyra/pkg/attrs"
	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
	"alyra/pkg/platform/audit"
	"alyra/pkg/platform/sentinel"
	"alyra/pkg/requestcontext"
)

// Store persists ballots. RunInTx gives fn exclusive access to one ballot;
// writes through txCtx apply only when fn returns nil.
type Store interface {
	RunInTx(ctx context.Context, id domain.BallotID, fn func(txCtx context.Context) error) error
	Create(ctx context.Context, b *models.Ballot) error
	FindByID(ctx context.Context, id domain.BallotID) (*models.Ballot, error)
	Save(ctx context.Context, b *models.Ballot) error
	List(ctx context.Context) ([]*models.Ballot, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, ballotID domain.BallotID) ([]audit.Event, error)
}

// Observer receives events after the operation that produced them committed.
// Errors are logged and never fail the operation.
type Observer interface {
	Notify(ctx context.Context, event models.Envelope) error
}

// ErrBallotNotFound is returned for unknown ballot ids.
var ErrBallotNotFound = dErrors.New(dErrors.CodeNotFound, "ballot not found")

// Service orchestrates ballot operations: gate, load, apply on a working copy,
// save, record events, then notify.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	observers      []Observer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher records every event inside the ballot transaction. An
// append failure aborts the operation.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, o)
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("alyra/internal/voting/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutation applies one state-changing operation to a loaded ballot.
type mutation func(b *models.Ballot, caller domain.Identity, now time.Time) error

// mutate runs op under the ballot gate. The store copy is cloned, the clone
// is changed and saved, and its events are appended to the audit trail in
// the same transaction. Any error leaves the stored ballot untouched.
func (s *Service) mutate(ctx context.Context, op string, id domain.BallotID, apply mutation) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, op, id)
	defer span.End()

	caller, err := requireCaller(ctx)
	if err != nil {
		return s.reject(ctx, span, op, id, err)
	}
	now := requestcontext.Now(ctx)

	var committed []models.Envelope
	err = s.store.RunInTx(ctx, id, func(txCtx context.Context) error {
		current, err := s.store.FindByID(txCtx, id)
		if err != nil {
			return translate(err, "failed to load ballot")
		}
		working := current.Clone()
		if err := apply(working, caller, now); err != nil {
			return err
		}
		events := working.PullEvents()
		if err := s.store.Save(txCtx, working); err != nil {
			return translate(err, "failed to save ballot")
		}
		if err := s.record(txCtx, events); err != nil {
			return err
		}
		committed = events
		return nil
	})
	s.observeDuration(op, start)
	if err != nil {
		return s.reject(ctx, span, op, id, translate(err, "ballot transaction failed"))
	}
	s.accept(ctx, op, id, committed)
	return nil
}

// read loads a ballot without the gate and runs fn on it. With needCaller
// the request must carry a caller identity.
func (s *Service) read(ctx context.Context, op string, id domain.BallotID, needCaller bool, fn func(b *models.Ballot, caller domain.Identity) error) error {
	ctx, span := s.startSpan(ctx, op, id)
	defer span.End()

	caller := requestcontext.Identity(ctx)
	if needCaller && caller.IsNil() {
		return s.reject(ctx, span, op, id, errMissingCaller)
	}
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return s.reject(ctx, span, op, id, translate(err, "failed to load ballot"))
	}
	if err := fn(b, caller); err != nil {
		return s.reject(ctx, span, op, id, err)
	}
	return nil
}

var errMissingCaller = dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")

func requireCaller(ctx context.Context) (domain.Identity, error) {
	caller := requestcontext.Identity(ctx)
	if caller.IsNil() {
		return "", errMissingCaller
	}
	return caller, nil
}

// translate maps store facts to domain errors. Coded errors pass through.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return ErrBallotNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "ballot was modified concurrently")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.Wrap(err, dErrors.CodeConflict, "ballot already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: deadline exceeded")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// record appends events to the audit trail through the transaction in ctx.
func (s *Service) record(ctx context.Context, events []models.Envelope) error {
	if s.auditPublisher == nil {
		return nil
	}
	for _, env := range events {
		event, err := toAuditEvent(ctx, env)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode ballot event")
		}
		if err := s.auditPublisher.Emit(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ballot event")
		}
	}
	return nil
}

func toAuditEvent(ctx context.Context, env models.Envelope) (audit.Event, error) {
	attributes, err := json.Marshal(attrs.ToMap(eventAttributes(env.Event)))
	if err != nil {
		return audit.Event{}, err
	}
	id := env.ID
	if id.IsNil() {
		id = domain.NewEventID()
	}
	return audit.Event{
		ID:         id,
		BallotID:   env.BallotID,
		Action:     string(env.Event.Type()),
		Actor:      env.Actor,
		Timestamp:  env.OccurredAt,
		RequestID:  requestcontext.RequestID(ctx),
		Attributes: attributes,
	}, nil
}

// eventAttributes flattens an event into a slog-style key/value list. The
// same list feeds the log line and the audit payload.
func eventAttributes(e models.Event) []any {
	switch ev := e.(type) {
	case models.BallotCreated:
		return []any{"administrator", ev.Administrator}
	case models.VoterRegistered:
		return []any{"voter_address", ev.VoterAddress}
	case models.ProposalRegistered:
		return []any{"proposal_id", ev.ProposalID}
	case models.WorkflowStatusChange:
		return []any{"previous_status", int(ev.PreviousStatus), "new_status", int(ev.NewStatus)}
	case models.Voted:
		return []any{"voter", ev.Voter, "proposal_id", ev.ProposalID}
	case models.VotesTalliedEvent:
		return []any{"winning_proposal_id", ev.WinningProposalID}
	}
	return nil
}

// accept logs, counts and dispatches committed events.
func (s *Service) accept(ctx context.Context, op string, id domain.BallotID, events []models.Envelope) {
	for _, env := range events {
		s.logAudit(ctx, string(env.Event.Type()),
			append([]any{"ballot_id", id.String(), "operation", op, "identity", env.Actor.String()},
				eventAttributes(env.Event)...)...)
		if s.metrics != nil {
			s.metrics.RecordEvent(env.Event)
		}
		for _, o := range s.observers {
			if err := o.Notify(ctx, env); err != nil {
				s.logger.WarnContext(ctx, "event observer failed",
					"ballot_id", id.String(),
					"event", string(env.Event.Type()),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
		}
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, op string, id domain.BallotID, err error) error {
	code := dErrors.CodeOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))

	level := slog.LevelWarn
	if code == dErrors.CodeInternal {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "ballot operation rejected",
		"ballot_id", id.String(),
		"operation", op,
		"identity", requestcontext.Identity(ctx).String(),
		"code", string(code),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementRejection(op, string(code))
	}
	return err
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) startSpan(ctx context.Context, op string, id domain.BallotID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "voting."+op, trace.WithAttributes(
		attribute.String("ballot.id", id.String()),
		attribute.String("voting.operation", op),
	))
}

func (s *Service) observeDuration(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
}
