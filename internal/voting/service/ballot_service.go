package service

import (
	"context"
	"time"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	"alyra/pkg/platform/audit"
	"alyra/pkg/requestcontext"
)

// CreateBallot opens a new ballot administered by the caller.
func (s *Service) CreateBallot(ctx context.Context) (*models.Ballot, error) {
	start := time.Now()
	id := domain.NewBallotID()
	ctx, span := s.startSpan(ctx, "createBallot", id)
	defer span.End()

	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, s.reject(ctx, span, "createBallot", id, err)
	}

	b, err := models.NewBallot(id, caller, requestcontext.Now(ctx))
	if err != nil {
		return nil, s.reject(ctx, span, "createBallot", id, err)
	}
	events := b.PullEvents()

	err = s.store.RunInTx(ctx, id, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, b); err != nil {
			return translate(err, "failed to create ballot")
		}
		return s.record(txCtx, events)
	})
	s.observeDuration("createBallot", start)
	if err != nil {
		return nil, s.reject(ctx, span, "createBallot", id, translate(err, "ballot transaction failed"))
	}
	s.accept(ctx, "createBallot", id, events)
	return b, nil
}

// GetBallot returns the ballot. Any caller may read it.
func (s *Service) GetBallot(ctx context.Context, id domain.BallotID) (*models.Ballot, error) {
	var out *models.Ballot
	err := s.read(ctx, "getBallot", id, false, func(b *models.Ballot, _ domain.Identity) error {
		out = b
		return nil
	})
	return out, err
}

// GetWorkflowStatus returns the current phase. Any caller may read it.
func (s *Service) GetWorkflowStatus(ctx context.Context, id domain.BallotID) (models.WorkflowStatus, error) {
	var status models.WorkflowStatus
	err := s.read(ctx, "getWorkflowStatus", id, false, func(b *models.Ballot, _ domain.Identity) error {
		status = b.Status
		return nil
	})
	return status, err
}

// ListBallots returns every ballot ordered by creation.
func (s *Service) ListBallots(ctx context.Context) ([]*models.Ballot, error) {
	ballots, err := s.store.List(ctx)
	if err != nil {
		return nil, translate(err, "failed to list ballots")
	}
	return ballots, nil
}

// ListEvents returns the audit trail of one ballot in append order.
func (s *Service) ListEvents(ctx context.Context, id domain.BallotID) ([]audit.Event, error) {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, translate(err, "failed to load ballot")
	}
	if s.auditPublisher == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditPublisher.List(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to list ballot events")
	}
	return events, nil
}
