package consumer

import (
	"context"
	"fmt"
	"log/slog"

	audit "alyra/pkg/platform/audit"
)

// Archiver persists events idempotently and reports whether the event was new.
type Archiver interface {
	Archive(ctx context.Context, event audit.Event) (bool, error)
}

// ComplianceHandler archives events that decide a ballot outcome: voter
// registrations, votes and the tally. Write failures are returned so the
// message is retried and, failing that, redelivered.
type ComplianceHandler struct {
	archive Archiver
	logger  *slog.Logger
	metrics *Metrics
}

func NewComplianceHandler(archive Archiver, logger *slog.Logger, metrics *Metrics) *ComplianceHandler {
	return &ComplianceHandler{
		archive: archive,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *ComplianceHandler) HandleEvent(ctx context.Context, event audit.Event) error {
	const category = string(audit.CategoryCompliance)

	// An outcome event without an actor cannot be attributed; keep it out of
	// the archive rather than store an unverifiable record.
	if event.Actor.IsNil() {
		h.logger.ErrorContext(ctx, "CRITICAL: compliance event missing actor",
			"event_id", event.ID.String(),
			"ballot_id", event.BallotID.String(),
			"action", event.Action,
		)
		h.metrics.dropped("missing_actor")
		return nil
	}

	inserted, err := h.archive.Archive(ctx, event)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to archive compliance event",
			"event_id", event.ID.String(),
			"action", event.Action,
			"error", err,
		)
		h.metrics.persistFailed(category)
		return fmt.Errorf("archive compliance event: %w", err)
	}
	h.metrics.archived(category, inserted)

	h.logger.DebugContext(ctx, "archived compliance event",
		"event_id", event.ID.String(),
		"ballot_id", event.BallotID.String(),
		"action", event.Action,
		"duplicate", !inserted,
	)
	return nil
}
