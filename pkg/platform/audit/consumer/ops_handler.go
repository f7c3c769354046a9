package consumer

import (
	"context"
	"log/slog"

	audit "alyra/pkg/platform/audit"
)

// OpsHandler archives lifecycle events. They are useful for tracing a ballot
// but not authoritative, so failures are logged and the message commits.
type OpsHandler struct {
	archive Archiver
	logger  *slog.Logger
	metrics *Metrics
}

func NewOpsHandler(archive Archiver, logger *slog.Logger, metrics *Metrics) *OpsHandler {
	return &OpsHandler{
		archive: archive,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *OpsHandler) HandleEvent(ctx context.Context, event audit.Event) error {
	const category = string(audit.CategoryOperations)

	inserted, err := h.archive.Archive(ctx, event)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to archive operations event",
			"event_id", event.ID.String(),
			"action", event.Action,
			"error", err,
		)
		h.metrics.persistFailed(category)
		return nil
	}
	h.metrics.archived(category, inserted)
	return nil
}
