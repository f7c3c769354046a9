// Package consumer turns ballot events read from the broker back into
// audit.Events and routes them by category. Compliance events are archived
// strictly; operations events are archived best effort.
package consumer

import (
	"context"
	"log/slog"

	"alyra/internal/platform/kafka"
	audit "alyra/pkg/platform/audit"
)

// EventHandler handles one decoded ballot event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event audit.Event) error
}

// Router decodes messages and dispatches them to category handlers.
type Router struct {
	handlers map[audit.EventCategory]EventHandler
	fallback EventHandler
	logger   *slog.Logger
	metrics  *Metrics
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, metrics *Metrics, fallback EventHandler) *Router {
	return &Router{
		handlers: make(map[audit.EventCategory]EventHandler),
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds a handler for a category.
func (r *Router) Register(category audit.EventCategory, handler EventHandler) {
	r.handlers[category] = handler
}

// Handle implements kafka.Handler. Undecodable messages are dropped so they
// do not block the partition.
func (r *Router) Handle(ctx context.Context, msg *kafka.Message) error {
	event, err := audit.Unmarshal(msg.Value)
	if err != nil {
		r.logger.ErrorContext(ctx, "dropping malformed ballot event",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		r.metrics.dropped("malformed")
		return nil
	}

	handler, ok := r.handlers[event.Category()]
	if !ok {
		handler = r.fallback
	}
	if handler == nil {
		r.logger.WarnContext(ctx, "no handler for category, skipping event",
			"category", string(event.Category()),
			"event_id", event.ID.String(),
		)
		r.metrics.dropped("unrouted")
		return nil
	}
	return handler.HandleEvent(ctx, event)
}
