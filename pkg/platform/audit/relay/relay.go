// Package relay moves committed outbox rows to the event broker.
//
// Rows are produced in sequence order, keyed by ballot id so a partitioned
// topic keeps each ballot's events ordered. A failed produce stops the batch:
// later rows wait for the next tick rather than overtaking the failed one.
// Delivery is at-least-once; consumers dedupe on the payload id.
package relay

import (
	"context"
	"log/slog"
	"time"

	"alyra/pkg/platform/audit/store/sqlstore"
)

// Outbox is the read side of the outbox table.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]sqlstore.Entry, error)
	MarkPublished(ctx context.Context, seqs []int64, at time.Time) error
}

// Producer publishes one record synchronously.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, headers map[string]string) error
}

type Relay struct {
	outbox   Outbox
	producer Producer
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func New(outbox Outbox, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		producer: producer,
		logger:   slog.Default(),
		interval: time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Batch errors are logged, not returned.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce publishes one batch and returns how many rows were marked published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(entries))
	var produceErr error
	for _, e := range entries {
		headers := map[string]string{"event_type": e.EventType}
		if err := r.producer.Produce(ctx, []byte(e.AggregateID), e.Payload, headers); err != nil {
			produceErr = err
			break
		}
		published = append(published, e.Seq)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published, time.Now()); err != nil {
			return 0, err
		}
		r.logger.DebugContext(ctx, "outbox batch published", "count", len(published))
	}
	return len(published), produceErr
}
