// Package publisher fronts an audit.Store with optional asynchronous
// buffering.
//
// Sync mode (default) appends on the caller's goroutine and returns the store
// error, so a failed append can abort the surrounding transaction. Async mode
// queues events on a bounded channel drained by one goroutine; Close drains
// what is left.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"alyra/pkg/domain"
	audit "alyra/pkg/platform/audit"
)

// ErrBufferFull is returned in async mode when the queue cannot take more events.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer int
	queue  chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a queue of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.queue = make(chan audit.Event, p.buffer)
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, stamping Timestamp and ID when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID.IsNil() {
		event.ID = domain.NewEventID()
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	default:
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns the events recorded for a ballot.
func (p *Publisher) List(ctx context.Context, ballotID domain.BallotID) ([]audit.Event, error) {
	return p.store.ListByBallot(ctx, ballotID)
}

// Close waits for the async queue to drain. Emit must not be called after Close.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.queue != nil {
			close(p.queue)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"ballot_id", event.BallotID.String(),
				"error", err,
			)
		}
	}
}
