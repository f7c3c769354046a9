package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alyra/internal/voting/models"
	"alyra/pkg/platform/audit"
	"alyra/pkg/platform/circuit"
)

// ErrBrokerUnavailable is returned while the broker breaker is open.
var ErrBrokerUnavailable = errors.New("event broker unavailable, event skipped")

// Producer publishes one record to the event broker.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, headers map[string]string) error
}

// BrokerObserver publishes committed events straight to the broker. It serves
// backends without an outbox; delivery is best effort.
type BrokerObserver struct {
	producer Producer
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type BrokerObserverOption func(*BrokerObserver)

// WithBreaker skips publishing while the broker keeps failing.
func WithBreaker(b *circuit.Breaker) BrokerObserverOption {
	return func(o *BrokerObserver) { o.breaker = b }
}

func WithBrokerLogger(logger *slog.Logger) BrokerObserverOption {
	return func(o *BrokerObserver) { o.logger = logger }
}

func NewBrokerObserver(producer Producer, opts ...BrokerObserverOption) *BrokerObserver {
	o := &BrokerObserver{producer: producer, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *BrokerObserver) Notify(ctx context.Context, env models.Envelope) error {
	if o.breaker != nil && !o.breaker.Allow() {
		return ErrBrokerUnavailable
	}
	event, err := toAuditEvent(ctx, env)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", env.Event.Type(), err)
	}
	body, err := audit.Marshal(event)
	if err != nil {
		return err
	}
	err = o.producer.Produce(ctx, []byte(env.BallotID.String()), body, map[string]string{
		"event_type": string(env.Event.Type()),
	})
	o.track(ctx, err)
	return err
}

func (o *BrokerObserver) track(ctx context.Context, err error) {
	if o.breaker == nil {
		return
	}
	if err != nil {
		if _, change := o.breaker.RecordFailure(); change.Opened {
			o.logger.WarnContext(ctx, "broker circuit opened", "breaker", o.breaker.Name(), "error", err)
		}
		return
	}
	if _, change := o.breaker.RecordSuccess(); change.Closed {
		o.logger.InfoContext(ctx, "broker circuit closed", "breaker", o.breaker.Name())
	}
}
