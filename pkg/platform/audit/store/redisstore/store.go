// Package redisstore keeps audit events in one Redis stream per ballot.
// When ctx carries a transaction pipeline (pkg/platform/tx), XADD is queued
// on it so the event commits with the ballot snapshot in the same EXEC.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"alyra/pkg/domain"
	audit "alyra/pkg/platform/audit"
	txcontext "alyra/pkg/platform/tx"
)

const streamKeyPrefix = "alyra:events:"

type Store struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func streamKey(id domain.BallotID) string {
	return streamKeyPrefix + id.String()
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID.IsNil() {
		event.ID = domain.NewEventID()
	}
	args := &redis.XAddArgs{
		Stream: streamKey(event.BallotID),
		Values: map[string]any{
			"id":         event.ID.String(),
			"action":     event.Action,
			"actor":      event.Actor.String(),
			"timestamp":  event.Timestamp.UTC().Format(time.RFC3339Nano),
			"request_id": event.RequestID,
			"attributes": string(event.Attributes),
		},
	}
	if pipe, ok := txcontext.RedisPipeFrom(ctx); ok {
		pipe.XAdd(ctx, args)
		return nil
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByBallot(ctx context.Context, ballotID domain.BallotID) ([]audit.Event, error) {
	msgs, err := s.client.XRange(ctx, streamKey(ballotID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read audit stream: %w", err)
	}
	events := make([]audit.Event, 0, len(msgs))
	for _, msg := range msgs {
		event, err := decode(ballotID, msg.Values)
		if err != nil {
			return nil, fmt.Errorf("decode audit entry %s: %w", msg.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func decode(ballotID domain.BallotID, values map[string]any) (audit.Event, error) {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	eventID, err := domain.ParseEventID(str("id"))
	if err != nil {
		return audit.Event{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, str("timestamp"))
	if err != nil {
		return audit.Event{}, err
	}
	event := audit.Event{
		ID:        eventID,
		BallotID:  ballotID,
		Action:    str("action"),
		Actor:     domain.Identity(str("actor")),
		Timestamp: ts,
		RequestID: str("request_id"),
	}
	if attrs := str("attributes"); attrs != "" {
		event.Attributes = []byte(attrs)
	}
	return event, nil
}
