package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"alyra/pkg/domain"
)

// wireEvent is the JSON document stored in the outbox and published to the
// broker. Consumers dedupe on id.
type wireEvent struct {
	ID         string          `json:"id"`
	BallotID   string          `json:"ballot_id"`
	Category   string          `json:"category"`
	Action     string          `json:"action"`
	Actor      string          `json:"actor"`
	Timestamp  string          `json:"timestamp"`
	RequestID  string          `json:"request_id,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// Marshal encodes an event in its wire form.
func Marshal(e Event) ([]byte, error) {
	body, err := json.Marshal(wireEvent{
		ID:         e.ID.String(),
		BallotID:   e.BallotID.String(),
		Category:   string(e.Category()),
		Action:     e.Action,
		Actor:      e.Actor.String(),
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		RequestID:  e.RequestID,
		Attributes: e.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	return body, nil
}

// Unmarshal decodes the wire form produced by Marshal.
func Unmarshal(raw []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	eventID, err := domain.ParseEventID(w.ID)
	if err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	ballotID, err := domain.ParseBallotID(w.BallotID)
	if err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	return Event{
		ID:         eventID,
		BallotID:   ballotID,
		Action:     w.Action,
		Actor:      domain.Identity(w.Actor),
		Timestamp:  ts,
		RequestID:  w.RequestID,
		Attributes: w.Attributes,
	}, nil
}
