package audit

import (
	"context"
	"encoding/json"
	"time"

	"alyra/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers events that decide the outcome of a ballot:
	// who may vote, who voted, and the tally.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers lifecycle events useful for tracing a ballot.
	CategoryOperations EventCategory = "operations"
)

// Event is the transport-agnostic record of one ballot event.
// Attributes holds the event-specific fields as a JSON object.
type Event struct {
	ID         domain.EventID
	BallotID   domain.BallotID
	Action     string
	Actor      domain.Identity
	Timestamp  time.Time
	RequestID  string
	Attributes json.RawMessage
}

// Category derives the category from the action.
func (e Event) Category() EventCategory {
	if cat, ok := actionCategories[e.Action]; ok {
		return cat
	}
	return CategoryOperations
}

var actionCategories = map[string]EventCategory{
	"voter_registered": CategoryCompliance,
	"voted":            CategoryCompliance,
	"votes_tallied":    CategoryCompliance,
}

// Store persists audit events. Append must honour a transaction carried in
// ctx (see pkg/platform/tx) so events commit together with the state change.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByBallot(ctx context.Context, ballotID domain.BallotID) ([]Event, error)
}
