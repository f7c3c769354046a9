package domain

import (
	"github.com/google/uuid"

	dErrors "alyra/pkg/domain-errors"
)

// BallotID identifies one voting instance. Each ballot has its own
// administrator, registries and workflow status.
type BallotID uuid.UUID

// EventID identifies one recorded voting event.
type EventID uuid.UUID

// NewBallotID returns a fresh random ballot id.
func NewBallotID() BallotID { return BallotID(uuid.New()) }

// NewEventID returns a fresh random event id.
func NewEventID() EventID { return EventID(uuid.New()) }

// ParseBallotID parses external input into a BallotID.
//
// Errors: CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseBallotID(s string) (BallotID, error) {
	u, err := parseUUID(s, "ballot id")
	return BallotID(u), err
}

// ParseEventID parses external input into an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

func (id BallotID) String() string { return uuid.UUID(id).String() }
func (id BallotID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id EventID) String() string { return uuid.UUID(id).String() }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id BallotID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *BallotID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = BallotID(u)
	return nil
}

func (id EventID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *EventID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = EventID(u)
	return nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	if len(s) > 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
