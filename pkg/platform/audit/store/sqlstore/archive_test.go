package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"alyra/pkg/domain"
	audit "alyra/pkg/platform/audit"
	"alyra/pkg/platform/sqlutil"
)

func newArchive(t *testing.T) *Archive {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	a := NewArchive(db, sqlutil.SQLite)
	require.NoError(t, a.Migrate(context.Background()))
	require.NoError(t, a.Migrate(context.Background()), "migrate is idempotent")
	return a
}

func TestArchiveDeduplicatesOnEventID(t *testing.T) {
	a := newArchive(t)
	ctx := context.Background()
	ballotID := domain.NewBallotID()
	event := audit.Event{
		ID:         domain.NewEventID(),
		BallotID:   ballotID,
		Action:     "voted",
		Actor:      "alice",
		Timestamp:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		RequestID:  "req-1",
		Attributes: json.RawMessage(`{"proposal_id":1,"voter":"alice"}`),
	}

	inserted, err := a.Archive(ctx, event)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = a.Archive(ctx, event)
	require.NoError(t, err)
	assert.False(t, inserted, "redelivery is ignored")

	events, err := a.ListByBallot(ctx, ballotID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, domain.Identity("alice"), events[0].Actor)
	assert.True(t, event.Timestamp.Equal(events[0].Timestamp))
	assert.JSONEq(t, string(event.Attributes), string(events[0].Attributes))
}

func TestArchiveDefaultsEmptyAttributes(t *testing.T) {
	a := newArchive(t)
	ctx := context.Background()
	ballotID := domain.NewBallotID()

	_, err := a.Archive(ctx, audit.Event{
		ID:        domain.NewEventID(),
		BallotID:  ballotID,
		Action:    "ballot_created",
		Actor:     "admin",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	events, err := a.ListByBallot(ctx, ballotID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{}`, string(events[0].Attributes))
}
