// Package sqlstore implements audit.Store as a transactional outbox on
// PostgreSQL or SQLite. Append writes through the transaction carried in ctx
// so an event row commits or rolls back with the ballot change that produced
// it; the relay later publishes unpublished rows to Kafka.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"alyra/pkg/domain"
	audit "alyra/pkg/platform/audit"
	"alyra/pkg/platform/sqlutil"
)

const aggregateType = "ballot"

// Store implements audit.Store on the outbox table.
type Store struct {
	db      *sql.DB
	dialect sqlutil.Dialect
}

// New creates an outbox-backed audit store.
func New(db *sql.DB, dialect sqlutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Entry is one outbox row waiting to be published.
type Entry struct {
	Seq         int64
	AggregateID string
	EventType   string
	Payload     []byte
}

// Append writes an event to the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID.IsNil() {
		event.ID = domain.NewEventID()
	}
	body, err := audit.Marshal(event)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	_, err = sqlutil.Conn(ctx, s.db).ExecContext(ctx, query,
		event.ID.String(),
		aggregateType,
		event.BallotID.String(),
		event.Action,
		string(body),
		event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByBallot returns the events of one ballot in append order.
func (s *Store) ListByBallot(ctx context.Context, ballotID domain.BallotID) ([]audit.Event, error) {
	query := s.dialect.Rebind(`
		SELECT payload FROM outbox
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY seq
	`)
	rows, err := sqlutil.Conn(ctx, s.db).QueryContext(ctx, query, aggregateType, ballotID.String())
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		event, err := audit.Unmarshal([]byte(raw))
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return events, nil
}

// FetchUnpublished returns up to limit rows not yet published, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]Entry, error) {
	query := s.dialect.Rebind(`
		SELECT seq, aggregate_id, event_type, payload FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished outbox: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			raw string
		)
		if err := rows.Scan(&e.Seq, &e.AggregateID, &e.EventType, &raw); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		e.Payload = []byte(raw)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps published_at on the given rows.
func (s *Store) MarkPublished(ctx context.Context, seqs []int64, at time.Time) error {
	query := s.dialect.Rebind(`UPDATE outbox SET published_at = $1 WHERE seq = $2`)
	for _, seq := range seqs {
		if _, err := s.db.ExecContext(ctx, query, at.UTC(), seq); err != nil {
			return fmt.Errorf("mark outbox entry %d published: %w", seq, err)
		}
	}
	return nil
}
