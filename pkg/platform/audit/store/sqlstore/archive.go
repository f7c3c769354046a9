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

var archiveSchemas = map[sqlutil.Dialect][]string{
	sqlutil.Postgres: {
		`CREATE TABLE IF NOT EXISTS audit_archive (
			seq BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			ballot_id TEXT NOT NULL,
			category TEXT NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			attributes JSONB NOT NULL,
			archived_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_archive_ballot ON audit_archive (ballot_id, seq)`,
	},
	sqlutil.SQLite: {
		`CREATE TABLE IF NOT EXISTS audit_archive (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			ballot_id TEXT NOT NULL,
			category TEXT NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			attributes TEXT NOT NULL,
			archived_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_archive_ballot ON audit_archive (ballot_id, seq)`,
	},
}

// Archive is the consumer-side copy of the ballot event stream. Rows are
// keyed by event id so redelivered messages are stored once.
type Archive struct {
	db      *sql.DB
	dialect sqlutil.Dialect
	now     func() time.Time
}

func NewArchive(db *sql.DB, dialect sqlutil.Dialect) *Archive {
	return &Archive{db: db, dialect: dialect, now: time.Now}
}

// Migrate creates the archive table. Safe to call multiple times.
func (a *Archive) Migrate(ctx context.Context) error {
	stmts, ok := archiveSchemas[a.dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", a.dialect)
	}
	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create archive schema: %w", err)
		}
	}
	return nil
}

// Archive stores event and reports whether it was new.
func (a *Archive) Archive(ctx context.Context, event audit.Event) (bool, error) {
	attributes := string(event.Attributes)
	if attributes == "" {
		attributes = "{}"
	}
	query := a.dialect.Rebind(`
		INSERT INTO audit_archive (event_id, ballot_id, category, action, actor, occurred_at, request_id, attributes, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`)
	res, err := a.db.ExecContext(ctx, query,
		event.ID.String(),
		event.BallotID.String(),
		string(event.Category()),
		event.Action,
		event.Actor.String(),
		event.Timestamp.UTC(),
		event.RequestID,
		attributes,
		a.now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert archive entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert archive entry: %w", err)
	}
	return n == 1, nil
}

// ListByBallot returns the archived events of one ballot in arrival order.
func (a *Archive) ListByBallot(ctx context.Context, ballotID domain.BallotID) ([]audit.Event, error) {
	query := a.dialect.Rebind(`
		SELECT event_id, action, actor, occurred_at, request_id, attributes
		FROM audit_archive
		WHERE ballot_id = $1
		ORDER BY seq
	`)
	rows, err := a.db.QueryContext(ctx, query, ballotID.String())
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			rawID, attributes string
			e                 = audit.Event{BallotID: ballotID}
			actor             string
		)
		if err := rows.Scan(&rawID, &e.Action, &actor, &e.Timestamp, &e.RequestID, &attributes); err != nil {
			return nil, fmt.Errorf("scan archive entry: %w", err)
		}
		id, err := domain.ParseEventID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan archive entry: %w", err)
		}
		e.ID = id
		e.Actor = domain.Identity(actor)
		e.Attributes = []byte(attributes)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive: %w", err)
	}
	return events, nil
}
