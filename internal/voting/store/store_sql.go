package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	"alyra/pkg/platform/sentinel"
	"alyra/pkg/platform/sqlutil"
	txcontext "alyra/pkg/platform/tx"
)

// SQL stores one JSON snapshot row per ballot on PostgreSQL or SQLite.
// RunInTx opens a database transaction and places it in txCtx so other
// SQL-backed stores (the audit outbox) commit with it.
type SQL struct {
	db      *sql.DB
	dialect sqlutil.Dialect
	gate    *gate
}

func NewSQL(db *sql.DB, dialect sqlutil.Dialect, opts ...Option) *SQL {
	o := applyOptions(opts)
	return &SQL{db: db, dialect: dialect, gate: newGate(o.txTimeout)}
}

var ballotSchemas = map[sqlutil.Dialect][]string{
	sqlutil.Postgres: {
		`CREATE TABLE IF NOT EXISTS ballots (
			id UUID PRIMARY KEY,
			administrator TEXT NOT NULL,
			status SMALLINT NOT NULL,
			snapshot JSONB NOT NULL,
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_created ON ballots (created_at, id)`,
	},
	sqlutil.SQLite: {
		`CREATE TABLE IF NOT EXISTS ballots (
			id TEXT PRIMARY KEY,
			administrator TEXT NOT NULL,
			status INTEGER NOT NULL,
			snapshot TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_created ON ballots (created_at, id)`,
	},
}

// Migrate creates the ballots table. Safe to call multiple times.
func (s *SQL) Migrate(ctx context.Context) error {
	stmts, ok := ballotSchemas[s.dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create ballots schema: %w", err)
		}
	}
	return nil
}

func (s *SQL) RunInTx(ctx context.Context, id domain.BallotID, fn func(txCtx context.Context) error) error {
	txCtx, release, err := s.gate.enter(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin ballot transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(txCtx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ballot transaction: %w", err)
	}
	return nil
}

func (s *SQL) Create(ctx context.Context, b *models.Ballot) error {
	raw, err := encodeBallot(b)
	if err != nil {
		return err
	}
	conn := sqlutil.Conn(ctx, s.db)

	var exists int
	err = conn.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM ballots WHERE id = $1`), b.ID.String()).Scan(&exists)
	switch {
	case err == nil:
		return sentinel.ErrAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check ballot %s: %w", b.ID, err)
	}

	query := s.dialect.Rebind(`
		INSERT INTO ballots (id, administrator, status, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if _, err := conn.ExecContext(ctx, query,
		b.ID.String(),
		b.Administrator.String(),
		int(b.Status),
		string(raw),
		b.CreatedAt.UTC(),
		b.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert ballot %s: %w", b.ID, err)
	}
	return nil
}

// FindByID loads a ballot. Inside a PostgreSQL transaction the row is locked
// until commit so another process cannot interleave.
func (s *SQL) FindByID(ctx context.Context, id domain.BallotID) (*models.Ballot, error) {
	query := `SELECT snapshot FROM ballots WHERE id = $1`
	if _, inTx := txcontext.From(ctx); inTx && s.dialect == sqlutil.Postgres {
		query += ` FOR UPDATE`
	}

	var raw string
	err := sqlutil.Conn(ctx, s.db).QueryRowContext(ctx, s.dialect.Rebind(query), id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load ballot %s: %w", id, err)
	}
	return decodeBallot([]byte(raw))
}

func (s *SQL) Save(ctx context.Context, b *models.Ballot) error {
	raw, err := encodeBallot(b)
	if err != nil {
		return err
	}
	query := s.dialect.Rebind(`
		UPDATE ballots
		SET status = $1, snapshot = $2, updated_at = $3, version = version + 1
		WHERE id = $4
	`)
	res, err := sqlutil.Conn(ctx, s.db).ExecContext(ctx, query,
		int(b.Status),
		string(raw),
		b.UpdatedAt.UTC(),
		b.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update ballot %s: %w", b.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ballot %s: %w", b.ID, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQL) List(ctx context.Context) ([]*models.Ballot, error) {
	rows, err := sqlutil.Conn(ctx, s.db).QueryContext(ctx, `SELECT snapshot FROM ballots`)
	if err != nil {
		return nil, fmt.Errorf("list ballots: %w", err)
	}
	defer rows.Close()

	var out []*models.Ballot
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ballot: %w", err)
		}
		b, err := decodeBallot([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ballots: %w", err)
	}
	sortBallots(out)
	return out, nil
}
