// Package sqlutil holds the small amount of dialect handling needed to run
// the same queries on PostgreSQL and SQLite.
package sqlutil

import (
	"context"
	"database/sql"
	"regexp"

	txcontext "alyra/pkg/platform/tx"
)

// Dialect selects placeholder style and DDL flavor.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var numberedPlaceholder = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $N placeholders for the dialect. Queries must reference
// each placeholder once, in ascending order.
func (d Dialect) Rebind(query string) string {
	if d == SQLite {
		return numberedPlaceholder.ReplaceAllString(query, "?")
	}
	return query
}

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction carried by ctx, falling back to db.
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}
