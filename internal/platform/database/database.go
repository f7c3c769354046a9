// Package database opens the relational store behind STORE_BACKEND=sql.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"alyra/internal/platform/config"
	"alyra/pkg/platform/sqlutil"
)

// DB pairs a connection pool with the dialect its queries must use.
type DB struct {
	*sql.DB
	Dialect sqlutil.Dialect
}

// Open connects and pings. SQLite is restricted to one connection: writers
// serialise on the database file and ":memory:" databases are per connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	var driver string
	switch cfg.Type {
	case sqlutil.Postgres:
		driver = "postgres"
	case sqlutil.SQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	if cfg.Type == sqlutil.SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}
	if cfg.Type == sqlutil.SQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	return &DB{DB: db, Dialect: cfg.Type}, nil
}
