// Package tx carries an open transaction through a context so stores that
// take part in the same unit of work (ballot snapshot, event outbox) write
// through it instead of their own connection.
package tx

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
)

type (
	sqlKey   struct{}
	redisKey struct{}
)

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, sqlKey{}, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(sqlKey{}).(*sql.Tx)
	return tx, ok
}

// WithRedisPipe stores the MULTI/EXEC pipeline of a watched Redis
// transaction in context. Commands queued on it run only if the whole
// transaction commits.
func WithRedisPipe(ctx context.Context, pipe redis.Pipeliner) context.Context {
	if pipe == nil {
		return ctx
	}
	return context.WithValue(ctx, redisKey{}, pipe)
}

// RedisPipeFrom extracts the Redis transaction pipeline from context if present.
func RedisPipeFrom(ctx context.Context) (redis.Pipeliner, bool) {
	pipe, ok := ctx.Value(redisKey{}).(redis.Pipeliner)
	return pipe, ok
}
