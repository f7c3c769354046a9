package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"alyra/internal/voting/models"
	"alyra/pkg/domain"
	"alyra/pkg/platform/sentinel"
	txcontext "alyra/pkg/platform/tx"
)

const (
	ballotKeyPrefix = "alyra:ballot:"
	ballotIndexKey  = "alyra:ballots"
)

// Redis stores each ballot as a JSON string plus a creation-ordered index.
//
// RunInTx WATCHes the ballot key, reads through the watched connection and
// queues every write on a MULTI/EXEC pipeline placed in txCtx. If another
// process changes the ballot first, EXEC aborts and RunInTx returns
// sentinel.ErrConflict; nothing is retried.
type Redis struct {
	client redis.UniversalClient
	gate   *gate
}

func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	o := applyOptions(opts)
	return &Redis{client: client, gate: newGate(o.txTimeout)}
}

func ballotKey(id domain.BallotID) string {
	return ballotKeyPrefix + id.String()
}

type watchedKey struct{}

func watchedFrom(ctx context.Context) (*redis.Tx, bool) {
	tx, ok := ctx.Value(watchedKey{}).(*redis.Tx)
	return tx, ok
}

type keyReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// reader returns the watched connection inside a transaction.
func (s *Redis) reader(ctx context.Context) keyReader {
	if tx, ok := watchedFrom(ctx); ok {
		return tx
	}
	return s.client
}

func (s *Redis) RunInTx(ctx context.Context, id domain.BallotID, fn func(txCtx context.Context) error) error {
	txCtx, release, err := s.gate.enter(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	err = s.client.Watch(txCtx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(txCtx, func(pipe redis.Pipeliner) error {
			inner := context.WithValue(txCtx, watchedKey{}, tx)
			return fn(txcontext.WithRedisPipe(inner, pipe))
		})
		return err
	}, ballotKey(id))
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("ballot %s changed concurrently: %w", id, sentinel.ErrConflict)
	}
	return err
}

func (s *Redis) Create(ctx context.Context, b *models.Ballot) error {
	raw, err := encodeBallot(b)
	if err != nil {
		return err
	}
	key := ballotKey(b.ID)
	index := redis.Z{Score: float64(b.CreatedAt.UnixNano()), Member: b.ID.String()}

	if pipe, ok := txcontext.RedisPipeFrom(ctx); ok {
		n, err := s.reader(ctx).Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check ballot %s: %w", b.ID, err)
		}
		if n > 0 {
			return sentinel.ErrAlreadyExists
		}
		pipe.Set(ctx, key, raw, 0)
		pipe.ZAdd(ctx, ballotIndexKey, index)
		return nil
	}

	created, err := s.client.SetNX(ctx, key, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("create ballot %s: %w", b.ID, err)
	}
	if !created {
		return sentinel.ErrAlreadyExists
	}
	if err := s.client.ZAdd(ctx, ballotIndexKey, index).Err(); err != nil {
		return fmt.Errorf("index ballot %s: %w", b.ID, err)
	}
	return nil
}

func (s *Redis) FindByID(ctx context.Context, id domain.BallotID) (*models.Ballot, error) {
	raw, err := s.reader(ctx).Get(ctx, ballotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load ballot %s: %w", id, err)
	}
	return decodeBallot(raw)
}

func (s *Redis) Save(ctx context.Context, b *models.Ballot) error {
	raw, err := encodeBallot(b)
	if err != nil {
		return err
	}
	key := ballotKey(b.ID)

	if pipe, ok := txcontext.RedisPipeFrom(ctx); ok {
		n, err := s.reader(ctx).Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check ballot %s: %w", b.ID, err)
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		pipe.Set(ctx, key, raw, 0)
		return nil
	}

	updated, err := s.client.SetXX(ctx, key, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("update ballot %s: %w", b.ID, err)
	}
	if !updated {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Redis) List(ctx context.Context) ([]*models.Ballot, error) {
	ids, err := s.client.ZRange(ctx, ballotIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list ballot index: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Ballot{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ballotKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load ballots: %w", err)
	}

	out := make([]*models.Ballot, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		b, err := decodeBallot([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sortBallots(out)
	return out, nil
}
