package store

import (
	"context"
	"hash/fnv"
	"time"

	"alyra/pkg/domain"
	dErrors "alyra/pkg/domain-errors"
)

// numGateShards spreads ballots over independent locks. Two ballots that
// hash to the same shard serialise, which is safe but slower.
const numGateShards = 128

// DefaultTxTimeout bounds a transaction when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// gate gives one goroutine at a time exclusive access to a ballot. Shards are
// one-slot channels so waiting honours context cancellation.
type gate struct {
	shards  [numGateShards]chan struct{}
	timeout time.Duration
}

func newGate(timeout time.Duration) *gate {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	g := &gate{timeout: timeout}
	for i := range g.shards {
		g.shards[i] = make(chan struct{}, 1)
	}
	return g
}

// enter blocks until the ballot's shard is free. The returned context carries
// the transaction deadline; release must be called exactly once.
func (g *gate) enter(ctx context.Context, id domain.BallotID) (context.Context, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	cancel := context.CancelFunc(func() {})
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
	}

	shard := g.shards[shardOf(id)]
	select {
	case shard <- struct{}{}:
	case <-ctx.Done():
		err := ctx.Err()
		cancel()
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: ballot is busy")
	}

	release := func() {
		<-shard
		cancel()
	}
	return ctx, release, nil
}

func shardOf(id domain.BallotID) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id.String()))
	return h.Sum32() % numGateShards
}
