//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alyra/pkg/testutil/containers"
)

func TestRedisStoreSlidingWindow(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()

	clock := time.Now()
	store := NewRedisStore(rc.Client)
	store.now = func() time.Time { return clock }
	key := "identity:" + uuid.NewString()

	for i := range 3 {
		result, err := store.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 2-i, result.Remaining)
		clock = clock.Add(time.Second)
	}

	result, err := store.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Positive(t, result.RetryAfter)

	clock = clock.Add(58 * time.Second)
	result, err = store.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "the first request left the window")

	ttl, err := rc.Client.PTTL(ctx, store.prefix+key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
