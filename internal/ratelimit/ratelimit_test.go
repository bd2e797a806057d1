package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "pwreset", limit, window), srv
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowExpiryResetsCount(t *testing.T) {
	limiter, srv := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	srv.FastForward(2 * time.Minute)

	allowed, err = limiter.Allow(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailOpenWhenRedisDown(t *testing.T) {
	limiter, srv := newTestLimiter(t, 1, time.Minute)
	srv.Close()

	allowed, err := limiter.Allow(context.Background(), "alice@example.com")
	assert.Error(t, err)
	assert.True(t, allowed)
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	limiter := New(nil, "pwreset", 0, time.Minute)

	allowed, err := limiter.Allow(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}
