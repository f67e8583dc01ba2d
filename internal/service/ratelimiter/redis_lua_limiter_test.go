package ratelimiter

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLuaLimiter(t *testing.T, def BucketConfig) (*RedisLuaLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLuaLimiter(rdb, def), mr
}

func TestNewBucketConfigFromPerMinute(t *testing.T) {
	assert.Equal(t, BucketConfig{Capacity: 30, RefillRate: 0.5}, NewBucketConfigFromPerMinute(30))
	assert.Equal(t, BucketConfig{}, NewBucketConfigFromPerMinute(0))
}

func TestNewRedisLuaLimiter_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisLuaLimiter(nil, NewBucketConfigFromPerMinute(10)))
}

func TestAllow_NilLimiter_FailOpen(t *testing.T) {
	var limiter *RedisLuaLimiter
	allowed, retryAfter, err := limiter.Allow(context.Background(), "any", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestAllow_ZeroBucket_AllowsEverything(t *testing.T) {
	limiter, _ := newTestRedisLuaLimiter(t, BucketConfig{})
	for i := 0; i < 5; i++ {
		allowed, _, err := limiter.Allow(context.Background(), "k", 1)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestAllow_RespectsCapacityAndRetryAfter(t *testing.T) {
	limiter, mr := newTestRedisLuaLimiter(t, NewBucketConfigFromPerMinute(3))
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		allowed, retryAfter, err := limiter.Allow(context.Background(), "analyze:10.0.0.1", 1)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d", i)
		assert.Zero(t, retryAfter)
	}

	allowed, retryAfter, err := limiter.Allow(context.Background(), "analyze:10.0.0.1", 1)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.InDelta(t, float64(20*time.Second), float64(retryAfter), float64(10*time.Millisecond))

	// other subjects have their own bucket
	allowed, _, err = limiter.Allow(context.Background(), "analyze:10.0.0.2", 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.True(t, mr.Exists("rate:analyze:10.0.0.1"))
	assert.Greater(t, mr.TTL("rate:analyze:10.0.0.1"), time.Duration(0))

	// one token refills after roughly 20s
	now = now.Add(21 * time.Second)
	allowed, _, err = limiter.Allow(context.Background(), "analyze:10.0.0.1", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_OverrideBucket(t *testing.T) {
	limiter, _ := newTestRedisLuaLimiter(t, NewBucketConfigFromPerMinute(100))
	limiter.SetBucketConfig("tight", BucketConfig{Capacity: 1, RefillRate: 0.001})

	allowed, _, err := limiter.Allow(context.Background(), "tight", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _, err = limiter.Allow(context.Background(), "tight", 1)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllow_RedisDown_FailOpen(t *testing.T) {
	limiter, mr := newTestRedisLuaLimiter(t, NewBucketConfigFromPerMinute(1))
	mr.Close()

	allowed, _, err := limiter.Allow(context.Background(), "k", 1)
	assert.Error(t, err)
	assert.True(t, allowed)
	assert.Error(t, limiter.Ping(context.Background()))
}
