// Package ratelimiter implements a Redis-backed token bucket shared across
// server replicas.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a caller identified by key may spend cost tokens.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig describes one token bucket.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerMinute builds a bucket that holds perMinute tokens
// and refills them evenly over one minute.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// RedisLuaLimiter evaluates the bucket atomically inside Redis. Every key
// uses the default bucket unless an override was set with SetBucketConfig.
type RedisLuaLimiter struct {
	redis     *redis.Client
	prefix    string
	def       BucketConfig
	overrides map[string]BucketConfig
	script    *redis.Script
	mu        sync.RWMutex
	now       func() time.Time
}

// NewRedisLuaLimiter returns nil when rdb is nil; a nil limiter allows
// everything.
func NewRedisLuaLimiter(rdb *redis.Client, def BucketConfig) *RedisLuaLimiter {
	if rdb == nil {
		return nil
	}
	return &RedisLuaLimiter{
		redis:     rdb,
		prefix:    "rate:",
		def:       def,
		overrides: map[string]BucketConfig{},
		script:    redis.NewScript(luaTokenBucketScript),
		now:       time.Now,
	}
}

// Redis converts Lua numbers to integers, so the retry delay is returned in
// whole milliseconds. Idle buckets expire once they would be full again.
const luaTokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] then
  tokens = tonumber(data[1])
end
if data[2] then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after_ms = 0

if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  retry_after_ms = math.ceil((cost - tokens) / refill_rate * 1000)
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("PEXPIRE", key, math.ceil(capacity / refill_rate * 1000))

return { allowed, retry_after_ms }
`

// Allow spends cost tokens from key's bucket. Redis failures are logged and
// the request is allowed.
func (l *RedisLuaLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}
	cfg := l.bucketFor(key)
	if cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	nowSec := float64(l.now().UnixNano()) / 1e9
	vals, err := l.script.Run(ctx, l.redis, []string{l.prefix + key}, cfg.Capacity, cfg.RefillRate, nowSec, cost).Int64Slice()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("key", key), slog.Any("error", err))
		return true, 0, err
	}
	if len(vals) < 2 {
		slog.Error("redis rate limiter unexpected script result", slog.String("key", key), slog.Any("result", vals))
		return true, 0, nil
	}
	return vals[0] == 1, time.Duration(vals[1]) * time.Millisecond, nil
}

// SetBucketConfig overrides the bucket for one key. It is safe for
// concurrent use.
func (l *RedisLuaLimiter) SetBucketConfig(key string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrides[key] = cfg
}

// Ping checks the Redis connection.
func (l *RedisLuaLimiter) Ping(ctx context.Context) error {
	if l == nil || l.redis == nil {
		return nil
	}
	return l.redis.Ping(ctx).Err()
}

func (l *RedisLuaLimiter) bucketFor(key string) BucketConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if cfg, ok := l.overrides[key]; ok {
		return cfg
	}
	return l.def
}
