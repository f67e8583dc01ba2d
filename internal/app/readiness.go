package app

import (
	"context"
	"fmt"
)

// Pinger is anything that can report its own health.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns the redis and tika checks. A check is nil when
// the dependency is not in use, so /readyz does not report it.
func BuildReadinessChecks(redis, tika Pinger) (redisCheck, tikaCheck func(ctx context.Context) error) {
	if redis != nil {
		redisCheck = func(ctx context.Context) error {
			if err := redis.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}
	}
	if tika != nil {
		tikaCheck = func(ctx context.Context) error {
			if err := tika.Ping(ctx); err != nil {
				return fmt.Errorf("tika: %w", err)
			}
			return nil
		}
	}
	return redisCheck, tikaCheck
}
