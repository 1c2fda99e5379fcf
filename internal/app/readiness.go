package app

import (
	"context"
	"fmt"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPinger is the minimal surface of a Redis client needed for readiness.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// BuildReadinessChecks returns the db and redis readiness checks. A nil
// dependency yields a nil check, which /readyz reports as disabled.
func BuildReadinessChecks(pool Pinger, rdb RedisPinger) (func(ctx context.Context) error, func(ctx context.Context) error) {
	var dbCheck, redisCheck func(ctx context.Context) error
	if pool != nil {
		dbCheck = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			return nil
		}
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error {
			if err := rdb.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			return nil
		}
	}
	return dbCheck, redisCheck
}
