// Package cache provides the Redis-backed judgment cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

const keyPrefix = "judgment:"

// JudgmentCache stores judgments in Redis with a TTL so identical prompts
// within the window skip provider calls.
type JudgmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJudgmentCache wraps a Redis client. ttl <= 0 disables expiry.
func NewJudgmentCache(client *redis.Client, ttl time.Duration) *JudgmentCache {
	return &JudgmentCache{client: client, ttl: ttl}
}

// Get loads a cached judgment. A missing key is (zero, false, nil).
func (c *JudgmentCache) Get(ctx context.Context, key string) (domain.Judgment, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Judgment{}, false, nil
	}
	if err != nil {
		return domain.Judgment{}, false, fmt.Errorf("op=cache.Get: %w", err)
	}
	var j domain.Judgment
	if err := json.Unmarshal(data, &j); err != nil {
		// stale or corrupt entry, treat as a miss
		return domain.Judgment{}, false, nil
	}
	return j, true, nil
}

// Set stores a judgment under the key.
func (c *JudgmentCache) Set(ctx context.Context, key string, j domain.Judgment) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("op=cache.Set: encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.Set: %w", err)
	}
	return nil
}
