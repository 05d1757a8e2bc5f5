package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache is a short-TTL cache in front of the status aggregate
// queries. It is best-effort: callers treat every error as a miss.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatusCache creates a cache with the given entry TTL.
func NewStatusCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *StatusCache {
	return &StatusCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "status_cache"),
	}
}

// Get loads a cached value into dest. The bool reports whether the key was
// present.
func (c *StatusCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores a value under the cache TTL.
func (c *StatusCache) Set(ctx context.Context, key string, val any) error {
	payload, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, cacheKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func cacheKey(key string) string {
	return "cvstore:status:" + key
}
