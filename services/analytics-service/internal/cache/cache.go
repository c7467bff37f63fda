// Package cache is a small read-through JSON cache over Redis. Dashboard
// queries are aggregate scans; a short TTL keeps them cheap without
// meaningfully stale numbers.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix versions the cache namespace so shape changes never decode
// stale entries.
const keyPrefix = "analytics:v1:"

type Cache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// New returns a disabled cache when addr is empty; Fetch then always
// computes.
func New(addr string, logger *slog.Logger, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	c := &Cache{logger: logger, ttl: ttl}
	if addr != "" {
		c.client = redis.NewClient(&redis.Options{Addr: addr})
	}
	return c
}

// Fetch returns the cached JSON for key or computes, stores and returns
// it. Redis failures degrade to compute-only with a log line.
func (c *Cache) Fetch(ctx context.Context, key string, compute func(context.Context) (any, error)) ([]byte, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
		if err == nil {
			return raw, nil
		}
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "key", key, "err", err)
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return raw, nil
}

func (c *Cache) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if c.client == nil {
			return nil
		}
		return c.client.Ping(ctx).Err()
	}
}
