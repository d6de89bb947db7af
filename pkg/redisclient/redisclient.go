// Package redisclient wraps go-redis with the tuned pool settings and
// metrics hooks used by the analysis cache. The cache is strictly optional:
// a nil *Client disables caching and every method degrades to a miss.
package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Vijfie/marketlens/pkg/metrics"
)

// ErrDisabled is returned by write operations on a nil client.
var ErrDisabled = errors.New("redis cache disabled")

type Client struct {
	rdb *redis.Client
}

// New constructs a Client from a redis URL with sensible pool defaults.
func New(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = 20
	opt.MinIdleConns = 5
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.IdleTimeout = 5 * time.Minute
	return &Client{rdb: redis.NewClient(opt)}, nil
}

// GetJSON loads key into dest. The second return is false on a miss, on a
// disabled cache, or on any redis error; errors are surfaced so callers can
// log them, but a failing cache never fails a request.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		metrics.CacheMisses.Inc()
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.CacheMisses.Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheErrors.Inc()
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		metrics.CacheErrors.Inc()
		return false, err
	}
	metrics.CacheHits.Inc()
	return true, nil
}

// SetJSON stores v under key with the given TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return ErrDisabled
	}
	raw, err := json.Marshal(v)
	if err != nil {
		metrics.CacheErrors.Inc()
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		metrics.CacheErrors.Inc()
		return err
	}
	return nil
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return ErrDisabled
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
