package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMatchTTL bounds how long an idle match's cached state survives.
const DefaultMatchTTL = 24 * time.Hour

// Client holds the live per-match state: the latest decided turn and the
// remembered explorer. Every key expires ttl after its last write.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient connects from a redis:// URL. A non-positive ttl means
// DefaultMatchTTL.
func NewClient(ctx context.Context, redisURL string, ttl time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewClientFromPool(rdb, ttl), nil
}

// NewClientFromPool wraps an existing redis.Client, as the integration
// tests do with the shared test connection.
func NewClientFromPool(rdb *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultMatchTTL
	}
	return &Client{rdb: rdb, ttl: ttl}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection for /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
