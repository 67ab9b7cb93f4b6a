package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/aegis-intraday/pkg/config"
)

const dialTimeout = 3 * time.Second

// Client is the optional Redis connection shared by scanner processes.
// A disabled Client is valid: every consumer falls back to local behaviour.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb  *redis.Client
	addr string
}

// New connects to Redis when REDIS_ENABLED is set and verifies the
// connection with a PING bounded by ctx.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: dialTimeout,
	})

	c := &Client{rdb: rdb, addr: addr}
	if _, err := c.Ping(ctx); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	return c, nil
}

// Ping round-trips a PING and returns its latency
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	if c.rdb == nil {
		return 0, nil
	}

	start := time.Now()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a live connection backs this client
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Addr returns host:port, empty when disabled
func (c *Client) Addr() string {
	return c.addr
}
