package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool sizing for the window-store workload: short pipelined commands, no
// long-lived blocking operations.
const (
	poolSize     = 10
	minIdleConns = 2
	dialTimeout  = 5 * time.Second
	opTimeout    = 3 * time.Second
)

// Client wraps the go-redis client behind the window-store commands the
// engine uses, with a startup connectivity check.
type Client struct {
	*redis.Client
}

// New connects to the Redis instance at url and verifies it answers before
// returning. The URL carries auth and database selection; pool tuning is
// fixed here.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = poolSize
	opts.MinIdleConns = minIdleConns
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
