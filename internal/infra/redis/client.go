package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/paygate/internal/core/domain"
)

// Client mirrors revenue records into per-chain Redis lists.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Enabled reports whether a Redis URL was configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Name identifies the sink in metrics and logs.
func (c *Client) Name() string { return "redis" }

// Write appends rec to the chain's revenue list.
func (c *Client) Write(ctx context.Context, rec domain.RevenueRecord) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := c.rdb.RPush(ctx, revenueKey(rec.Chain), payload).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// Key helpers
func revenueKey(chain string) string {
	return fmt.Sprintf("paygate:revenue:%s", chain)
}

func encodeRecord(rec domain.RevenueRecord) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode revenue record: %w", err)
	}
	return string(b), nil
}
