package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned when a key is not present in the store.
var ErrMiss = errors.New("cache miss")

// Store defines the interface for the fast store operations used by features.
type Store interface {
	// Get retrieves a raw value by key. Returns ErrMiss if absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores a raw value with an expiration. Zero expiration means no TTL.
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	// Del deletes one or more keys.
	Del(ctx context.Context, keys ...string) error
	// GetJSON retrieves a value and unmarshals it into dest. Returns ErrMiss if absent.
	GetJSON(ctx context.Context, key string, dest any) error
	// SetJSON marshals value to JSON and stores it with an expiration.
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Client wraps the Redis client with logging and JSON helpers.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a new Redis client and verifies the connection.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set sets a value with an expiration.
func (c *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// GetJSON retrieves a value and unmarshals it into dest.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	val, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value to JSON and stores it with an expiration.
func (c *Client) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	return c.Set(ctx, key, string(data), expiration)
}
