package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"jewelry-backoffice/internal/service"

	"github.com/go-redis/redis/v8"
)

const lowStockKey = "inventory:low_stock"

var _ service.Cache = (*Client)(nil)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s failed: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value at key as JSON with ttl
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Delete removes cached keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// MarkLowStock adds sku to the low-stock set. It reports true when the sku
// was not flagged before.
func (c *Client) MarkLowStock(ctx context.Context, sku string) (bool, error) {
	added, err := c.rdb.SAdd(ctx, lowStockKey, sku).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

// ClearLowStock removes sku from the low-stock set. It reports true when the
// sku was flagged.
func (c *Client) ClearLowStock(ctx context.Context, sku string) (bool, error) {
	removed, err := c.rdb.SRem(ctx, lowStockKey, sku).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// LowStockSKUs lists the flagged skus in lexical order
func (c *Client) LowStockSKUs(ctx context.Context) ([]string, error) {
	skus, err := c.rdb.SMembers(ctx, lowStockKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(skus)
	return skus, nil
}
