// Package cache keeps short-lived copies of ranking query results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix  = "pnyx:ranking"
	versionKey = keyPrefix + ":version"
)

// RankingCache stores ranking results until they expire or are invalidated.
type RankingCache interface {
	// Get decodes the cached value for key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops every cached ranking.
	Invalidate(ctx context.Context) error
}

// RedisRankingCache namespaces keys by a version counter; Invalidate bumps the
// counter so older entries are never read again and age out through their TTL.
type RedisRankingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRankingCache creates a cache backed by client.
func NewRedisRankingCache(client redis.Cmdable, ttl time.Duration) *RedisRankingCache {
	return &RedisRankingCache{client: client, ttl: ttl}
}

func (c *RedisRankingCache) versionedKey(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read ranking cache version: %w", err)
	}
	return fmt.Sprintf("%s:v%d:%s", keyPrefix, version, key), nil
}

// Get implements RankingCache.
func (c *RedisRankingCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	k, err := c.versionedKey(ctx, key)
	if err != nil {
		return false, err
	}
	data, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read ranking cache key %s: %w", k, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode ranking cache key %s: %w", k, err)
	}
	return true, nil
}

// Set implements RankingCache.
func (c *RedisRankingCache) Set(ctx context.Context, key string, value interface{}) error {
	k, err := c.versionedKey(ctx, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode ranking cache value: %w", err)
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ranking cache key %s: %w", k, err)
	}
	return nil
}

// Invalidate implements RankingCache.
func (c *RedisRankingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ranking cache: %w", err)
	}
	return nil
}

// NopRankingCache never holds anything. It is used when Redis is disabled.
type NopRankingCache struct{}

func (NopRankingCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopRankingCache) Set(context.Context, string, interface{}) error         { return nil }
func (NopRankingCache) Invalidate(context.Context) error                       { return nil }

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}
