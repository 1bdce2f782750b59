package company

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the loaded settings between requests. Every write path invalidates it.
type Cache interface {
	Get(ctx context.Context) (*Settings, error)
	Set(ctx context.Context, s *Settings) error
	Invalidate(ctx context.Context) error
}

const cacheKey = "docportal:company_settings"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns nil without error on a miss.
func (c *RedisCache) Get(ctx context.Context) (*Settings, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisCache) Set(ctx context.Context, s *Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey).Err()
}

// NoCache always misses.
type NoCache struct{}

func (NoCache) Get(context.Context) (*Settings, error) { return nil, nil }

func (NoCache) Set(context.Context, *Settings) error { return nil }

func (NoCache) Invalidate(context.Context) error { return nil }
