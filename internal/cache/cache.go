// Package cache is a small JSON read-through cache for public storefront
// listings. Redis backs it in deployments; Noop is used when Redis is not
// configured and in tests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Keys shared by the services that fill and invalidate them.
const (
	KeyBanners    = "storefront:banners"
	KeyCarousel   = "storefront:carousel"
	KeyCategories = "storefront:categories"
)

type Cache interface {
	// Get unmarshals the cached value into dest and reports a hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Connect builds a redis client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return client, nil
}

type RedisCache struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                       { return nil }

// Remember returns the cached value for key, or calls load and caches its
// result for ttl. Cache failures degrade to calling load.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if hit, err := c.Get(ctx, key, &cached); err == nil && hit {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
