package services

import (
	"context"
	"time"

	"reliefnet/pkg/cache"
	"reliefnet/pkg/logger"
)

// CacheService is the cache surface the domain actually uses: short-lived
// snapshots (analytics) keyed by string. Misses are errors; callers fall
// through to the store.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type cacheService struct {
	redis  *cache.RedisCache
	logger *logger.Logger
}

func NewCacheService(redis *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		redis:  redis,
		logger: log,
	}
}

func (c *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return c.redis.Get(ctx, key, dest)
}

func (c *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.redis.Set(ctx, key, value, expiration)
}

func (c *cacheService) Delete(ctx context.Context, keys ...string) error {
	return c.redis.Delete(ctx, keys...)
}
