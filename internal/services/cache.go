package services

import (
	"context"
	"time"

	"storefront/internal/logger"
	"storefront/internal/redis"
)

// resultCache кеширует результаты чтения в Redis. Без Redis все операции
// становятся no-op.
type resultCache struct {
	redis *redis.Client
	log   *logger.Logger
	ttl   time.Duration
}

func (c resultCache) tryGet(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	if err := c.redis.Get(ctx, key, dest); err != nil {
		return false
	}
	return true
}

func (c resultCache) save(ctx context.Context, key string, value interface{}) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, value, c.ttl); err != nil && c.log != nil {
		c.log.WithError(err).WithField("key", key).Warn("Failed to cache result")
	}
}

func (c resultCache) invalidate(ctx context.Context, prefix string) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.DeleteByPrefix(ctx, prefix)
}
