package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds how often a keyed action may happen within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	return &redisLimiter{client: client, limit: int64(limit), window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// INCR and EXPIRE NX travel in one pipeline, so the counter can never
	// be left behind without a TTL.
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, "limiter:"+key)
	pipe.ExpireNX(ctx, "limiter:"+key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= l.limit, nil
}

// Unlimited never rejects. Used when no redis address is configured.
type Unlimited struct{}

func (Unlimited) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
