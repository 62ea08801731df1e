package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds how often an actor or source may trigger ingestion.
// Implementations are fail-closed: when the backing store cannot be
// evaluated the request counts as limited.
type Limiter interface {
	Limited(ctx context.Context, key string, maxHits int, window time.Duration) bool
}

var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter counts hits in fixed windows in Redis, so the limit holds
// across process instances.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(addr, password string) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Limited(ctx context.Context, key string, maxHits int, window time.Duration) bool {
	seconds := int64(window.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/seconds)

	pipe := l.client.TxPipeline()
	hits := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("Rate limit check failed, rejecting", "key", key, "error", err)
		return true
	}

	return hits.Val() > int64(maxHits)
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
