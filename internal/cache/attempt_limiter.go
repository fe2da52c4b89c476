package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const attemptKeyPrefix = "auth_fail:"

// AttemptLimiter counts failed authentication attempts per client in Redis so
// the limit holds across every API instance.
type AttemptLimiter struct {
	redis  *RedisClient
	limit  int64
	window time.Duration
}

// NewAttemptLimiter allows limit failures per window for each key.
func NewAttemptLimiter(redis *RedisClient, limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{redis: redis, limit: int64(limit), window: window}
}

// Blocked reports whether key has used up its failures for the current
// window. Redis errors report false so an outage never locks partners out.
func (l *AttemptLimiter) Blocked(ctx context.Context, key string) bool {
	n, err := l.redis.Count(ctx, attemptKeyPrefix+key)
	if err != nil {
		log.Warn().Err(err).Msg("Auth attempt counter unavailable")
		return false
	}
	return n >= l.limit
}

// RecordFailure counts one failed attempt for key. The window starts with
// the first failure and is not extended by later ones.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, key string) {
	if _, err := l.redis.IncrWithin(ctx, attemptKeyPrefix+key, l.window); err != nil {
		log.Warn().Err(err).Msg("Auth attempt counter unavailable")
	}
}

// Reset clears the failure count for key.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Delete(ctx, attemptKeyPrefix+key)
}
