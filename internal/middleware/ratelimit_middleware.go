package middleware

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter throttles failed authentication attempts. Callers check
// Blocked before evaluating a credential, so a blocked client is refused
// even when its next guess is right, and record a failure only on rejection.
type AttemptLimiter interface {
	Blocked(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
	Reset(ctx context.Context, key string) error
}

// InvalidAuthRateLimiter is the in-process AttemptLimiter used when Redis is
// not configured. Counts are per instance.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window for each key.
// The cleanup loop stops with ctx.
func NewInvalidAuthRateLimiter(ctx context.Context, limit int, window time.Duration) *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
	go rl.cleanup(ctx)
	return rl
}

// Blocked reports whether key has used up its failures for the current window.
func (r *InvalidAuthRateLimiter) Blocked(_ context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[key]
	if !exists || r.now().Sub(info.firstAt) > r.window {
		return false
	}
	return info.count >= r.limit
}

// RecordFailure counts one failed attempt for key.
func (r *InvalidAuthRateLimiter) RecordFailure(_ context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[key]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[key] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Reset forgets the failures recorded for key.
func (r *InvalidAuthRateLimiter) Reset(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.attempts, key)
	r.mu.Unlock()
	return nil
}

func (r *InvalidAuthRateLimiter) cleanup(ctx context.Context) {
	interval := 5 * r.window
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for key, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, key)
				}
			}
			r.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
