package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter implements fixed window rate limiting using Redis.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
}

// NewLimiter creates a new rate limiter with Redis backend.
func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Allow checks if a request is allowed under the rate limit. The window
// is keyed by its start time, so INCR plus EXPIRE on first hit is atomic
// enough for a fixed window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)

	redisKey := fmt.Sprintf("%s%s:%d", l.keyPrefix, key, windowStart.Unix())

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis incr error: %w", err)
	}
	if count == 1 {
		// First request in this window owns the expiry.
		if err := l.client.Expire(ctx, redisKey, window+time.Second).Err(); err != nil {
			return nil, fmt.Errorf("redis expire error: %w", err)
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetAt:   resetAt,
		Limit:     limit,
	}, nil
}

// Reset clears the rate limit for a specific key in the current window.
func (l *Limiter) Reset(ctx context.Context, key string, window time.Duration) error {
	windowStart := time.Now().Truncate(window)
	redisKey := fmt.Sprintf("%s%s:%d", l.keyPrefix, key, windowStart.Unix())
	return l.client.Del(ctx, redisKey).Err()
}
