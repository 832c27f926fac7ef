package notification

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter caps how many messages go to a single phone number within
// a window. The state lives in Redis so every instance shares the same
// counters.
type RateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:    client,
		keyPrefix: "sms:ratelimit:",
		limit:     limit,
		window:    window,
	}
}

// Allow reports whether one more message may be sent to the phone
// number. The counter is incremented on every call, so a denied send
// still counts toward the window.
func (l *RateLimiter) Allow(ctx context.Context, phone string) (bool, error) {
	key := l.keyPrefix + phone

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}
