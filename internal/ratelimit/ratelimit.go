package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key in a fixed window backed by Redis. Used to
// bound password-reset request frequency per email address.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// New builds a limiter. A non-positive limit disables limiting.
func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow reports whether another request under key fits in the current
// window. The first hit in a window sets the expiry. A Redis failure is
// returned alongside allow=true: availability of the flow wins over strict
// limiting, the caller decides whether to log.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, nil
	}

	full := l.prefix + ":" + key
	count, err := l.client.Incr(ctx, full).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, full, l.window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(l.limit), nil
}
