package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter counts requests per key in fixed windows. The window number is
// part of the redis key, so a lost EXPIRE leaks one key instead of locking the
// caller out.
type RateLimiter struct {
	client RedisClient
	now    func() time.Time
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func (r *RateLimiter) windowKey(key string, window time.Duration) string {
	return fmt.Sprintf("%s:%d", key, r.now().UnixNano()/int64(window))
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, nil
	}
	k := r.windowKey(key, window)
	count, err := r.client.Incr(ctx, k)
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	allowed := count <= int64(limit)
	if count == 1 {
		if err := r.client.Expire(ctx, k, window); err != nil {
			return allowed, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return allowed, nil
}

// RouteKey scopes a limit to one route and caller address.
func RouteKey(route, remote string) string {
	return "rate_limit:" + route + ":" + remote
}
