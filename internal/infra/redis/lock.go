// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"consulting-portal/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Locker = (*RedisLocker)(nil)

// RedisLocker is a single-instance SETNX lock with token-checked release.
type RedisLocker struct {
	client RedisClient
	ttl    time.Duration
	tries  int
	wait   time.Duration
}

func NewLocker(c RedisClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: c, ttl: ttl, tries: 3, wait: 50 * time.Millisecond}
}

// TryLock reports ok=false when another holder keeps the key past a few short retries.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < l.tries; i++ {
		ok, err := l.client.SetNX(ctx, "lock:"+key, token, l.ttl)
		if err != nil {
			lastErr = err
		} else if ok {
			return token, true, nil
		} else {
			lastErr = nil
		}
		if i == l.tries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(l.wait):
		}
	}
	return "", false, lastErr
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.client.DelIfEquals(ctx, "lock:"+key, token)
	return err
}
