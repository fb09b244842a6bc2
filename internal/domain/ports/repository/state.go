package repository

import (
	"context"
	"time"
)

// SessionStateRepository keeps small JSON documents scoped to a checkout session.
// Load returns domain.ErrNotFound when the key is absent. The ttl passed to
// Store only reclaims space; callers check freshness themselves.
type SessionStateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AttemptCounter is the throttle record of one (user, plan) pair.
type AttemptCounter struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// AttemptStore holds throttle counters. Get returns a zero counter and no error
// for unknown keys.
type AttemptStore interface {
	Get(ctx context.Context, key string) (AttemptCounter, error)
	Put(ctx context.Context, key string, c AttemptCounter) error
}
