package adapter

import (
	"context"

	"consulting-portal/internal/domain/model"
)

// Tracker receives one event per payment routing decision. Implementations
// must not block checkout; failures are theirs to log.
type Tracker interface {
	Track(ctx context.Context, ev model.TrackingEvent)
}

// Locker guards a key against concurrent processing.
type Locker interface {
	TryLock(ctx context.Context, key string) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
