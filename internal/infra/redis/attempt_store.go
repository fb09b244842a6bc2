package redis

import (
	"context"
	"encoding/json"
	"time"

	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.AttemptStore = (*AttemptStore)(nil)

// AttemptStore shares throttle counters between instances. Records expire
// after the idle window, after which the throttle starts over anyway.
type AttemptStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewAttemptStore(client RedisClient, idle time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: idle}
}

func (s *AttemptStore) key(k string) string { return "payment_attempt:" + k }

func (s *AttemptStore) Get(ctx context.Context, key string) (repository.AttemptCounter, error) {
	data, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		if isNil(err) {
			return repository.AttemptCounter{}, nil
		}
		return repository.AttemptCounter{}, err
	}
	var c repository.AttemptCounter
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		// a corrupt record is treated as no record
		return repository.AttemptCounter{}, nil
	}
	return c, nil
}

func (s *AttemptStore) Put(ctx context.Context, key string, c repository.AttemptCounter) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, s.ttl)
}
