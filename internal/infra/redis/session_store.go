package redis

import (
	"context"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.SessionStateRepository = (*SessionStore)(nil)

// SessionStore keeps checkout scratch documents (recovery snapshot, contact
// pre-fill, last payment result) under checkout:<key>.
type SessionStore struct {
	client RedisClient
	prefix string
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client, prefix: "checkout:"}
}

func (s *SessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		if isNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return []byte(data), nil
}

func (s *SessionStore) Store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, data, ttl)
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key)
}
