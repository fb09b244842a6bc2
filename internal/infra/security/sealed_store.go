package security

import (
	"context"
	"fmt"
	"time"

	"consulting-portal/internal/domain/ports/repository"
)

var _ repository.SessionStateRepository = (*SealedSessionStore)(nil)

// SealedSessionStore encrypts checkout session documents before they reach
// the shared store; they carry tax ids, emails and phone numbers.
type SealedSessionStore struct {
	inner  repository.SessionStateRepository
	sealer *Sealer
}

func NewSealedSessionStore(inner repository.SessionStateRepository, sealer *Sealer) *SealedSessionStore {
	return &SealedSessionStore{inner: inner, sealer: sealer}
}

func (s *SealedSessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	pt, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return pt, nil
}

func (s *SealedSessionStore) Store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	sealed, err := s.sealer.Seal(data, []byte(key))
	if err != nil {
		return err
	}
	return s.inner.Store(ctx, key, sealed, ttl)
}

func (s *SealedSessionStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
