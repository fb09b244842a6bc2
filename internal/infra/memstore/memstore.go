// Package memstore holds process-local stand-ins for the Redis stores, used
// when redis.url is empty (single instance, development).
package memstore

import (
	"context"
	"sync"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"

	"github.com/google/uuid"
)

type entry struct {
	data    []byte
	expires time.Time // zero: no expiry
}

// SessionStore is a mutex-guarded map with lazy expiry.
type SessionStore struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

var _ repository.SessionStateRepository = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{m: make(map[string]entry), now: time.Now}
}

func (s *SessionStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.m, key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

func (s *SessionStore) Store(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.m[key] = e
	return nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// AttemptStore keeps throttle counters in memory.
type AttemptStore struct {
	mu sync.Mutex
	m  map[string]repository.AttemptCounter
}

var _ repository.AttemptStore = (*AttemptStore)(nil)

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{m: make(map[string]repository.AttemptCounter)}
}

func (s *AttemptStore) Get(_ context.Context, key string) (repository.AttemptCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *AttemptStore) Put(_ context.Context, key string, c repository.AttemptCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = c
	return nil
}

// Locker is an in-process key lock; it never waits.
type Locker struct {
	mu   sync.Mutex
	held map[string]string
}

var _ adapter.Locker = (*Locker)(nil)

func NewLocker() *Locker { return &Locker{held: make(map[string]string)} }

func (l *Locker) TryLock(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, true, nil
}

func (l *Locker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type window struct {
	count int
	reset time.Time
}

// RateLimiter is the fixed-window counter of the redis package, kept in memory.
// Expired windows are swept at most once per window length.
type RateLimiter struct {
	mu        sync.Mutex
	m         map[string]window
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{m: make(map[string]window), now: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if now.Sub(r.lastSweep) >= win {
		for k, w := range r.m {
			if !now.Before(w.reset) {
				delete(r.m, k)
			}
		}
		r.lastSweep = now
	}
	w := r.m[key]
	if w.reset.IsZero() || !now.Before(w.reset) {
		w = window{reset: now.Add(win)}
	}
	w.count++
	r.m[key] = w
	return w.count <= limit, nil
}

// Len is the number of live windows.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
