//go:build !integration

package postgres

import (
	"context"
	"time"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	red "consulting-portal/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerRoleRepo mocks the database repository that the role decorator wraps.
type mockInnerRoleRepo struct {
	RolesForUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error)
}

func (m *mockInnerRoleRepo) RolesForUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	return m.RolesForUserFunc(ctx, tx, userID)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error { return nil }
func (m *mockRedisClient) DelIfEquals(ctx context.Context, key, value string) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Ping(ctx context.Context) error                      { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
