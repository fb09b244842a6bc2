//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	red "consulting-portal/internal/infra/redis"
)

func TestRoleRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("miss loads from the database and fills the cache", func(t *testing.T) {
		innerCalls := 0
		var setKey string
		var setTTL time.Duration
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", red.ErrNil },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey, setTTL = key, expiration
				return nil
			},
		}
		inner := &mockInnerRoleRepo{
			RolesForUserFunc: func(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
				innerCalls++
				return []model.Role{model.RoleAdmin}, nil
			},
		}

		roles, err := NewRoleRepoCacheDecorator(inner, mockRedis, &logger).RolesForUser(ctx, nil, "u-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerCalls != 1 {
			t.Errorf("inner called %d times, want 1", innerCalls)
		}
		if len(roles) != 1 || roles[0] != model.RoleAdmin {
			t.Errorf("roles = %v", roles)
		}
		if setKey != "roles:u-1" || setTTL != time.Minute {
			t.Errorf("cache set %q ttl %v", setKey, setTTL)
		}
	})

	t.Run("hit skips the database", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return `["owner"]`, nil },
		}
		inner := &mockInnerRoleRepo{
			RolesForUserFunc: func(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
				t.Fatal("inner repository should not be called on a hit")
				return nil, nil
			},
		}
		roles, err := NewRoleRepoCacheDecorator(inner, mockRedis, &logger).RolesForUser(ctx, nil, "u-1")
		if err != nil || len(roles) != 1 || roles[0] != model.RoleOwner {
			t.Fatalf("roles=%v err=%v", roles, err)
		}
	})

	t.Run("redis failure falls back to the database", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", errors.New("connection refused") },
		}
		inner := &mockInnerRoleRepo{
			RolesForUserFunc: func(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
				return nil, nil
			},
		}
		roles, err := NewRoleRepoCacheDecorator(inner, mockRedis, &logger).RolesForUser(ctx, nil, "u-1")
		if err != nil || len(roles) != 0 {
			t.Fatalf("roles=%v err=%v", roles, err)
		}
	})

	t.Run("database errors are not cached", func(t *testing.T) {
		boom := errors.New("db down")
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "", red.ErrNil },
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				t.Fatal("error result must not be cached")
				return nil
			},
		}
		inner := &mockInnerRoleRepo{
			RolesForUserFunc: func(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
				return nil, boom
			},
		}
		if _, err := NewRoleRepoCacheDecorator(inner, mockRedis, &logger).RolesForUser(ctx, nil, "u-1"); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	})
}
