package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/metrics"
	red "consulting-portal/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.RoleRepository = (*roleRepoCacheDecorator)(nil)

// roleRepoCacheDecorator keeps role lists briefly so each admin call does not
// hit the database twice. A revoked role lingers for at most ttl.
type roleRepoCacheDecorator struct {
	inner repository.RoleRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewRoleRepoCacheDecorator(inner repository.RoleRepository, cache red.RedisClient, logger *zerolog.Logger) repository.RoleRepository {
	return &roleRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   time.Minute,
		log:   logger,
	}
}

func roleCacheKey(userID string) string { return "roles:" + userID }

func (d *roleRepoCacheDecorator) RolesForUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	key := roleCacheKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var roles []model.Role
		if json.Unmarshal([]byte(val), &roles) == nil {
			metrics.ObserveCacheLookup("role", true, nil)
			return roles, nil
		}
		metrics.ObserveCacheLookup("role", false, nil)
	} else if !errors.Is(err, red.ErrNil) {
		d.log.Warn().Err(err).Msg("role cache: read failed")
		metrics.ObserveCacheLookup("role", false, err)
	} else {
		metrics.ObserveCacheLookup("role", false, nil)
	}

	roles, err := d.inner.RolesForUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []model.Role{}
	}
	b, _ := json.Marshal(roles)
	if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
		d.log.Warn().Err(err).Msg("role cache: write failed")
	}
	return roles, nil
}
