package usecase

import (
	"context"
	"time"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ThrottleUseCase = (*throttleUC)(nil)

// ThrottleUseCase limits how often one user may request a payment link for the
// same plan.
type ThrottleUseCase interface {
	TrackAttempt(ctx context.Context, userID, planID string) bool
}

type ThrottlePolicy struct {
	MinInterval time.Duration // between attempts after the first
	IdleReset   time.Duration // quiet period that starts a fresh count
	MaxAttempts int
}

func DefaultThrottlePolicy() ThrottlePolicy {
	return ThrottlePolicy{MinInterval: 15 * time.Second, IdleReset: 5 * time.Minute, MaxAttempts: 3}
}

type throttleUC struct {
	store  repository.AttemptStore
	policy ThrottlePolicy
	now    func() time.Time
	log    *zerolog.Logger
}

func NewThrottleUseCase(store repository.AttemptStore, policy ThrottlePolicy, logger *zerolog.Logger) *throttleUC {
	return &throttleUC{store: store, policy: policy, now: time.Now, log: logger}
}

func throttleKey(userID, planID string) string {
	return userID + ":" + model.NormalizePlanID(planID)
}

// TrackAttempt records one attempt and reports whether it may proceed.
//
// The previous record is read first: an idle gap longer than IdleReset starts
// the count over, and the interval rule measures from the previous attempt.
// The new count and the current time are then written whether or not the
// attempt is allowed, so a burst of clicks keeps pushing the window forward.
// Store failures let the attempt through.
func (u *throttleUC) TrackAttempt(ctx context.Context, userID, planID string) bool {
	key := throttleKey(userID, planID)
	now := u.now()

	prev, err := u.store.Get(ctx, key)
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("throttle: read failed, allowing attempt")
		return true
	}

	count := prev.Count
	elapsed := now.Sub(prev.Timestamp)
	if prev.Timestamp.IsZero() || elapsed > u.policy.IdleReset {
		count = 0
	}
	count++

	if err := u.store.Put(ctx, key, repository.AttemptCounter{Count: count, Timestamp: now}); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("throttle: write failed")
	}

	allowed := count <= u.policy.MaxAttempts && (count == 1 || elapsed > u.policy.MinInterval)
	if !allowed {
		logging.With(ctx, u.log).Info().Str("plan", model.NormalizePlanID(planID)).Int("count", count).Msg("payment attempt throttled")
	}
	return allowed
}
