// File: internal/usecase/recovery_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ RecoveryUseCase = (*recoveryUC)(nil)

// RecoveryUseCase keeps one snapshot of an in-flight checkout per session so
// the customer can resume after the external payment redirect. Every method
// answers definitively; storage failures are logged, never returned.
type RecoveryUseCase interface {
	Save(ctx context.Context, session string, partial *model.CheckoutRecoveryState) bool
	Get(ctx context.Context, session string) *model.CheckoutRecoveryState
	Clear(ctx context.Context, session string)
	IsValid(state *model.CheckoutRecoveryState, planID string) bool
}

type recoveryUC struct {
	store  repository.SessionStateRepository
	window time.Duration
	now    func() time.Time
	log    *zerolog.Logger
}

func NewRecoveryUseCase(store repository.SessionStateRepository, window time.Duration, logger *zerolog.Logger) *recoveryUC {
	if window <= 0 {
		window = model.RecoveryWindow
	}
	return &recoveryUC{store: store, window: window, now: time.Now, log: logger}
}

// Save merges partial over the current snapshot. The snapshot takes the
// partial's timestamp when one is given, otherwise the current time. A
// timestamp in the future is clamped to now.
func (u *recoveryUC) Save(ctx context.Context, session string, partial *model.CheckoutRecoveryState) bool {
	if session == "" {
		return false
	}
	state := u.load(ctx, session)
	if state == nil {
		state = &model.CheckoutRecoveryState{}
	}
	state.Merge(partial)
	now := u.now()
	switch {
	case partial == nil || partial.Timestamp.IsZero():
		state.Timestamp = now
	case partial.Timestamp.After(now):
		state.Timestamp = now
	default:
		state.Timestamp = partial.Timestamp
	}

	data, err := json.Marshal(state)
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("recovery: encode state")
		return false
	}
	// the key TTL only reclaims space, IsValid owns freshness
	if err := u.store.Store(ctx, recoveryKey(session), data, 2*u.window); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("recovery: store state")
		return false
	}
	return true
}

func (u *recoveryUC) Get(ctx context.Context, session string) *model.CheckoutRecoveryState {
	if session == "" {
		return nil
	}
	return u.load(ctx, session)
}

func (u *recoveryUC) Clear(ctx context.Context, session string) {
	if session == "" {
		return
	}
	if err := u.store.Delete(ctx, recoveryKey(session)); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("recovery: clear state")
	}
}

// IsValid reports whether state belongs to planID and is younger than the
// window. Plan ids compare the way the catalog keys them.
func (u *recoveryUC) IsValid(state *model.CheckoutRecoveryState, planID string) bool {
	if state == nil || model.NormalizePlanID(state.PlanID) != model.NormalizePlanID(planID) {
		return false
	}
	return u.now().Sub(state.Timestamp) < u.window
}

func (u *recoveryUC) load(ctx context.Context, session string) *model.CheckoutRecoveryState {
	data, err := u.store.Load(ctx, recoveryKey(session))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, u.log).Warn().Err(err).Msg("recovery: load state")
		}
		return nil
	}
	var state model.CheckoutRecoveryState
	if err := json.Unmarshal(data, &state); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("recovery: corrupt state dropped")
		return nil
	}
	return &state
}
