package usecase

import (
	"context"
	"fmt"
	"strings"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/logging"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AdminUserUseCase = (*adminUserUC)(nil)

type AdminUserUseCase interface {
	// Authorize returns domain.ErrForbidden unless userID holds admin or owner.
	Authorize(ctx context.Context, userID string) error
	Execute(ctx context.Context, req model.AdminUserRequest) (*model.AdminUserResult, error)
}

type adminUserUC struct {
	roles    repository.RoleRepository
	auth     adapter.AuthAdmin
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewAdminUserUseCase(roles repository.RoleRepository, auth adapter.AuthAdmin, logger *zerolog.Logger) *adminUserUC {
	return &adminUserUC{roles: roles, auth: auth, validate: validator.New(), log: logger}
}

func (u *adminUserUC) Authorize(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	roles, err := u.roles.RolesForUser(ctx, repository.NoTX, userID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if !model.CanManageUsers(roles) {
		logging.With(ctx, u.log).Warn().Msg("admin: caller lacks admin role")
		return domain.ErrForbidden
	}
	return nil
}

func invalid(msg string) error { return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg) }

func (u *adminUserUC) Execute(ctx context.Context, req model.AdminUserRequest) (*model.AdminUserResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.UserID = strings.TrimSpace(req.UserID)
	if err := u.validate.Struct(req); err != nil {
		if req.Action == "" {
			return nil, invalid("action is required")
		}
		if !isAdminAction(req.Action) {
			return nil, invalid(fmt.Sprintf("unknown action %q", req.Action))
		}
		return nil, invalid("email is not valid")
	}

	log := logging.With(ctx, u.log).With().Str("action", string(req.Action)).Logger()

	switch req.Action {
	case model.ActionCreateUser:
		if req.Email == "" || req.Password == "" {
			return nil, invalid("email and password are required")
		}
		user, err := u.auth.CreateUser(ctx, model.AuthUserAttributes{
			Email:        req.Email,
			Password:     req.Password,
			EmailConfirm: true,
			UserMetadata: req.UserData,
		})
		if err != nil {
			log.Error().Err(err).Msg("admin: create user failed")
			return nil, err
		}
		log.Info().Str("target_user", user.ID).Msg("admin: user created")
		return &model.AdminUserResult{User: user, Success: true, UserID: user.ID}, nil

	case model.ActionDeleteUser:
		if req.UserID == "" {
			return nil, invalid("userId is required")
		}
		if err := u.auth.DeleteUser(ctx, req.UserID); err != nil {
			log.Error().Err(err).Msg("admin: delete user failed")
			return nil, err
		}
		log.Info().Str("target_user", req.UserID).Msg("admin: user deleted")
		return &model.AdminUserResult{Success: true, UserID: req.UserID}, nil

	case model.ActionUpdateUser:
		if req.UserID == "" {
			return nil, invalid("userId is required")
		}
		attrs := model.AuthUserAttributes{Email: req.Email, Password: req.Password, UserMetadata: req.UserData}
		if attrs.IsEmpty() {
			return nil, invalid("nothing to update")
		}
		user, err := u.auth.UpdateUser(ctx, req.UserID, attrs)
		if err != nil {
			log.Error().Err(err).Msg("admin: update user failed")
			return nil, err
		}
		log.Info().Str("target_user", req.UserID).Msg("admin: user updated")
		return &model.AdminUserResult{User: user, Success: true, UserID: req.UserID}, nil
	}
	return nil, invalid(fmt.Sprintf("unknown action %q", req.Action))
}

func isAdminAction(a model.AdminAction) bool {
	switch a {
	case model.ActionCreateUser, model.ActionDeleteUser, model.ActionUpdateUser:
		return true
	}
	return false
}
