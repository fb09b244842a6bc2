package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// CanManageUsers reports whether any of roles grants the back-office user tools.
func CanManageUsers(roles []Role) bool {
	for _, r := range roles {
		switch Role(strings.ToLower(string(r))) {
		case RoleAdmin, RoleOwner:
			return true
		}
	}
	return false
}

type AdminAction string

const (
	ActionCreateUser AdminAction = "createUser"
	ActionDeleteUser AdminAction = "deleteUser"
	ActionUpdateUser AdminAction = "updateUser"
)

// AdminUserRequest is the body accepted by the admin user-management function.
type AdminUserRequest struct {
	Action   AdminAction    `json:"action" validate:"required,oneof=createUser deleteUser updateUser"`
	UserID   string         `json:"userId,omitempty"`
	Email    string         `json:"email,omitempty" validate:"omitempty,email"`
	Password string         `json:"password,omitempty"`
	UserData map[string]any `json:"userData,omitempty"`
}

// AuthUser is the account record returned by the auth admin API.
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AuthUserAttributes is the mutable part of an account.
type AuthUserAttributes struct {
	Email        string         `json:"email,omitempty"`
	Password     string         `json:"password,omitempty"`
	EmailConfirm bool           `json:"email_confirm,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

func (a AuthUserAttributes) IsEmpty() bool {
	return a.Email == "" && a.Password == "" && len(a.UserMetadata) == 0
}

// BucketResult reports one storage bucket checked by the provisioning function.
type BucketResult struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// StorageProvisionResult is returned by the storage provisioning function.
type StorageProvisionResult struct {
	Buckets []BucketResult `json:"buckets"`
	Folder  string         `json:"folder,omitempty"`
}

// AdminUserResult is the admin function's success payload.
type AdminUserResult struct {
	User    *AuthUser `json:"user,omitempty"`
	Success bool      `json:"success"`
	UserID  string    `json:"userId,omitempty"`
}
