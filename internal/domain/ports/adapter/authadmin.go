package adapter

import (
	"context"

	"consulting-portal/internal/domain/model"
)

// AuthAdmin is the hosted auth platform's privileged user API.
type AuthAdmin interface {
	CreateUser(ctx context.Context, attrs model.AuthUserAttributes) (*model.AuthUser, error)
	UpdateUser(ctx context.Context, userID string, attrs model.AuthUserAttributes) (*model.AuthUser, error)
	DeleteUser(ctx context.Context, userID string) error
}

// ObjectStorage is the S3-compatible storage API of the hosted platform.
type ObjectStorage interface {
	// EnsureBucket creates bucket when missing and reports whether it did.
	EnsureBucket(ctx context.Context, bucket string) (created bool, err error)
	// EnsureFolder writes an empty marker object under prefix.
	EnsureFolder(ctx context.Context, bucket, prefix string) error
}
