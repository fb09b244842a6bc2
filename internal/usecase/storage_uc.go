package usecase

import (
	"context"
	"fmt"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ StorageUseCase = (*storageUC)(nil)

// StorageUseCase prepares the document buckets and the per-client folder of
// the customer portal.
type StorageUseCase interface {
	Provision(ctx context.Context, userID string) (*model.StorageProvisionResult, error)
}

type storageUC struct {
	storage      adapter.ObjectStorage
	buckets      []string
	clientBucket string
	log          *zerolog.Logger
}

func NewStorageUseCase(storage adapter.ObjectStorage, buckets []string, clientBucket string, logger *zerolog.Logger) *storageUC {
	return &storageUC{storage: storage, buckets: buckets, clientBucket: clientBucket, log: logger}
}

// ClientFolder is the key prefix holding one client's documents.
func ClientFolder(userID string) string { return "clients/" + userID + "/" }

func (u *storageUC) Provision(ctx context.Context, userID string) (*model.StorageProvisionResult, error) {
	if userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("%w: userId must be a uuid", domain.ErrInvalidArgument)
		}
	}
	log := logging.With(ctx, u.log)

	res := &model.StorageProvisionResult{Buckets: make([]model.BucketResult, 0, len(u.buckets))}
	for _, b := range u.buckets {
		created, err := u.storage.EnsureBucket(ctx, b)
		if err != nil {
			log.Error().Err(err).Str("bucket", b).Msg("storage: ensure bucket failed")
			return nil, fmt.Errorf("ensure bucket %s: %w", b, err)
		}
		if created {
			log.Info().Str("bucket", b).Msg("storage: bucket created")
		}
		res.Buckets = append(res.Buckets, model.BucketResult{Name: b, Created: created})
	}

	if userID != "" {
		if u.clientBucket == "" {
			return nil, fmt.Errorf("%w: no client bucket configured", domain.ErrOperationFailed)
		}
		folder := ClientFolder(userID)
		if err := u.storage.EnsureFolder(ctx, u.clientBucket, folder); err != nil {
			log.Error().Err(err).Str("folder", folder).Msg("storage: ensure folder failed")
			return nil, fmt.Errorf("ensure folder: %w", err)
		}
		res.Folder = u.clientBucket + "/" + folder
	}
	return res, nil
}
