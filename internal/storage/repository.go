package storage

import (
	"context"

	"github.com/terra-clan/backoffice/internal/models"
)

// Repository persists the recent uploads list
type Repository interface {
	Add(ctx context.Context, asset models.UploadedAsset) error
	Remove(ctx context.Context, url string) error
	List(ctx context.Context) ([]models.UploadedAsset, error)
	ByContext(ctx context.Context, c models.AssetContext) ([]models.UploadedAsset, error)
	Clear(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
