package ports

import (
	"context"

	"store-upgrader/internal/types"
)

type UpdateServicePort interface {
	ListUpdates(ctx context.Context) (types.UpdateBatch, error)
	InstallUpdates(ctx context.Context, batch types.UpdateBatch) (types.InstallResult, error)
	GetProductInfo(ctx context.Context) (types.ProductInfo, error)
}

type PackageIdentityPort interface {
	IsPackaged() (bool, error)
}

type ShellPort interface {
	Open(uri string) error
}
