package adapters

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

// UnsupportedStoreAdapter fails every store call. It stands in for the
// Store service where none exists.
type UnsupportedStoreAdapter struct {
	Reason string
}

func NewUnsupportedStoreAdapter(reason string) UnsupportedStoreAdapter {
	return UnsupportedStoreAdapter{Reason: reason}
}

func (a UnsupportedStoreAdapter) ListUpdates(context.Context) (types.UpdateBatch, error) {
	return types.UpdateBatch{}, a.err()
}

func (a UnsupportedStoreAdapter) InstallUpdates(context.Context, types.UpdateBatch) (types.InstallResult, error) {
	return types.InstallResult{}, a.err()
}

func (a UnsupportedStoreAdapter) GetProductInfo(context.Context) (types.ProductInfo, error) {
	return types.ProductInfo{}, a.err()
}

func (a UnsupportedStoreAdapter) err() error {
	reason := a.Reason
	if reason == "" {
		reason = "the store service is not available on this platform"
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(reason)
}

var _ ports.UpdateServicePort = UnsupportedStoreAdapter{}
