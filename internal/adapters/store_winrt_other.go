//go:build !windows

package adapters

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"store-upgrader/internal/types"
)

// WinRTStoreAdapter is only functional on Windows.
type WinRTStoreAdapter struct{}

func NewWinRTStoreAdapter(WinRTOptions) (*WinRTStoreAdapter, error) {
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("the winrt backend requires windows")
}

func (a *WinRTStoreAdapter) ListUpdates(context.Context) (types.UpdateBatch, error) {
	return types.UpdateBatch{}, NewUnsupportedStoreAdapter("").err()
}

func (a *WinRTStoreAdapter) InstallUpdates(context.Context, types.UpdateBatch) (types.InstallResult, error) {
	return types.InstallResult{}, NewUnsupportedStoreAdapter("").err()
}

func (a *WinRTStoreAdapter) GetProductInfo(context.Context) (types.ProductInfo, error) {
	return types.ProductInfo{}, NewUnsupportedStoreAdapter("").err()
}

func (a *WinRTStoreAdapter) Close() {}
