//go:build !windows

package adapters

import "store-upgrader/internal/ports"

// PackageIdentityAdapter reports no package identity outside Windows.
type PackageIdentityAdapter struct{}

func NewPackageIdentityAdapter() PackageIdentityAdapter {
	return PackageIdentityAdapter{}
}

func (a PackageIdentityAdapter) IsPackaged() (bool, error) {
	return false, nil
}

var _ ports.PackageIdentityPort = PackageIdentityAdapter{}
