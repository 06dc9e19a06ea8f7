package adapters

import "store-upgrader/internal/ports"

type StaticIdentityAdapter struct {
	Packaged bool
}

func NewStaticIdentityAdapter(packaged bool) StaticIdentityAdapter {
	return StaticIdentityAdapter{Packaged: packaged}
}

func (a StaticIdentityAdapter) IsPackaged() (bool, error) {
	return a.Packaged, nil
}

var _ ports.PackageIdentityPort = StaticIdentityAdapter{}
