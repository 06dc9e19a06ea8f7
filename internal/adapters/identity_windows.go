//go:build windows

package adapters

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"store-upgrader/internal/ports"
	"store-upgrader/internal/shared"
	"store-upgrader/internal/types"
)

const (
	errorInsufficientBuffer = 122
	appModelErrorNoPackage  = 15700
)

var procGetCurrentPackageFullName = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetCurrentPackageFullName")

// PackageIdentityAdapter asks the OS whether the process has package
// identity.
type PackageIdentityAdapter struct{}

func NewPackageIdentityAdapter() PackageIdentityAdapter {
	return PackageIdentityAdapter{}
}

func (a PackageIdentityAdapter) IsPackaged() (bool, error) {
	if err := procGetCurrentPackageFullName.Find(); err != nil {
		// Pre-Windows 8 has no package model at all.
		return false, nil
	}
	var length uint32
	rc, _, _ := procGetCurrentPackageFullName.Call(uintptr(unsafe.Pointer(&length)), 0)
	switch rc {
	case appModelErrorNoPackage:
		return false, nil
	case errorInsufficientBuffer, 0:
		return true, nil
	default:
		return false, &types.PlatformError{
			HResult: uint32(rc),
			Message: "GetCurrentPackageFullName failed with " + shared.HResultString(uint32(rc)),
		}
	}
}

var _ ports.PackageIdentityPort = PackageIdentityAdapter{}
