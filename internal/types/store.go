package types

import "fmt"

// PackageVersion is the four-part version of a package.
type PackageVersion struct {
	Major    uint16 `json:"major" yaml:"major"`
	Minor    uint16 `json:"minor" yaml:"minor"`
	Build    uint16 `json:"build" yaml:"build"`
	Revision uint16 `json:"revision" yaml:"revision"`
}

func (v PackageVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

type PackageUpdate struct {
	PackageFamilyName string
	Version           PackageVersion
	Mandatory         bool
}

// UpdateBatch holds the pending updates returned by one listing call.
// Native is an adapter-owned handle passed back on install.
type UpdateBatch struct {
	Updates []PackageUpdate
	Native  any
	release func()
}

func NewUpdateBatch(updates []PackageUpdate, native any, release func()) UpdateBatch {
	return UpdateBatch{Updates: updates, Native: native, release: release}
}

func (b UpdateBatch) Len() int {
	return len(b.Updates)
}

// Release frees the native handle, if any. Safe to call on the zero value.
func (b UpdateBatch) Release() {
	if b.release != nil {
		b.release()
	}
}

type InstallResult struct {
	OverallState UpdateState
}

type ProductInfo struct {
	StoreID string
	Title   string
	LinkURI string
}

// StoreInfo is the getStoreInfo payload before it is flattened to a map.
type StoreInfo struct {
	ListingURL    string
	LatestVersion string
}

// PlatformError is a failure reported by the platform store service.
type PlatformError struct {
	HResult uint32
	Message string
}

func (e *PlatformError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform error 0x%08X", e.HResult)
	}
	return e.Message
}
