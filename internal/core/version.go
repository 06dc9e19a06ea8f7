package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"store-upgrader/internal/types"
)

var packageVersionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

// ParsePackageVersion parses "major.minor[.build[.revision]]". Missing
// components are zero, each component must fit in 16 bits.
func ParsePackageVersion(value string) (types.PackageVersion, error) {
	matches := packageVersionRegex.FindStringSubmatch(strings.TrimSpace(value))
	if matches == nil {
		return types.PackageVersion{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid package version %q", value))
	}
	var parts [4]uint16
	for i := range parts {
		raw := matches[i+1]
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return types.PackageVersion{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package version component %q out of range", raw)).
				WithCause(err)
		}
		parts[i] = uint16(n)
	}
	return types.PackageVersion{
		Major:    parts[0],
		Minor:    parts[1],
		Build:    parts[2],
		Revision: parts[3],
	}, nil
}

// ComparePackageVersions returns -1, 0, or 1.
func ComparePackageVersions(a types.PackageVersion, b types.PackageVersion) int {
	left := [4]uint16{a.Major, a.Minor, a.Build, a.Revision}
	right := [4]uint16{b.Major, b.Minor, b.Build, b.Revision}
	for i := range left {
		if left[i] > right[i] {
			return 1
		}
		if left[i] < right[i] {
			return -1
		}
	}
	return 0
}
