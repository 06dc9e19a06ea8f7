package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-upgrader/internal/types"
)

func TestParsePackageVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.PackageVersion
		wantErr bool
	}{
		{name: "four components", input: "1.2.3.4", want: v(1, 2, 3, 4)},
		{name: "three components", input: "1.2.3", want: v(1, 2, 3, 0)},
		{name: "two components", input: "10.0", want: v(10, 0, 0, 0)},
		{name: "v prefix", input: "v2.0.1.0", want: v(2, 0, 1, 0)},
		{name: "surrounding space", input: " 3.1.0.0 ", want: v(3, 1, 0, 0)},
		{name: "max component", input: "65535.0.0.0", want: v(65535, 0, 0, 0)},
		{name: "component overflow", input: "65536.0.0.0", wantErr: true},
		{name: "single component", input: "7", wantErr: true},
		{name: "five components", input: "1.2.3.4.5", wantErr: true},
		{name: "semver prerelease", input: "1.0.0-rc.1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePackageVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected version (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComparePackageVersions(t *testing.T) {
	tests := []struct {
		a, b types.PackageVersion
		want int
	}{
		{a: v(1, 0, 0, 0), b: v(1, 0, 0, 0), want: 0},
		{a: v(1, 0, 0, 1), b: v(1, 0, 0, 0), want: 1},
		{a: v(1, 9, 0, 0), b: v(2, 0, 0, 0), want: -1},
		{a: v(1, 2, 10, 0), b: v(1, 2, 9, 99), want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComparePackageVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestPackageVersionString(t *testing.T) {
	assert.Equal(t, "1.4.2.0", v(1, 4, 2, 0).String())
}

func TestStoreProductURI(t *testing.T) {
	assert.Equal(t, "ms-windows-store://pdp/?ProductId=12345", StoreProductURI("12345"))
	assert.Equal(t, "ms-windows-store://pdp/?ProductId=a&b=c", StoreProductURI("a&b=c"))
	assert.Equal(t, "ms-windows-store://pdp/?ProductId=9N BL&x", StoreProductURI("9N BL&x"))
}
