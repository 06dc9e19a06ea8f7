package core

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-upgrader/internal/types"
)

type fakeUpdates struct {
	updates     []types.PackageUpdate
	listErr     error
	install     types.InstallResult
	installErr  error
	product     types.ProductInfo
	productErr  error
	panicOnList bool

	listCalls    int
	installCalls int
	productCalls int
	released     int
}

func (f *fakeUpdates) ListUpdates(ctx context.Context) (types.UpdateBatch, error) {
	f.listCalls++
	if f.panicOnList {
		panic("boom")
	}
	if f.listErr != nil {
		return types.UpdateBatch{}, f.listErr
	}
	return types.NewUpdateBatch(f.updates, nil, func() { f.released++ }), nil
}

func (f *fakeUpdates) InstallUpdates(ctx context.Context, batch types.UpdateBatch) (types.InstallResult, error) {
	f.installCalls++
	return f.install, f.installErr
}

func (f *fakeUpdates) GetProductInfo(ctx context.Context) (types.ProductInfo, error) {
	f.productCalls++
	return f.product, f.productErr
}

func (f *fakeUpdates) platformCalls() int {
	return f.listCalls + f.installCalls + f.productCalls
}

type fakeIdentity struct {
	packaged bool
	err      error
}

func (f fakeIdentity) IsPackaged() (bool, error) {
	return f.packaged, f.err
}

type fakeShell struct {
	opened []string
	err    error
}

func (f *fakeShell) Open(uri string) error {
	f.opened = append(f.opened, uri)
	return f.err
}

// recordingResult counts every completion so tests can assert there is
// exactly one.
type recordingResult struct {
	successes      []any
	errors         []types.ReplyError
	notImplemented int
}

func (r *recordingResult) Success(value any) {
	r.successes = append(r.successes, value)
}

func (r *recordingResult) Error(code types.ErrorCode, message string) {
	r.errors = append(r.errors, types.ReplyError{Code: code, Message: message})
}

func (r *recordingResult) NotImplemented() {
	r.notImplemented++
}

func (r *recordingResult) completions() int {
	return len(r.successes) + len(r.errors) + r.notImplemented
}

func v(major, minor, build, revision uint16) types.PackageVersion {
	return types.PackageVersion{Major: major, Minor: minor, Build: build, Revision: revision}
}

func newTestBridge(updates *fakeUpdates, packaged bool, shell *fakeShell) Bridge {
	return NewBridge(updates, fakeIdentity{packaged: packaged}, shell)
}

func TestBridgeInstallUpdate(t *testing.T) {
	pending := []types.PackageUpdate{{PackageFamilyName: "App_8wekyb3d8bbwe", Version: v(1, 2, 3, 0)}}
	tests := []struct {
		name        string
		updates     *fakeUpdates
		want        types.Reply
		wantInstall int
	}{
		{
			name:    "no pending updates",
			updates: &fakeUpdates{},
			want:    types.Reply{Status: types.ReplyStatusSuccess, Value: false},
		},
		{
			name:        "completed install",
			updates:     &fakeUpdates{updates: pending, install: types.InstallResult{OverallState: types.UpdateStateCompleted}},
			want:        types.Reply{Status: types.ReplyStatusSuccess, Value: true},
			wantInstall: 1,
		},
		{
			name:        "canceled install",
			updates:     &fakeUpdates{updates: pending, install: types.InstallResult{OverallState: types.UpdateStateCanceled}},
			want:        types.Reply{Status: types.ReplyStatusSuccess, Value: false},
			wantInstall: 1,
		},
		{
			name:        "wifi required",
			updates:     &fakeUpdates{updates: pending, install: types.InstallResult{OverallState: types.UpdateStateErrorWiFiRequired}},
			want:        types.Reply{Status: types.ReplyStatusSuccess, Value: false},
			wantInstall: 1,
		},
		{
			name:    "platform error while listing",
			updates: &fakeUpdates{listErr: &types.PlatformError{HResult: 0x80070005, Message: "Access is denied."}},
			want:    types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodePlatform, Message: "Access is denied."},
		},
		{
			name:        "platform error while installing",
			updates:     &fakeUpdates{updates: pending, installErr: &types.PlatformError{HResult: 0x80004004, Message: "Operation aborted"}},
			want:        types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodePlatform, Message: "Operation aborted"},
			wantInstall: 1,
		},
		{
			name:    "non-platform error",
			updates: &fakeUpdates{listErr: errors.New("disk on fire")},
			want:    types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodeUnknown, Message: "Unexpected failure"},
		},
		{
			name:    "handler panic",
			updates: &fakeUpdates{panicOnList: true},
			want:    types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodeUnknown, Message: "Unexpected failure"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := newTestBridge(tt.updates, true, &fakeShell{})
			got := bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodInstallUpdate})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected reply (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantInstall, tt.updates.installCalls)
		})
	}
}

func TestBridgeInstallUpdateReleasesBatch(t *testing.T) {
	updates := &fakeUpdates{
		updates: []types.PackageUpdate{{Version: v(2, 0, 0, 0)}},
		install: types.InstallResult{OverallState: types.UpdateStateCompleted},
	}
	bridge := newTestBridge(updates, true, &fakeShell{})
	bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodInstallUpdate})
	assert.Equal(t, 1, updates.released)
}

func TestBridgeNotPackagedNeverReachesService(t *testing.T) {
	for _, method := range []types.Method{types.MethodInstallUpdate, types.MethodGetStoreInfo} {
		t.Run(string(method), func(t *testing.T) {
			updates := &fakeUpdates{updates: []types.PackageUpdate{{Version: v(1, 0, 0, 0)}}}
			bridge := newTestBridge(updates, false, &fakeShell{})
			got := bridge.Dispatch(t.Context(), types.MethodCall{Method: method})
			assert.Equal(t, types.ReplyStatusError, got.Status)
			assert.Equal(t, types.ErrorCodeNotPackaged, got.Code)
			assert.Zero(t, updates.platformCalls())
		})
	}
}

func TestBridgeFailedPreconditionMapsToNotPackaged(t *testing.T) {
	updates := &fakeUpdates{listErr: errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("store service requires Windows")}
	bridge := newTestBridge(updates, true, &fakeShell{})
	got := bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodInstallUpdate})
	assert.Equal(t, types.ErrorCodeNotPackaged, got.Code)
	assert.Equal(t, "store service requires Windows", got.Message)
}

func TestBridgeIdentityErrorIsTranslated(t *testing.T) {
	updates := &fakeUpdates{}
	bridge := NewBridge(updates, fakeIdentity{err: &types.PlatformError{HResult: 0x80004005, Message: "Unspecified error"}}, &fakeShell{})
	got := bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodGetStoreInfo})
	assert.Equal(t, types.ErrorCodePlatform, got.Code)
	assert.Zero(t, updates.platformCalls())
}

func TestBridgeOpenStore(t *testing.T) {
	shell := &fakeShell{}
	bridge := newTestBridge(&fakeUpdates{}, false, shell)
	got := bridge.Dispatch(t.Context(), types.MethodCall{
		Method: types.MethodOpenStore,
		Args:   map[string]any{"productId": "12345"},
	})
	if diff := cmp.Diff(types.Reply{Status: types.ReplyStatusSuccess}, got); diff != "" {
		t.Fatalf("unexpected reply (-want +got):\n%s", diff)
	}
	require.Len(t, shell.opened, 1)
	assert.Equal(t, "ms-windows-store://pdp/?ProductId=12345", shell.opened[0])
}

func TestBridgeOpenStoreIgnoresShellFailure(t *testing.T) {
	shell := &fakeShell{err: errors.New("no handler for scheme")}
	bridge := newTestBridge(&fakeUpdates{}, true, shell)
	got := bridge.Dispatch(t.Context(), types.MethodCall{
		Method: types.MethodOpenStore,
		Args:   map[string]any{"productId": "9NBLGGH4NNS1"},
	})
	assert.Equal(t, types.ReplyStatusSuccess, got.Status)
	assert.Len(t, shell.opened, 1)
}

func TestBridgeOpenStoreBadArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "nil args", args: nil},
		{name: "missing productId", args: map[string]any{"other": "x"}},
		{name: "empty productId", args: map[string]any{"productId": ""}},
		{name: "non-string productId", args: map[string]any{"productId": float64(12345)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := &fakeShell{}
			bridge := newTestBridge(&fakeUpdates{}, true, shell)
			got := bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodOpenStore, Args: tt.args})
			want := types.Reply{Status: types.ReplyStatusError, Code: types.ErrorCodeBadArgs, Message: "productId is required"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("unexpected reply (-want +got):\n%s", diff)
			}
			assert.Empty(t, shell.opened)
		})
	}
}

func TestBridgeGetStoreInfo(t *testing.T) {
	tests := []struct {
		name    string
		updates *fakeUpdates
		want    map[string]any
	}{
		{
			name:    "listing only",
			updates: &fakeUpdates{product: types.ProductInfo{LinkURI: "https://www.microsoft.com/store/apps/9NBLGGH4NNS1"}},
			want: map[string]any{
				"listingUrl":   "https://www.microsoft.com/store/apps/9NBLGGH4NNS1",
				"releaseNotes": nil,
			},
		},
		{
			name: "listing and pending update",
			updates: &fakeUpdates{
				product: types.ProductInfo{LinkURI: "https://www.microsoft.com/store/apps/9NBLGGH4NNS1"},
				updates: []types.PackageUpdate{{Version: v(1, 4, 2, 0)}, {Version: v(9, 9, 9, 9)}},
			},
			want: map[string]any{
				"listingUrl":    "https://www.microsoft.com/store/apps/9NBLGGH4NNS1",
				"latestVersion": "1.4.2.0",
				"releaseNotes":  nil,
			},
		},
		{
			name:    "nothing known",
			updates: &fakeUpdates{},
			want:    map[string]any{"releaseNotes": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := newTestBridge(tt.updates, true, &fakeShell{})
			got := bridge.Dispatch(t.Context(), types.MethodCall{
				Method: types.MethodGetStoreInfo,
				Args:   map[string]any{"productId": "ignored"},
			})
			require.Equal(t, types.ReplyStatusSuccess, got.Status)
			payload, ok := got.Value.(map[string]any)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, payload); diff != "" {
				t.Fatalf("unexpected payload (-want +got):\n%s", diff)
			}
			notes, present := payload["releaseNotes"]
			assert.True(t, present)
			assert.Nil(t, notes)
		})
	}
}

func TestBridgeGetStoreInfoErrors(t *testing.T) {
	tests := []struct {
		name     string
		updates  *fakeUpdates
		wantCode types.ErrorCode
	}{
		{
			name:     "product lookup platform error",
			updates:  &fakeUpdates{productErr: &types.PlatformError{HResult: 0x803F6107, Message: "The product was not found"}},
			wantCode: types.ErrorCodePlatform,
		},
		{
			name:     "update listing unknown error",
			updates:  &fakeUpdates{listErr: context.Canceled},
			wantCode: types.ErrorCodeUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := newTestBridge(tt.updates, true, &fakeShell{})
			got := bridge.Dispatch(t.Context(), types.MethodCall{Method: types.MethodGetStoreInfo})
			assert.Equal(t, types.ReplyStatusError, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestBridgeUnknownMethodIsNotImplemented(t *testing.T) {
	updates := &fakeUpdates{}
	bridge := newTestBridge(updates, true, &fakeShell{})
	got := bridge.Dispatch(t.Context(), types.MethodCall{Method: "checkForUpdates"})
	assert.Equal(t, types.ReplyStatusNotImplemented, got.Status)
	assert.Zero(t, updates.platformCalls())
}

func TestBridgeHandleCallCompletesExactlyOnce(t *testing.T) {
	calls := []types.MethodCall{
		{Method: types.MethodInstallUpdate},
		{Method: types.MethodOpenStore},
		{Method: types.MethodOpenStore, Args: map[string]any{"productId": "12345"}},
		{Method: types.MethodGetStoreInfo},
		{Method: "nope"},
	}
	for _, packaged := range []bool{true, false} {
		for _, call := range calls {
			result := &recordingResult{}
			updates := &fakeUpdates{listErr: errors.New("x")}
			bridge := newTestBridge(updates, packaged, &fakeShell{})
			bridge.HandleCall(t.Context(), call, result)
			assert.Equal(t, 1, result.completions(), "method %s packaged=%v", call.Method, packaged)
		}
	}
}
