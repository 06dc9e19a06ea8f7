package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNewReplyEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		want  ReplyEnvelope
	}{
		{
			name:  "success carries the value",
			reply: Reply{Status: ReplyStatusSuccess, Value: true},
			want:  ReplyEnvelope{ID: "1", Status: ReplyStatusSuccess, Result: true},
		},
		{
			name:  "error carries code and message",
			reply: Reply{Status: ReplyStatusError, Value: "dropped", Code: ErrorCodeBadArgs, Message: "productId is required"},
			want:  ReplyEnvelope{ID: "1", Status: ReplyStatusError, Error: &ReplyError{Code: ErrorCodeBadArgs, Message: "productId is required"}},
		},
		{
			name:  "not implemented is bare",
			reply: Reply{Status: ReplyStatusNotImplemented, Code: ErrorCodeUnknown},
			want:  ReplyEnvelope{ID: "1", Status: ReplyStatusNotImplemented},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, NewReplyEnvelope("1", tt.reply)); diff != "" {
				t.Fatalf("unexpected envelope (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReplyEnvelopeString(t *testing.T) {
	assert.Equal(t, "a: success", ReplyEnvelope{ID: "a", Status: ReplyStatusSuccess}.String())
	assert.Equal(t, `a: success {"releaseNotes":null}`,
		ReplyEnvelope{ID: "a", Status: ReplyStatusSuccess, Result: map[string]any{"releaseNotes": nil}}.String())
	assert.Equal(t, "a: error not_packaged: nope",
		ReplyEnvelope{ID: "a", Status: ReplyStatusError, Error: &ReplyError{Code: ErrorCodeNotPackaged, Message: "nope"}}.String())
	assert.Equal(t, "a: not implemented", ReplyEnvelope{ID: "a", Status: ReplyStatusNotImplemented}.String())
}

func TestUpdateStateNames(t *testing.T) {
	for state := UpdateStatePending; state <= UpdateStateErrorWiFiRequired; state++ {
		parsed, ok := ParseUpdateState(state.String())
		assert.True(t, ok, state.String())
		assert.Equal(t, state, parsed)
	}
	assert.Equal(t, "unknown", UpdateState(99).String())
	_, ok := ParseUpdateState("exploded")
	assert.False(t, ok)
}

func TestPlatformErrorMessage(t *testing.T) {
	assert.Equal(t, "Access is denied.", (&PlatformError{HResult: 0x80070005, Message: "Access is denied."}).Error())
	assert.Equal(t, "platform error 0x80070005", (&PlatformError{HResult: 0x80070005}).Error())
}

func TestUpdateBatchRelease(t *testing.T) {
	released := 0
	batch := NewUpdateBatch([]PackageUpdate{{PackageFamilyName: "a"}}, nil, func() { released++ })
	assert.Equal(t, 1, batch.Len())
	batch.Release()
	assert.Equal(t, 1, released)

	UpdateBatch{}.Release()
}
