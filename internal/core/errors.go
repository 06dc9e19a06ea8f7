package core

import (
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"store-upgrader/internal/shared"
	"store-upgrader/internal/types"
)

const (
	msgProductIDRequired = "productId is required"
	msgNotPackaged       = "the application is not running with package identity"
	msgUnexpectedFailure = "Unexpected failure"
)

// translateError maps a port error onto the channel's error vocabulary.
func translateError(err error) (types.ErrorCode, string) {
	var platformErr *types.PlatformError
	if errors.As(err, &platformErr) {
		return types.ErrorCodePlatform, platformErr.Error()
	}
	if errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition {
		return types.ErrorCodeNotPackaged, shared.ErrorMessage(err)
	}
	return types.ErrorCodeUnknown, msgUnexpectedFailure
}

func successReply(value any) types.Reply {
	return types.Reply{Status: types.ReplyStatusSuccess, Value: value}
}

func errorReply(code types.ErrorCode, message string) types.Reply {
	return types.Reply{Status: types.ReplyStatusError, Code: code, Message: message}
}

func failureReply(err error) types.Reply {
	code, message := translateError(err)
	return errorReply(code, message)
}

func notImplementedReply() types.Reply {
	return types.Reply{Status: types.ReplyStatusNotImplemented}
}
