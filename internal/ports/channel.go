package ports

import (
	"context"

	"store-upgrader/internal/types"
)

// MethodResult receives the outcome of one method call. Exactly one of
// its methods is expected to be called per call.
type MethodResult interface {
	Success(value any)
	Error(code types.ErrorCode, message string)
	NotImplemented()
}

type MethodHandler interface {
	HandleCall(ctx context.Context, call types.MethodCall, result MethodResult)
}
