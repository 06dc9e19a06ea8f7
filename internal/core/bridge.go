package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

// Bridge answers the update channel's method calls using the store ports.
type Bridge struct {
	Updates  ports.UpdateServicePort
	Identity ports.PackageIdentityPort
	Shell    ports.ShellPort
}

func NewBridge(updates ports.UpdateServicePort, identity ports.PackageIdentityPort, shell ports.ShellPort) Bridge {
	return Bridge{Updates: updates, Identity: identity, Shell: shell}
}

func (b Bridge) HandleCall(ctx context.Context, call types.MethodCall, result ports.MethodResult) {
	Deliver(b.Dispatch(ctx, call), result)
}

// Dispatch runs one call and returns its single outcome. Handler panics
// are reported as unknown_error.
func (b Bridge) Dispatch(ctx context.Context, call types.MethodCall) (reply types.Reply) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", string(call.Method)).
				Str("panic", fmt.Sprint(r)).
				Msg("method handler panicked")
			reply = errorReply(types.ErrorCodeUnknown, msgUnexpectedFailure)
		}
	}()

	switch call.Method {
	case types.MethodInstallUpdate:
		return b.installUpdate(ctx)
	case types.MethodOpenStore:
		return b.openStore(call.Args)
	case types.MethodGetStoreInfo:
		return b.getStoreInfo(ctx)
	default:
		log.Debug().Str("method", string(call.Method)).Msg("method not implemented")
		return notImplementedReply()
	}
}

func (b Bridge) installUpdate(ctx context.Context) types.Reply {
	if reply, ok := b.requirePackaged(); !ok {
		return reply
	}
	batch, err := b.Updates.ListUpdates(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("listing store updates failed")
		return failureReply(err)
	}
	defer batch.Release()

	if batch.Len() == 0 {
		log.Info().Msg("no store updates pending")
		return successReply(false)
	}
	log.Info().
		Int("count", batch.Len()).
		Str("version", batch.Updates[0].Version.String()).
		Msg("requesting store update install")

	result, err := b.Updates.InstallUpdates(ctx, batch)
	if err != nil {
		log.Warn().Err(err).Msg("store update install failed")
		return failureReply(err)
	}
	log.Info().Str("state", result.OverallState.String()).Msg("store update install finished")
	return successReply(result.OverallState == types.UpdateStateCompleted)
}

func (b Bridge) openStore(args map[string]any) types.Reply {
	productID, ok := argString(args, "productId")
	if !ok {
		return errorReply(types.ErrorCodeBadArgs, msgProductIDRequired)
	}
	uri := StoreProductURI(productID)
	if err := b.Shell.Open(uri); err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("shell launch failed")
	}
	return successReply(nil)
}

func (b Bridge) getStoreInfo(ctx context.Context) types.Reply {
	if reply, ok := b.requirePackaged(); !ok {
		return reply
	}
	product, err := b.Updates.GetProductInfo(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("fetching store product failed")
		return failureReply(err)
	}
	batch, err := b.Updates.ListUpdates(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("listing store updates failed")
		return failureReply(err)
	}
	defer batch.Release()

	info := types.StoreInfo{ListingURL: product.LinkURI}
	if batch.Len() > 0 {
		info.LatestVersion = batch.Updates[0].Version.String()
	}
	return successReply(StoreInfoPayload(info))
}

// StoreInfoPayload flattens StoreInfo into the channel map. releaseNotes
// is always present and always nil.
func StoreInfoPayload(info types.StoreInfo) map[string]any {
	payload := map[string]any{"releaseNotes": nil}
	if info.ListingURL != "" {
		payload["listingUrl"] = info.ListingURL
	}
	if info.LatestVersion != "" {
		payload["latestVersion"] = info.LatestVersion
	}
	return payload
}

func (b Bridge) requirePackaged() (types.Reply, bool) {
	packaged, err := b.Identity.IsPackaged()
	if err != nil {
		log.Warn().Err(err).Msg("package identity check failed")
		return failureReply(err), false
	}
	if !packaged {
		return errorReply(types.ErrorCodeNotPackaged, msgNotPackaged), false
	}
	return types.Reply{}, true
}

// Deliver hands reply to result through the matching method.
func Deliver(reply types.Reply, result ports.MethodResult) {
	switch reply.Status {
	case types.ReplyStatusSuccess:
		result.Success(reply.Value)
	case types.ReplyStatusError:
		result.Error(reply.Code, reply.Message)
	default:
		result.NotImplemented()
	}
}

var _ ports.MethodHandler = Bridge{}
