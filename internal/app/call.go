package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"store-upgrader/internal/adapters"
	"store-upgrader/internal/channel"
	"store-upgrader/internal/types"
)

// Call runs a single method call, in-process or against a running server.
func (s Service) Call(ctx context.Context, req CallRequest) (types.ReplyEnvelope, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return types.ReplyEnvelope{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("method is required")
	}
	env := types.Envelope{ID: req.ID, Channel: req.Channel, Method: method, Args: req.Args}

	remote := strings.TrimSpace(req.Remote)
	if remote == "" && req.AddrFile != "" {
		addr, err := adapters.NewAddressFileAdapter(req.AddrFile).Read()
		if err != nil {
			return types.ReplyEnvelope{}, err
		}
		remote = addr
	}
	if remote != "" {
		client, err := channel.Dial(remote)
		if err != nil {
			return types.ReplyEnvelope{}, err
		}
		defer client.Close()
		return client.Call(ctx, env)
	}

	backend, err := s.openBackend(req.BackendRequest)
	if err != nil {
		return types.ReplyEnvelope{}, err
	}
	defer backend.Close()
	return channel.NewServer(backend.bridge(), req.Channel).Invoke(ctx, env), nil
}
