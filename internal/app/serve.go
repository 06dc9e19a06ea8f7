package app

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"store-upgrader/internal/adapters"
	"store-upgrader/internal/channel"
	"store-upgrader/internal/types"
)

const defaultListenAddr = "127.0.0.1:0"

var errHostExited = errors.New("host process exited")

// Serve answers channel requests until the input ends, ctx ends, or the
// host process goes away.
func (s Service) Serve(ctx context.Context, req ServeRequest) error {
	transport := req.Transport
	if transport == "" {
		transport = types.TransportStdio
	}
	if transport != types.TransportStdio && transport != types.TransportTCP {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown transport " + string(transport))
	}

	backend, err := s.openBackend(req.BackendRequest)
	if err != nil {
		return err
	}
	defer backend.Close()
	server := channel.NewServer(backend.bridge(), req.Channel)
	log.Info().
		Str("transport", string(transport)).
		Str("backend", string(backend.Kind)).
		Str("channel", server.Channel()).
		Msg("serving store update channel")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		if transport == types.TransportTCP {
			return s.serveTCP(groupCtx, server, req)
		}
		return server.ServeStream(groupCtx, s.Stdin, s.Stdout)
	})
	if req.HostPID > 0 {
		group.Go(func() error {
			if err := adapters.NewHostWatchdog(req.HostPID).Wait(groupCtx); err != nil {
				return nil
			}
			return errHostExited
		})
	}

	err = group.Wait()
	if errors.Is(err, errHostExited) || errors.Is(err, context.Canceled) {
		log.Info().Err(err).Msg("store update channel stopped")
		return nil
	}
	return err
}

func (s Service) serveTCP(ctx context.Context, server *channel.Server, req ServeRequest) error {
	addr := strings.TrimSpace(req.Listen)
	if addr == "" {
		addr = defaultListenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to listen on " + addr).
			WithCause(err)
	}
	defer ln.Close()

	if req.AddrFile != "" {
		addrFile := adapters.NewAddressFileAdapter(req.AddrFile)
		if err := addrFile.Write(ln.Addr().String()); err != nil {
			return err
		}
		defer func() {
			if err := addrFile.Remove(); err != nil {
				log.Warn().Err(err).Str("path", req.AddrFile).Msg("failed to remove address file")
			}
		}()
	}
	return server.ServeRPC(ctx, ln)
}
