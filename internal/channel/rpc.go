package channel

import (
	"context"
	"encoding/gob"
	"net"
	"net/rpc"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"store-upgrader/internal/types"
)

// RPCServiceName is the net/rpc service hosts call, as in
// "Plugin.CallMethod".
const RPCServiceName = "Plugin"

func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(map[string]string{})
	gob.Register([]string{})
}

// Plugin is the net/rpc face of a Server.
type Plugin struct {
	server *Server
	ctx    context.Context
}

func (p *Plugin) CallMethod(env types.Envelope, reply *types.ReplyEnvelope) error {
	*reply = p.server.Invoke(p.ctx, env)
	return nil
}

// ServeRPC accepts net/rpc connections on ln until ctx ends.
func (s *Server) ServeRPC(ctx context.Context, ln net.Listener) error {
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(RPCServiceName, &Plugin{server: s, ctx: ctx}); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to register rpc service").
			WithCause(err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	log.Info().Str("addr", ln.Addr().String()).Str("channel", s.channel).Msg("rpc channel listening")
	rpcServer.Accept(ln)
	return ctx.Err()
}

// Client calls a store-upgrader serving over net/rpc.
type Client struct {
	rpc *rpc.Client
}

func Dial(addr string) (*Client, error) {
	client, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to connect to " + addr).
			WithCause(err)
	}
	return &Client{rpc: client}, nil
}

func (c *Client) Call(ctx context.Context, env types.Envelope) (types.ReplyEnvelope, error) {
	var reply types.ReplyEnvelope
	call := c.rpc.Go(RPCServiceName+".CallMethod", env, &reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return types.ReplyEnvelope{}, ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			return types.ReplyEnvelope{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("rpc call failed").
				WithCause(done.Error)
		}
		return reply, nil
	}
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
