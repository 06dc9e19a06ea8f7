package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"store-upgrader/internal/app"
	"store-upgrader/internal/types"
)

type serveOptions struct {
	backendOptions
	Transport string
	Listen    string
	AddrFile  string
	HostPID   int
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store update channel to a host process",
		Long: "Serve answers installUpdate, openStore and getStoreInfo calls. With the stdio\n" +
			"transport requests and replies are JSON lines on stdin and stdout. With the tcp\n" +
			"transport the Plugin.CallMethod net/rpc service listens on a loopback address.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts)
		},
	}
	addBackendFlags(cmd, &opts.backendOptions)
	cmd.Flags().StringVar(&opts.Transport, "transport", string(types.TransportStdio), "Channel transport (stdio, tcp)")
	cmd.Flags().StringVar(&opts.Listen, "listen", "127.0.0.1:0", "Listen address for the tcp transport")
	cmd.Flags().StringVar(&opts.AddrFile, "addr-file", "", "Write the bound tcp address to this file")
	cmd.Flags().IntVar(&opts.HostPID, "host-pid", 0, "Exit when the process with this pid exits")
	_ = viper.BindPFlag("serve.transport", cmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("serve.listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("serve.addr_file", cmd.Flags().Lookup("addr-file"))
	_ = viper.BindPFlag("serve.host_pid", cmd.Flags().Lookup("host-pid"))
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	backend, err := resolveBackendRequest(cmd, opts.backendOptions)
	if err != nil {
		return err
	}
	service := newAppService()
	return service.Serve(ctx, app.ServeRequest{
		BackendRequest: backend,
		Transport:      types.Transport(resolveString(cmd, opts.Transport, "serve.transport", "transport")),
		Listen:         resolveString(cmd, opts.Listen, "serve.listen", "listen"),
		AddrFile:       resolveString(cmd, opts.AddrFile, "serve.addr_file", "addr-file"),
		HostPID:        resolveInt(cmd, opts.HostPID, "serve.host_pid", "host-pid"),
		Channel:        resolveString(cmd, opts.Channel, "channel", "channel"),
	})
}
