package cli

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"store-upgrader/internal/app"
	"store-upgrader/internal/output"
)

type callOptions struct {
	backendOptions
	ID       string
	Args     []string
	ArgsJSON string
	Remote   string
	AddrFile string
	Output   string
}

func newCallCommand() *cobra.Command {
	opts := callOptions{}
	cmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Run one channel method and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), cmd, args[0], opts)
		},
	}
	addBackendFlags(cmd, &opts.backendOptions)
	cmd.Flags().StringVar(&opts.ID, "id", "", "Request id (generated when empty)")
	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "String argument as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.ArgsJSON, "args-json", "", "Arguments as a JSON object")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "Address of a running tcp server")
	cmd.Flags().StringVar(&opts.AddrFile, "addr-file", "", "Read the server address from this file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func runCall(ctx context.Context, cmd *cobra.Command, method string, opts callOptions) error {
	format, err := output.ParseFormat(opts.Output)
	if err != nil {
		return err
	}
	args, err := parseCallArgs(opts.Args, opts.ArgsJSON)
	if err != nil {
		return err
	}
	backend, err := resolveBackendRequest(cmd, opts.backendOptions)
	if err != nil {
		return err
	}
	service := newAppService()
	reply, err := service.Call(ctx, app.CallRequest{
		BackendRequest: backend,
		ID:             opts.ID,
		Method:         method,
		Args:           args,
		Channel:        resolveString(cmd, opts.Channel, "channel", "channel"),
		Remote:         opts.Remote,
		AddrFile:       opts.AddrFile,
	})
	if err != nil {
		return err
	}
	return output.NewWriter(cmd.OutOrStdout(), format).Write(reply)
}

// parseCallArgs merges the --args-json object with --arg pairs; pairs win.
func parseCallArgs(pairs []string, rawJSON string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &args); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("--args-json must be a JSON object").
				WithCause(err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("--arg must be key=value, got " + pair)
		}
		args[key] = value
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}
