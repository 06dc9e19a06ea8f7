package cli

import (
	"context"

	"github.com/spf13/cobra"

	"store-upgrader/internal/app"
	"store-upgrader/internal/output"
)

type doctorOptions struct {
	backendOptions
	Output string
}

func newDoctorCommand() *cobra.Command {
	opts := doctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report platform, backend and package identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, opts)
		},
	}
	addBackendFlags(cmd, &opts.backendOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}

func runDoctor(ctx context.Context, cmd *cobra.Command, opts doctorOptions) error {
	format, err := output.ParseFormat(opts.Output)
	if err != nil {
		return err
	}
	backend, err := resolveBackendRequest(cmd, opts.backendOptions)
	if err != nil {
		return err
	}
	service := newAppService()
	result, err := service.Doctor(ctx, app.DoctorRequest{
		BackendRequest: backend,
		Channel:        resolveString(cmd, opts.Channel, "channel", "channel"),
	})
	if err != nil {
		return err
	}
	return output.NewWriter(cmd.OutOrStdout(), format).Write(result)
}
