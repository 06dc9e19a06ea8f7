package cli

import (
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"store-upgrader/internal/app"
	"store-upgrader/internal/types"
)

type backendOptions struct {
	Backend     string
	Scenario    string
	OwnerWindow string
	DryRunShell bool
	Channel     string
}

func addBackendFlags(cmd *cobra.Command, opts *backendOptions) {
	cmd.Flags().StringVar(&opts.Backend, "backend", string(types.BackendAuto), "Store backend (auto, winrt, simulated)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "Scenario file for the simulated backend")
	cmd.Flags().StringVar(&opts.OwnerWindow, "owner-window", "", "Window handle that owns the store consent dialog")
	cmd.Flags().BoolVar(&opts.DryRunShell, "dry-run-shell", false, "Log store URIs instead of launching them")
	cmd.Flags().StringVar(&opts.Channel, "channel", types.ChannelName, "Method channel name")
	_ = viper.BindPFlag("store.backend", cmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("store.scenario", cmd.Flags().Lookup("scenario"))
	_ = viper.BindPFlag("store.owner_window", cmd.Flags().Lookup("owner-window"))
	_ = viper.BindPFlag("store.dry_run_shell", cmd.Flags().Lookup("dry-run-shell"))
	_ = viper.BindPFlag("channel", cmd.Flags().Lookup("channel"))
}

func resolveBackendRequest(cmd *cobra.Command, opts backendOptions) (app.BackendRequest, error) {
	owner, err := parseWindowHandle(resolveString(cmd, opts.OwnerWindow, "store.owner_window", "owner-window"))
	if err != nil {
		return app.BackendRequest{}, err
	}
	return app.BackendRequest{
		Backend:     types.Backend(resolveString(cmd, opts.Backend, "store.backend", "backend")),
		Scenario:    resolveString(cmd, opts.Scenario, "store.scenario", "scenario"),
		OwnerWindow: owner,
		DryRunShell: resolveBool(cmd, opts.DryRunShell, "store.dry_run_shell", "dry-run-shell"),
	}, nil
}

// parseWindowHandle accepts decimal or 0x-prefixed hex.
func parseWindowHandle(value string) (uintptr, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	handle, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid owner window handle: " + value).
			WithCause(err)
	}
	return uintptr(handle), nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return value
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
