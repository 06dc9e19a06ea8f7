package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"store-upgrader/internal/app"
	"store-upgrader/internal/shared"
)

const envPrefix = "STORE_UPGRADER"

var newAppService = app.NewService

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	LogFile    string
}

func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCommand(info)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		stop()
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand(info BuildInfo) *cobra.Command {
	if info.Version == "" {
		info.Version = "dev"
	}
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "store-upgrader",
		Short:         "Microsoft Store update channel for desktop hosts",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			return setupLogging(
				resolveString(cmd, cfg.LogLevel, "log_level", "log-level"),
				resolveString(cmd, cfg.LogFormat, "log_format", "log-format"),
				resolveString(cmd, cfg.LogFile, "log_file", "log-file"),
			)
		},
	}
	cmd.SetVersionTemplate("store-upgrader {{.Version}} (" + info.Commit + ", " + info.Date + ")\n")
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", "console", "Log format (console, json)")
	cmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log_file", cmd.PersistentFlags().Lookup("log-file"))

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCallCommand())
	cmd.AddCommand(newDoctorCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("store-upgrader")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/store-upgrader")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	log.Debug().Str("path", viper.ConfigFileUsed()).Msg("loaded config file")
	return nil
}

// setupLogging configures the global logger. Logs never go to stdout,
// which carries the channel in stdio mode.
func setupLogging(level, format, file string) error {
	var out io.Writer = os.Stderr
	if strings.TrimSpace(file) != "" {
		out = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	case "console", "":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: file != ""})
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown log format: " + format)
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	return shared.ErrorMessage(err)
}
