// Package commands implements the sqldiff command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/sqldiff/pkg/config"
	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

// app is the state shared by every subcommand of one root command.
type app struct {
	viper   *viper.Viper
	cfgFile string
}

// NewRootCommand builds the sqldiff command tree. Flags bound to
// configuration keys take precedence over the config file and SQLDIFF_*
// environment variables.
func NewRootCommand() *cobra.Command {
	state := &app{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "sqldiff",
		Short: "Structural diff for SQL expression trees",
		Long: `sqldiff compares two SQL expression trees and reports the edit script
(remove, insert, update, move, keep) that transforms one into the other.

Trees are read as JSON or YAML documents. Use "-" to read a document from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&state.cfgFile, "config", "", "config file (default is ./.sqldiff.yaml or $HOME/.sqldiff.yaml)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text, json)")

	state.bindFlag(flags, "logging.level", "log-level")
	state.bindFlag(flags, "logging.format", "log-format")

	rootCmd.AddCommand(newDiffCommand(state))
	rootCmd.AddCommand(newValidateCommand(state))
	rootCmd.AddCommand(newRenderCommand(state))
	rootCmd.AddCommand(newServeCommand(state))
	rootCmd.AddCommand(newMCPCommand(state))
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newCompletionCommand())

	return rootCmd
}

func (state *app) bindFlag(flags *pflag.FlagSet, key, name string) {
	err := state.viper.BindPFlag(key, flags.Lookup(name))
	if err != nil {
		panic(fmt.Sprintf("bind flag --%s: %v", name, err))
	}
}

// session is one command invocation's configuration and telemetry.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	svc       *service.Service
}

// start loads configuration and initializes observability for mode.
// Logs go to the command's stderr.
func (state *app) start(cmd *cobra.Command, mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfigWith(state.viper, state.cfgFile)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.Observability(mode, version.Version)
	obsCfg.LogWriter = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	diffMetrics, err := observability.NewDiffMetrics(providers.Meter)
	if err != nil {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}

		return nil, fmt.Errorf("diff metrics: %w", err)
	}

	svc := service.New(service.Deps{
		Logger:  providers.Logger,
		Tracer:  providers.Tracer,
		Metrics: diffMetrics,
		Dialect: cfg.Dialect(),
		F:       cfg.Diff.F,
		T:       cfg.Diff.T,
	})

	return &session{cfg: cfg, providers: providers, svc: svc}, nil
}

// close flushes telemetry.
func (sess *session) close() {
	err := sess.providers.Shutdown(context.Background())
	if err != nil {
		sess.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
