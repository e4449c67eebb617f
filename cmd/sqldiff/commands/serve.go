package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/server"
	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

func newServeCommand(state *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  POST /api/diff      Diff two tree documents
  POST /api/render    Render a tree document as SQL
  POST /api/validate  Validate a tree document
  GET  /healthz       Liveness probe
  GET  /metrics       Prometheus metrics (telemetry.prometheus)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.host and server.port)")

	return cmd
}

func (state *app) runServe(cmd *cobra.Command, addr string) error {
	sess, err := state.start(cmd, observability.ModeServe)
	if err != nil {
		return err
	}
	defer sess.close()

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	if addr == "" {
		addr = sess.cfg.Addr()
	}

	srv := server.New(server.Settings{
		Addr:         addr,
		ReadTimeout:  sess.cfg.Server.ReadTimeout,
		WriteTimeout: sess.cfg.Server.WriteTimeout,
		IdleTimeout:  sess.cfg.Server.IdleTimeout,
		MaxBodyBytes: sess.cfg.MaxBodyBytes(),
	}, server.Deps{
		Service: sess.svc,
		Logger:  sess.providers.Logger,
		Tracer:  sess.providers.Tracer,
		RED:     red,
		Metrics: sess.providers.MetricsHandler,
		Version: version.Version,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
