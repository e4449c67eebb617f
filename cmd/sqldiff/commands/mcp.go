package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/mcp"
	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

func newMCPCommand(state *app) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the diff engine as tools that AI agents can discover
and invoke:
  - sql_tree_diff: Edit script between two SQL expression trees
  - sql_tree_render: Render a tree document as SQL
  - sql_tree_validate: Validate a tree document`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				state.viper.Set("logging.level", "debug")
			}

			sess, err := state.start(cmd, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer sess.close()

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Service: sess.svc,
				Logger:  sess.providers.Logger,
				Metrics: red,
				Tracer:  sess.providers.Tracer,
				Version: version.Version,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
