package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
)

func newRenderCommand(state *app) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a tree document as SQL",
		Long: `Render a tree document as SQL text in the chosen dialect.

Constructs the dialect cannot express are reported as warnings on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.runRender(cmd, args[0], dialect)
		},
	}

	cmd.Flags().StringVarP(&dialect, "dialect", "d", "", "SQL dialect (default from config)")

	return cmd
}

func (state *app) runRender(cmd *cobra.Command, path, dialect string) error {
	sess, err := state.start(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	input, err := readDocument(path, cmd.InOrStdin(), sess.cfg.MaxDocumentBytes())
	if err != nil {
		return err
	}

	rendered, err := sess.svc.Render(cmd.Context(), input, dialect)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), rendered.SQL)

	for _, warning := range rendered.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	return nil
}
