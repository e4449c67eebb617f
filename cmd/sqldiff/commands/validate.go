package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
)

func newValidateCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a tree document against the tree schema",
		Long: `Validate a tree document against the embedded tree schema.

Exits with status 2 when the document is not valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.runValidate(cmd, args[0])
		},
	}
}

func (state *app) runValidate(cmd *cobra.Command, path string) error {
	sess, err := state.start(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	input, err := readDocument(path, cmd.InOrStdin(), sess.cfg.MaxDocumentBytes())
	if err != nil {
		return err
	}

	issues, err := sess.svc.Validate(cmd.Context(), input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(issues) == 0 {
		fmt.Fprintf(out, "%s: valid\n", input.Label)

		return nil
	}

	for _, issue := range issues {
		fmt.Fprintf(out, "%s: %s\n", input.Label, issue)
	}

	return fmt.Errorf("%s: %w: %d issue(s)", input.Label, ErrValidationFailed, len(issues))
}
