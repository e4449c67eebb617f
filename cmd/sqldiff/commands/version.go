package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

// ErrUnsupportedShell is returned when an unsupported shell is specified.
var ErrUnsupportedShell = errors.New("unsupported shell")

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqldiff %s\n", version.String())
		},
	}
}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqldiff.

Examples:
  sqldiff completion bash                  # Generate bash completion
  sqldiff completion zsh                   # Generate zsh completion
  sqldiff completion fish                  # Generate fish completion`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd, args[0])
		},
	}
}

func runCompletion(cmd *cobra.Command, shell string) error {
	rootCmd := cmd.Root()
	out := cmd.OutOrStdout()

	var err error

	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(out)
	case "zsh":
		err = rootCmd.GenZshCompletion(out)
	case "fish":
		err = rootCmd.GenFishCompletion(out, true)
	case "powershell":
		err = rootCmd.GenPowerShellCompletion(out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShell, shell)
	}

	if err != nil {
		return fmt.Errorf("failed to generate %s completion: %w", shell, err)
	}

	return nil
}
