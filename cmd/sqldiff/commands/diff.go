package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sqldiff/pkg/config"
	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/report"
	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

// ErrInvalidMatch is returned for a --match value that is not SRC=TGT.
var ErrInvalidMatch = errors.New("invalid --match value, want SOURCE_PATH=TARGET_PATH")

type diffOptions struct {
	dialect string
	output  string
	matches []string
	noColor bool
}

func newDiffCommand(state *app) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff SOURCE TARGET",
		Short: "Compare two SQL expression trees",
		Long: `Compare two SQL expression trees and print the edit script that turns
SOURCE into TARGET.

Examples:
  sqldiff diff before.json after.json                 # Unified report
  sqldiff diff -f summary before.yaml after.yaml      # Summary counts
  sqldiff diff --delta-only -f json a.json b.json     # Changes only, as JSON
  sqldiff diff --match /expressions[0]=/expressions[1] a.json b.json
  cat a.json | sqldiff diff - b.json                  # Source from stdin`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.runDiff(cmd, args[0], args[1], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", config.DefaultFormat, "output format ("+strings.Join(config.Formats, ", ")+")")
	flags.Bool("delta-only", config.DefaultDeltaOnly, "omit unchanged nodes")
	flags.String("color", config.DefaultColor, "colorize output (auto, always, never)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&opts.dialect, "dialect", "d", "", "SQL dialect for rendering (default from config)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.StringArrayVarP(&opts.matches, "match", "m", nil, "pin a node pair before matching (SOURCE_PATH=TARGET_PATH, repeatable)")

	state.bindFlag(flags, "diff.format", "format")
	state.bindFlag(flags, "diff.delta_only", "delta-only")
	state.bindFlag(flags, "diff.color", "color")

	return cmd
}

func (state *app) runDiff(cmd *cobra.Command, sourcePath, targetPath string, opts diffOptions) error {
	if sourcePath == stdinPath && targetPath == stdinPath {
		return ErrStdinTwice
	}

	matchings, err := parseMatches(opts.matches)
	if err != nil {
		return err
	}

	sess, err := state.start(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	limit := sess.cfg.MaxDocumentBytes()

	source, err := readDocument(sourcePath, cmd.InOrStdin(), limit)
	if err != nil {
		return err
	}

	target, err := readDocument(targetPath, cmd.InOrStdin(), limit)
	if err != nil {
		return err
	}

	doc, err := sess.svc.Diff(cmd.Context(), source, target, service.DiffParams{
		Dialect:   opts.dialect,
		Matchings: matchings,
		DeltaOnly: sess.cfg.Diff.DeltaOnly,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	writeErr := report.Write(out, doc, report.Options{
		Format: sess.cfg.Diff.Format,
		Color:  useColor(sess.cfg.Diff.Color, opts.noColor, out),
	})

	return errors.Join(writeErr, closeOut())
}

// parseMatches splits SOURCE_PATH=TARGET_PATH pairs.
func parseMatches(values []string) ([]service.MatchingPath, error) {
	paths := make([]service.MatchingPath, 0, len(values))

	for _, value := range values {
		source, target, ok := strings.Cut(value, "=")
		source, target = strings.TrimSpace(source), strings.TrimSpace(target)

		if !ok || source == "" || target == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMatch, value)
		}

		paths = append(paths, service.MatchingPath{Source: source, Target: target})
	}

	return paths, nil
}

// useColor resolves the color mode for out. "auto" colors terminals unless
// NO_COLOR is set.
func useColor(mode string, noColor bool, out io.Writer) bool {
	if noColor {
		return false
	}

	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
