package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/cmd/sqldiff/commands"
	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
	"github.com/Sumatoshi-tech/sqldiff/pkg/report"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/expr"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/version"
)

type cliResult struct {
	err    error
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	rootCmd := commands.NewRootCommand()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return cliResult{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func writeTree(t *testing.T, dir, name string, tree *node.Node) string {
	t.Helper()

	data, err := node.Encode(tree, node.FormatFromPath(name))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// reorderFiles writes SELECT a, b, c and SELECT b, c, a.
func reorderFiles(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	source := writeTree(t, dir, "a.json", expr.Select(expr.Column("a"), expr.Column("b"), expr.Column("c")).Build())
	target := writeTree(t, dir, "b.yaml", expr.Select(expr.Column("b"), expr.Column("c"), expr.Column("a")).Build())

	return source, target
}

func TestRoot_HelpAndSubcommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantOut string
		args    []string
		wantErr bool
	}{
		{wantOut: "edit script", args: []string{"--help"}},
		{wantOut: "print the edit script", args: []string{"diff", "--help"}},
		{wantOut: "embedded tree schema", args: []string{"validate", "--help"}},
		{wantOut: "POST /api/diff", args: []string{"serve", "--help"}},
		{wantOut: "sql_tree_diff", args: []string{"mcp", "--help"}},
		{args: []string{"unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			res := run(t, "", tt.args...)

			if tt.wantErr {
				require.Error(t, res.err)

				return
			}

			require.NoError(t, res.err)
			assert.Contains(t, res.stdout, tt.wantOut)
		})
	}
}

func TestDiff_Unified(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)

	res := run(t, "", "diff", source, target)
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "--- "+source, lines[0])
	assert.Equal(t, "+++ "+target, lines[1])
	assert.Equal(t, "@@ -0 +0 ~0 >1 =3 @@", lines[2])
	assert.Equal(t, "> move   /expressions[0] -> /expressions[2]  a", lines[3])
	assert.NotContains(t, res.stdout, "\x1b[")
}

func TestDiff_JSONDeltaOnly(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)

	res := run(t, "", "diff", "--format", "json", "--delta-only", "--dialect", "postgres", source, target)
	require.NoError(t, res.err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))

	require.Len(t, doc.Edits, 1)
	assert.Equal(t, diff.KindMove, doc.Edits[0].Kind)
	assert.Equal(t, "postgres", doc.Dialect)
}

func TestDiff_SummaryAndTable(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)

	summary := run(t, "", "diff", "-f", "summary", source, target)
	require.NoError(t, summary.err)
	assert.Contains(t, summary.stdout, "Diff Summary (ansi):")
	assert.Contains(t, summary.stdout, "moved:")

	table := run(t, "", "diff", "-f", "table", source, target)
	require.NoError(t, table.err)
	assert.Contains(t, table.stdout, "TOTAL: 4 EDITS")
}

func TestDiff_ColorAlways(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)

	colored := run(t, "", "diff", "--color", "always", source, target)
	require.NoError(t, colored.err)
	assert.Contains(t, colored.stdout, "\x1b[")

	plain := run(t, "", "diff", "--color", "always", "--no-color", source, target)
	require.NoError(t, plain.err)
	assert.NotContains(t, plain.stdout, "\x1b[")
}

func TestDiff_Stdin(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)

	data, err := os.ReadFile(source)
	require.NoError(t, err)

	res := run(t, string(data), "diff", "--delta-only", "-", target)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "--- stdin")
	assert.Contains(t, res.stdout, "> move")

	twice := run(t, string(data), "diff", "-", "-")
	require.ErrorIs(t, twice.err, commands.ErrStdinTwice)
	assert.Equal(t, commands.ExitError, commands.ExitCode(twice.err))
}

func TestDiff_Match(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tree := expr.Select(expr.Column("a")).Build()
	source := writeTree(t, dir, "a.json", tree)
	target := writeTree(t, dir, "b.json", tree)

	res := run(t, "", "diff", "-f", "json", "--match", "/expressions[0]=/expressions[0]", source, target)
	require.NoError(t, res.err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, 1, doc.Stats.Seeded)

	bad := run(t, "", "diff", "--match", "/expressions[0]", source, target)
	require.ErrorIs(t, bad.err, commands.ErrInvalidMatch)

	missing := run(t, "", "diff", "--match", "/expressions[5]=/", source, target)
	require.Error(t, missing.err)
	assert.Contains(t, missing.err.Error(), "matching #0 source")
}

func TestDiff_Output(t *testing.T) {
	t.Parallel()

	source, target := reorderFiles(t)
	output := filepath.Join(t.TempDir(), "report.txt")

	res := run(t, "", "diff", "-o", output, source, target)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "> move")
}

func TestDiff_Errors(t *testing.T) {
	t.Parallel()

	source, _ := reorderFiles(t)
	dir := t.TempDir()
	invalid := writeFile(t, dir, "bad.json", `{"tag": 1}`)
	tiny := writeFile(t, dir, "tiny.yaml", "input:\n  max_document_size: 10B\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "invalid document", args: []string{"diff", source, invalid}, code: commands.ExitValidation},
		{name: "missing file", args: []string{"diff", source, filepath.Join(dir, "nope.json")}, code: commands.ExitError},
		{name: "directory", args: []string{"diff", source, dir}, code: commands.ExitError},
		{name: "unknown format", args: []string{"diff", "-f", "xml", source, source}, code: commands.ExitError},
		{name: "unknown dialect", args: []string{"diff", "-d", "cobol", source, source}, code: commands.ExitError},
		{name: "size limit", args: []string{"--config", tiny, "diff", source, source}, code: commands.ExitError},
		{name: "arg count", args: []string{"diff", source}, code: commands.ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := run(t, "", tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, tt.code, commands.ExitCode(res.err))
		})
	}
}

func TestDiff_SizeLimitError(t *testing.T) {
	t.Parallel()

	source, _ := reorderFiles(t)
	tiny := writeFile(t, t.TempDir(), "tiny.yaml", "input:\n  max_document_size: 10B\n")

	res := run(t, "", "--config", tiny, "diff", source, source)
	require.ErrorIs(t, res.err, commands.ErrDocumentTooLarge)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeTree(t, dir, "ok.yml", expr.Select(expr.Column("a")).Build())
	invalid := writeFile(t, dir, "bad.json", `{"tag": 1}`)

	ok := run(t, "", "validate", valid)
	require.NoError(t, ok.err)
	assert.Equal(t, valid+": valid\n", ok.stdout)

	bad := run(t, "", "validate", invalid)
	require.ErrorIs(t, bad.err, commands.ErrValidationFailed)
	assert.Equal(t, commands.ExitValidation, commands.ExitCode(bad.err))
	assert.Contains(t, bad.stdout, invalid+": ")

	stdin := run(t, `{"tag": 1}`, "validate", "-")
	require.ErrorIs(t, stdin.err, commands.ErrValidationFailed)
	assert.Contains(t, stdin.stdout, "stdin: ")
}

func TestRender(t *testing.T) {
	t.Parallel()

	path := writeTree(t, t.TempDir(), "q.json",
		expr.Select(expr.Column("a")).From(expr.Table("x")).ForUpdate().Build())

	pg := run(t, "", "render", "--dialect", "postgres", path)
	require.NoError(t, pg.err)
	assert.Equal(t, "SELECT a FROM x FOR UPDATE\n", pg.stdout)
	assert.NotContains(t, pg.stderr, "warning:")

	bq := run(t, "", "render", "-d", "bigquery", path)
	require.NoError(t, bq.err)
	assert.Equal(t, "SELECT a FROM x\n", bq.stdout)
	assert.Contains(t, bq.stderr, "warning: ")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := run(t, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "sqldiff "+version.String()+"\n", res.stdout)
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res := run(t, "", "completion", shell)
		require.NoError(t, res.err, shell)
		assert.NotEmpty(t, res.stdout, shell)
	}

	res := run(t, "", "completion", "tcsh")
	require.ErrorIs(t, res.err, commands.ErrUnsupportedShell)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, commands.ExitOK, commands.ExitCode(nil))
	assert.Equal(t, commands.ExitValidation, commands.ExitCode(node.ErrInvalidDocument))
	assert.Equal(t, commands.ExitValidation, commands.ExitCode(commands.ErrValidationFailed))
	assert.Equal(t, commands.ExitError, commands.ExitCode(os.ErrNotExist))
}

func TestDiff_ExampleDocuments(t *testing.T) {
	t.Parallel()

	source := filepath.Join("..", "..", "..", "examples", "orders_v1.yaml")
	target := filepath.Join("..", "..", "..", "examples", "orders_v2.yaml")

	for _, path := range []string{source, target} {
		res := run(t, "", "validate", path)
		require.NoError(t, res.err, res.stdout)
	}

	res := run(t, "", "diff", "-f", "json", "--delta-only", source, target)
	require.NoError(t, res.err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))

	kinds := make(map[diff.Kind][]node.Tag)
	for _, edit := range doc.Edits {
		kinds[edit.Kind] = append(kinds[edit.Kind], edit.Tag)
	}

	assert.Contains(t, kinds[diff.KindInsert], expr.TagOrder)
	assert.Contains(t, kinds[diff.KindUpdate], expr.TagLiteral)
	assert.Len(t, kinds[diff.KindMove], 1)
}
