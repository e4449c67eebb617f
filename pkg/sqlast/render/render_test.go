package render_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/expr"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree *node.Node
		want string
	}{
		{
			name: "binary",
			tree: expr.Select(expr.Add(expr.Column("a"), expr.Column("b"))).Build(),
			want: "SELECT a + b",
		},
		{
			name: "full select",
			tree: expr.Select(expr.Column("a"), expr.Alias(expr.Lower(expr.Column("c")), "c")).
				Distinct().
				From(expr.Table("t1")).
				Join(expr.Join(expr.Table("t2"), expr.EQ(expr.Column("t1.key"), expr.Column("t2.key")), "left")).
				Where(expr.EQ(expr.Column("d"), expr.Str("it's"))).
				GroupBy(expr.Column("a")).
				OrderBy(expr.Desc(expr.Column("a"))).
				Limit(10).
				Offset(5).
				Build(),
			want: "SELECT DISTINCT a, LOWER(c) AS c FROM t1 LEFT JOIN t2 ON t1.key = t2.key " +
				"WHERE d = 'it''s' GROUP BY a ORDER BY a DESC LIMIT 10 OFFSET 5",
		},
		{
			name: "union all",
			tree: expr.Union(expr.Select(expr.Column("a")).Build(), expr.Select(expr.Column("b")).Build(), false),
			want: "SELECT a UNION ALL SELECT b",
		},
		{
			name: "window",
			tree: expr.Window(expr.RowNumber(), []*node.Node{expr.Column("a")}, expr.Order(expr.Column("b"))),
			want: "ROW_NUMBER() OVER (PARTITION BY a ORDER BY b)",
		},
		{
			name: "cte",
			tree: expr.Select(expr.Star()).
				With(expr.With(false, expr.CTE("cte1", expr.Select(expr.Column("a")).From(expr.Table("t")).Build()))).
				From(expr.Table("cte1")).
				Build(),
			want: "WITH cte1 AS (SELECT a FROM t) SELECT * FROM cte1",
		},
		{
			name: "quoted anonymous function",
			tree: expr.Anonymous("my.udf", expr.Column("x"), expr.Int(1)),
			want: `"my.udf"(x, 1)`,
		},
		{
			name: "lambda",
			tree: expr.Anonymous("x", expr.Lambda(expr.Column("a"), "a")),
			want: "x(a -> a)",
		},
		{
			name: "case and cast",
			tree: expr.Case(expr.Null(), expr.When(expr.Is(expr.Column("a"), expr.Null()), expr.Cast(expr.Int(1), "int"))),
			want: "CASE WHEN a IS NULL THEN CAST(1 AS INT) ELSE NULL END",
		},
		{
			name: "unknown tag",
			tree: node.NewBuilder("Frobnicate").Child("this", expr.Column("a")).Scalar("level", node.Int(3)).Build(),
			want: "FROBNICATE(a, level=3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, render.Canonical(tt.tree))
		})
	}
}

func TestDialectSpellings(t *testing.T) {
	t.Parallel()

	query := expr.Select(expr.Concat(expr.Column("a"), expr.QuotedIdent("b c"))).
		From(expr.Table("t")).
		Limit(3).
		Offset(1).
		Build()

	tests := []struct {
		dialect render.Dialect
		want    string
	}{
		{render.DialectPostgres, `SELECT CONCAT(a, "b c") FROM t LIMIT 3 OFFSET 1`},
		{render.DialectMySQL, "SELECT CONCAT(a, `b c`) FROM t LIMIT 3 OFFSET 1"},
		{render.DialectSQLite, `SELECT a || "b c" FROM t LIMIT 3 OFFSET 1`},
		{render.DialectOracle, `SELECT CONCAT(a, "b c") FROM t OFFSET 1 ROWS FETCH FIRST 3 ROWS ONLY`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			t.Parallel()

			sql, warnings := render.New(tt.dialect, nil).RenderWithWarnings(query)
			assert.Equal(t, tt.want, sql)
			assert.Empty(t, warnings)
		})
	}
}

func TestUnsupportedConstructsWarn(t *testing.T) {
	t.Parallel()

	locked := expr.Select(expr.Column("foo")).From(expr.Table("bar")).ForUpdate().Build()

	sql, warnings := render.New(render.DialectOracle, nil).RenderWithWarnings(locked)
	assert.Equal(t, "SELECT foo FROM bar FOR UPDATE", sql)
	assert.Empty(t, warnings)

	sql, warnings = render.New(render.DialectBigQuery, nil).RenderWithWarnings(locked)
	assert.Equal(t, "SELECT foo FROM bar", sql)
	require.Len(t, warnings, 1)
	assert.Equal(t, render.DialectBigQuery, warnings[0].Dialect)

	keep := expr.KeepWindow(expr.Max(expr.Column("x")), expr.Order(expr.Column("y")))

	sql, warnings = render.New(render.DialectOracle, nil).RenderWithWarnings(keep)
	assert.Equal(t, "MAX(x) KEEP (DENSE_RANK LAST ORDER BY y)", sql)
	assert.Empty(t, warnings)

	sql, warnings = render.New(render.DialectPostgres, nil).RenderWithWarnings(keep)
	assert.Equal(t, "MAX(x) OVER (ORDER BY y)", sql)
	assert.Len(t, warnings, 1)
}

func TestRenderLogsWarnings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	locked := expr.Select(expr.Column("foo")).From(expr.Table("bar")).ForShare().Build()

	render.New(render.DialectPostgres, logger).Render(context.Background(), locked)
	assert.Empty(t, buf.String())

	render.New(render.DialectSQLite, logger).Render(context.Background(), locked)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "dialect=sqlite")
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	for _, dialect := range render.Dialects() {
		parsed, err := render.ParseDialect(dialect.String())
		require.NoError(t, err)
		assert.Equal(t, dialect, parsed)
	}

	parsed, err := render.ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, render.DialectPostgres, parsed)

	_, err = render.ParseDialect("cobol")
	require.ErrorIs(t, err, render.ErrUnknownDialect)
}
