// Package diff computes edit scripts between two SQL expression trees.
//
// The engine pairs source and target nodes in three passes (identical
// subtrees, similar inner nodes, top-down propagation) and then classifies
// every node as kept, updated, moved, inserted or removed. Caller trees are
// never modified.
package diff

import (
	"context"
	"log/slog"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// Result is an edit script together with the matcher counters that produced it.
type Result struct {
	Script Script     `json:"edits"`
	Stats  MatchStats `json:"stats"`
}

// Diff computes the edit script that transforms source into target.
func Diff(source, target *node.Node, opts ...Option) (Script, error) {
	result, err := Analyze(context.Background(), source, target, opts...)
	if err != nil {
		return nil, err
	}

	return result.Script, nil
}

// Analyze is Diff with a context for logging and the matcher counters.
// Configuration is validated before any hashing or matching.
func Analyze(ctx context.Context, source, target *node.Node, opts ...Option) (*Result, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	if source == nil || target == nil {
		return nil, ErrNilTree
	}

	src, tgt := indexTree(source), indexTree(target)

	seeds, err := validateMatchings(cfg.matchings, src, tgt)
	if err != nil {
		return nil, err
	}

	src.hash()
	tgt.hash()

	// Matching always runs with the smaller root digest on the source side,
	// so swapping the inputs yields exactly the mirrored script.
	swapped := tgt.digest[0] < src.digest[0]
	if swapped {
		src, tgt = tgt, src

		for idx := range seeds {
			seeds[idx][0], seeds[idx][1] = seeds[idx][1], seeds[idx][0]
		}
	}

	m := newMatcher(src, tgt, cfg.f, cfg.t)
	m.run(seeds)

	script := classify(m)
	stats := m.stats

	if swapped {
		src, tgt = tgt, src
		script = mirrorScript(script, src, tgt)
		stats.Source, stats.Target = stats.Target, stats.Source
	}

	if cfg.logger.Enabled(ctx, slog.LevelDebug) {
		logScript(ctx, &cfg, source, target, stats, script)
	}

	if cfg.deltaOnly {
		script = script.Delta()
	}

	return &Result{Script: script, Stats: stats}, nil
}

// logScript renders both trees in the configured dialect, which reports
// constructs the dialect cannot express, then logs every edit.
func logScript(ctx context.Context, cfg *options, source, target *node.Node, stats MatchStats, script Script) {
	renderer := render.New(cfg.dialect, cfg.logger)

	cfg.logger.DebugContext(ctx, "diff trees",
		"dialect", cfg.dialect.String(),
		"source", renderer.Render(ctx, source),
		"target", renderer.Render(ctx, target),
		"matched", stats.Matched(),
		"exact", stats.Exact,
		"similar", stats.Similar,
		"top_down", stats.TopDown)

	for _, edit := range script {
		sql, _ := renderer.RenderWithWarnings(edit.Node())

		attrs := []any{"kind", edit.Kind.String(), "sql", sql}
		if len(edit.Slots) > 0 {
			attrs = append(attrs, "slots", edit.Slots)
		}

		cfg.logger.DebugContext(ctx, "diff edit", attrs...)
	}
}
