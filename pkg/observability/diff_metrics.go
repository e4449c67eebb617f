package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricDiffsTotal    = "sqldiff.diff.total"
	metricDiffDuration  = "sqldiff.diff.duration.seconds"
	metricTreeNodes     = "sqldiff.diff.tree.nodes"
	metricEditsTotal    = "sqldiff.diff.edits.total"
	metricMatchedTotal  = "sqldiff.diff.matched.total"
	metricInvalidConfig = "sqldiff.diff.invalid_config.total"

	attrKind = "kind"
	attrPass = "pass"
	attrSide = "side"
)

// treeSizeBoundaries spans single expressions up to generated statements.
var treeSizeBoundaries = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000}

// DiffMetrics holds instruments describing diff computations.
type DiffMetrics struct {
	diffsTotal    metric.Int64Counter
	diffDuration  metric.Float64Histogram
	treeNodes     metric.Float64Histogram
	editsTotal    metric.Int64Counter
	matchedTotal  metric.Int64Counter
	invalidConfig metric.Int64Counter
}

// DiffStats describes one completed diff, decoupled from the engine types.
type DiffStats struct {
	Edits       map[string]int
	Matched     map[string]int
	SourceNodes int
	TargetNodes int
	Duration    time.Duration
}

// NewDiffMetrics creates diff metric instruments from the given meter.
func NewDiffMetrics(mt metric.Meter) (*DiffMetrics, error) {
	set := &instrumentSet{meter: mt}

	dm := &DiffMetrics{
		diffsTotal:    set.counter(instrument{name: metricDiffsTotal, desc: "Total diffs computed", unit: "{diff}"}),
		diffDuration:  set.histogram(instrument{name: metricDiffDuration, desc: "Diff computation time in seconds", unit: "s", bounds: durationBucketBoundaries}),
		treeNodes:     set.histogram(instrument{name: metricTreeNodes, desc: "Nodes per input tree", unit: "{node}", bounds: treeSizeBoundaries}),
		editsTotal:    set.counter(instrument{name: metricEditsTotal, desc: "Edits produced by kind", unit: "{edit}"}),
		matchedTotal:  set.counter(instrument{name: metricMatchedTotal, desc: "Node pairs matched by pass", unit: "{pair}"}),
		invalidConfig: set.counter(instrument{name: metricInvalidConfig, desc: "Diffs rejected for invalid configuration", unit: "{diff}"}),
	}

	if set.err != nil {
		return nil, set.err
	}

	return dm, nil
}

// RecordDiff records a completed diff. Safe to call on a nil receiver.
func (dm *DiffMetrics) RecordDiff(ctx context.Context, stats DiffStats) {
	if dm == nil {
		return
	}

	dm.diffsTotal.Add(ctx, 1)
	dm.diffDuration.Record(ctx, stats.Duration.Seconds())
	dm.treeNodes.Record(ctx, float64(stats.SourceNodes), metric.WithAttributes(attribute.String(attrSide, "source")))
	dm.treeNodes.Record(ctx, float64(stats.TargetNodes), metric.WithAttributes(attribute.String(attrSide, "target")))

	for kind, count := range stats.Edits {
		dm.editsTotal.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrKind, kind)))
	}

	for pass, count := range stats.Matched {
		dm.matchedTotal.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrPass, pass)))
	}
}

// RecordInvalidConfig counts a diff rejected before matching. Safe to call
// on a nil receiver.
func (dm *DiffMetrics) RecordInvalidConfig(ctx context.Context) {
	if dm == nil {
		return
	}

	dm.invalidConfig.Add(ctx, 1)
}
