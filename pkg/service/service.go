// Package service runs the decode, diff, and report pipeline shared by the
// CLI, the HTTP API, and the MCP tool.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/report"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// ErrEmptyDocument is returned when a tree document has no content.
var ErrEmptyDocument = errors.New("tree document is empty")

// Deps holds injectable dependencies. Zero-value fields use no-op defaults.
type Deps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.DiffMetrics

	// Dialect is used when a request names none.
	Dialect render.Dialect

	// F and T are the similarity thresholds. Zero keeps the engine defaults.
	F float64
	T float64
}

// Input is one tree document in raw form.
type Input struct {
	Label  string
	Data   []byte
	Format node.Format
}

// MatchingPath pins the node at Source in the source tree to the node at
// Target in the target tree. Paths use node.Resolve syntax.
type MatchingPath struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DiffParams tune one diff request.
type DiffParams struct {
	Dialect   string
	Matchings []MatchingPath
	DeltaOnly bool
}

// Rendered is a tree document rendered as SQL.
type Rendered struct {
	SQL      string           `json:"sql"`
	Dialect  string           `json:"dialect"`
	Warnings []render.Warning `json:"warnings,omitempty"`
}

// Service runs diff and render requests. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.DiffMetrics
	dialect render.Dialect
	f       float64
	t       float64
}

// New creates a Service.
func New(deps Deps) *Service {
	svc := &Service{
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		metrics: deps.Metrics,
		dialect: deps.Dialect,
		f:       deps.F,
		t:       deps.T,
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.tracer == nil {
		svc.tracer = nooptrace.NewTracerProvider().Tracer("sqldiff")
	}

	if svc.f == 0 && svc.t == 0 {
		svc.f, svc.t = diff.DefaultF, diff.DefaultT
	}

	return svc
}

// Diff decodes both documents, resolves pinned paths, computes the edit
// script, and builds the report.
func (svc *Service) Diff(ctx context.Context, source, target Input, params DiffParams) (*report.Document, error) {
	ctx, span := svc.tracer.Start(ctx, observability.SpanDiff)
	defer span.End()

	doc, err := svc.diff(ctx, source, target, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("error.client", IsClientError(err)))

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("diff.edits", len(doc.Edits)),
		attribute.Int("diff.changes", doc.Summary.Changes()),
		attribute.Int("diff.source_nodes", doc.Stats.Source),
		attribute.Int("diff.target_nodes", doc.Stats.Target),
		attribute.String("render.dialect", doc.Dialect),
	)

	return doc, nil
}

func (svc *Service) diff(ctx context.Context, source, target Input, params DiffParams) (*report.Document, error) {
	dialect, err := svc.resolveDialect(params.Dialect)
	if err != nil {
		return nil, err
	}

	srcTree, err := svc.decode(ctx, source)
	if err != nil {
		return nil, err
	}

	tgtTree, err := svc.decode(ctx, target)
	if err != nil {
		return nil, err
	}

	matchings, err := ResolveMatchings(srcTree, tgtTree, params.Matchings)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	result, err := diff.Analyze(ctx, srcTree, tgtTree,
		diff.WithMatchings(matchings...),
		diff.WithDialect(dialect),
		diff.WithDeltaOnly(params.DeltaOnly),
		diff.WithThresholds(svc.f, svc.t),
		diff.WithLogger(svc.logger),
	)
	if err != nil {
		var cfgErr *diff.ConfigurationError
		if errors.As(err, &cfgErr) {
			svc.metrics.RecordInvalidConfig(ctx)
		}

		return nil, err
	}

	elapsed := time.Since(started)

	summary := result.Script.Summarize()
	svc.metrics.RecordDiff(ctx, observability.DiffStats{
		Edits: map[string]int{
			diff.KindRemove.String(): summary.Remove,
			diff.KindInsert.String(): summary.Insert,
			diff.KindUpdate.String(): summary.Update,
			diff.KindMove.String():   summary.Move,
			diff.KindKeep.String():   summary.Keep,
		},
		Matched: map[string]int{
			"seeded":   result.Stats.Seeded,
			"exact":    result.Stats.Exact,
			"similar":  result.Stats.Similar,
			"top_down": result.Stats.TopDown,
		},
		SourceNodes: result.Stats.Source,
		TargetNodes: result.Stats.Target,
		Duration:    elapsed,
	})

	_, renderSpan := svc.tracer.Start(ctx, observability.SpanRender)
	doc := report.Build(srcTree, tgtTree, result, dialect)
	renderSpan.End()

	doc.SourceLabel = source.Label
	doc.TargetLabel = target.Label

	svc.logger.DebugContext(ctx, "diff computed",
		"source", source.Label,
		"target", target.Label,
		"changes", summary.Changes(),
		"duration", elapsed)

	return doc, nil
}

// Render decodes a document and renders it as SQL in the given dialect.
func (svc *Service) Render(ctx context.Context, input Input, dialectName string) (*Rendered, error) {
	dialect, err := svc.resolveDialect(dialectName)
	if err != nil {
		return nil, err
	}

	tree, err := svc.decode(ctx, input)
	if err != nil {
		return nil, err
	}

	_, span := svc.tracer.Start(ctx, observability.SpanRender)
	defer span.End()

	sql, warnings := render.New(dialect, svc.logger).RenderWithWarnings(tree)

	return &Rendered{SQL: sql, Dialect: dialect.String(), Warnings: warnings}, nil
}

// Validate checks a document against the tree schema. A nil slice means the
// document is valid.
func (svc *Service) Validate(ctx context.Context, input Input) ([]node.Issue, error) {
	_, span := svc.tracer.Start(ctx, observability.SpanDecode)
	defer span.End()

	if len(input.Data) == 0 {
		return nil, ErrEmptyDocument
	}

	generic, err := node.ParseGeneric(input.Data, input.Format)
	if err != nil {
		return nil, err
	}

	return node.ValidateDocument(generic)
}

func (svc *Service) decode(ctx context.Context, input Input) (*node.Node, error) {
	_, span := svc.tracer.Start(ctx, observability.SpanDecode,
		trace.WithAttributes(attribute.String("document.format", string(input.Format))))
	defer span.End()

	if len(input.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", labelOf(input), ErrEmptyDocument)
	}

	tree, err := node.Decode(input.Data, input.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelOf(input), err)
	}

	span.SetAttributes(attribute.Int("document.nodes", tree.Size()))

	return tree, nil
}

func (svc *Service) resolveDialect(name string) (render.Dialect, error) {
	if name == "" {
		return svc.dialect, nil
	}

	return render.ParseDialect(name)
}

func labelOf(input Input) string {
	if input.Label == "" {
		return "document"
	}

	return input.Label
}

// ResolveMatchings turns path pairs into node pairs.
func ResolveMatchings(source, target *node.Node, paths []MatchingPath) ([]diff.Matching, error) {
	matchings := make([]diff.Matching, 0, len(paths))

	for idx, pair := range paths {
		srcNode, err := node.Resolve(source, pair.Source)
		if err != nil {
			return nil, fmt.Errorf("matching #%d source: %w", idx, err)
		}

		tgtNode, err := node.Resolve(target, pair.Target)
		if err != nil {
			return nil, fmt.Errorf("matching #%d target: %w", idx, err)
		}

		matchings = append(matchings, diff.Matching{Source: srcNode, Target: tgtNode})
	}

	return matchings, nil
}

// IsClientError reports whether err was caused by the request rather than
// the service: bad documents, paths, dialects, or matchings.
func IsClientError(err error) bool {
	var cfgErr *diff.ConfigurationError

	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, node.ErrInvalidDocument),
		errors.Is(err, node.ErrUnknownSlotKind),
		errors.Is(err, node.ErrUnsupportedValue),
		errors.Is(err, node.ErrDuplicateSlot),
		errors.Is(err, node.ErrInvalidPath),
		errors.Is(err, node.ErrPathNotFound),
		errors.Is(err, render.ErrUnknownDialect):
		return true
	default:
		return false
	}
}
