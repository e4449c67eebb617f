package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
)

// exportSpan records one span carrying attrs through a redactor and returns
// the attributes that reached the exporter.
func exportSpan(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewSpanRedactor(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "diff")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	exported := make(map[string]any, len(spans[0].Attributes))
	for _, kv := range spans[0].Attributes {
		exported[string(kv.Key)] = kv.Value.AsInterface()
	}

	return exported
}

func TestSpanRedactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr attribute.KeyValue
		kept bool
	}{
		{attribute.Int("diff.edits", 100), true},
		{attribute.Int("diff.source_nodes", 12), true},
		{attribute.String("render.dialect", "postgres"), true},
		{attribute.String("document.format", "yaml"), true},
		{attribute.String("mcp.tool", "diff_sql"), true},
		{attribute.String("http.target", "/api/diff"), true},
		{attribute.Bool("error.client", true), true},
		{attribute.Bool("error", true), true},
		{attribute.String("diff.source.sql", "SELECT ssn FROM people"), false},
		{attribute.String("document.body", "{\"tag\":\"Select\"}"), false},
		{attribute.String("mcp.request.payload", "{}"), false},
		{attribute.String("statement.text", "SELECT 1"), false},
		{attribute.String("user.email", "alice@example.com"), false},
		{attribute.String("email", "bob@example.com"), false},
	}

	attrs := make([]attribute.KeyValue, 0, len(tests))
	for _, tt := range tests {
		attrs = append(attrs, tt.attr)
	}

	exported := exportSpan(t, nil, attrs...)

	for _, tt := range tests {
		key := string(tt.attr.Key)
		if tt.kept {
			assert.Equal(t, tt.attr.Value.AsInterface(), exported[key], key)
		} else {
			assert.NotContains(t, exported, key)
		}
	}
}

func TestSpanRedactor_WarnsOncePerKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewSpanRedactor(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	for range 3 {
		_, span := tp.Tracer("test").Start(context.Background(), "diff")
		span.SetAttributes(attribute.String("diff.target.sql", "SELECT 1"))
		span.End()
	}

	for _, span := range exporter.GetSpans() {
		assert.Empty(t, span.Attributes)
	}

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "diff.target.sql"))
	assert.Contains(t, out, "reason=payload")
}

func TestSpanRedactor_ShutdownFlushes(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	redactor := observability.NewSpanRedactor(sdktrace.NewSimpleSpanProcessor(exporter), nil)

	require.NoError(t, redactor.ForceFlush(context.Background()))
	require.NoError(t, redactor.Shutdown(context.Background()))
}
