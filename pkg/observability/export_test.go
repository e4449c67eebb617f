package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var BuildResource = buildResource

// SamplesRoot reports whether the sampler chosen for cfg keeps a root span.
func SamplesRoot(cfg Config) bool {
	result := selectSampler(cfg).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0x5d, 0x1f},
		Name:          "diff",
		Kind:          trace.SpanKindServer,
	})

	return result.Decision == sdktrace.RecordAndSample
}
