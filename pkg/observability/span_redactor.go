package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanNamespaces are the attribute key prefixes sqldiff spans emit.
var spanNamespaces = []string{
	"sqldiff.",
	"diff.",
	"render.",
	"document.",
	"mcp.",
	"http.",
	"error.",
}

// payloadSuffixes mark keys that would carry statement text or request
// payloads. They are dropped even inside a known namespace.
var payloadSuffixes = []string{
	".sql",
	".text",
	".body",
	".payload",
}

const (
	reasonPayload = "payload"
	reasonUnknown = "unknown namespace"
)

// redactReason reports why a key must not be exported, or "" if it may.
func redactReason(key string) string {
	for _, suffix := range payloadSuffixes {
		if strings.HasSuffix(key, suffix) {
			return reasonPayload
		}
	}

	if key == "error" {
		return ""
	}

	for _, prefix := range spanNamespaces {
		if strings.HasPrefix(key, prefix) {
			return ""
		}
	}

	return reasonUnknown
}

// spanRedactor strips span attributes outside sqldiff's namespaces before
// they reach the exporter.
type spanRedactor struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
	reported sync.Map
}

// NewSpanRedactor wraps delegate so that exported spans only carry sqldiff
// attributes. Statement text and payload keys are always dropped. A non-nil
// logger receives one warning per dropped key.
func NewSpanRedactor(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &spanRedactor{delegate: delegate, logger: logger}
}

func (r *spanRedactor) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {
	r.delegate.OnStart(parent, span)
}

func (r *spanRedactor) OnEnd(span sdktrace.ReadOnlySpan) {
	r.delegate.OnEnd(&redactedSpan{ReadOnlySpan: span, redactor: r})
}

func (r *spanRedactor) Shutdown(ctx context.Context) error {
	if err := r.delegate.Shutdown(ctx); err != nil {
		return fmt.Errorf("span redactor shutdown: %w", err)
	}

	return nil
}

func (r *spanRedactor) ForceFlush(ctx context.Context) error {
	if err := r.delegate.ForceFlush(ctx); err != nil {
		return fmt.Errorf("span redactor flush: %w", err)
	}

	return nil
}

func (r *spanRedactor) keep(key string) bool {
	reason := redactReason(key)
	if reason == "" {
		return true
	}

	if r.logger != nil {
		if _, seen := r.reported.LoadOrStore(key, struct{}{}); !seen {
			r.logger.Warn("span attribute redacted", "key", key, "reason", reason)
		}
	}

	return false
}

// redactedSpan exposes the wrapped span with its attributes redacted.
type redactedSpan struct {
	sdktrace.ReadOnlySpan

	redactor *spanRedactor
}

func (s *redactedSpan) Attributes() []attribute.KeyValue {
	attrs := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		if s.redactor.keep(string(kv.Key)) {
			kept = append(kept, kv)
		}
	}

	return kept
}
