package observability

import (
	"context"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out of the HTTP API.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds caller-supplied ids.
const maxRequestIDLen = 128

type requestIDKey struct{}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)

	return id, ok && id != ""
}

// NewRequestID returns a fresh random request id.
func NewRequestID() string {
	return uuid.NewString()
}

// requestIDOrNew keeps a well-formed caller id and replaces anything else.
func requestIDOrNew(candidate string) string {
	if candidate == "" || len(candidate) > maxRequestIDLen {
		return NewRequestID()
	}

	for _, char := range candidate {
		if char < 0x21 || char > 0x7e {
			return NewRequestID()
		}
	}

	return candidate
}
