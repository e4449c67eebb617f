package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "sqldiff.requests.total"
	metricRequestDuration  = "sqldiff.request.duration.seconds"
	metricErrorsTotal      = "sqldiff.errors.total"
	metricInflightRequests = "sqldiff.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 10s: diffs of small statements
// finish well under a millisecond, generated queries take longer.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// REDMetrics holds the instruments for Rate, Error, Duration metrics.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	set := &instrumentSet{meter: mt}

	rm := &REDMetrics{
		requestsTotal:    set.counter(instrument{name: metricRequestsTotal, desc: "Total number of requests", unit: "{request}"}),
		requestDuration:  set.histogram(instrument{name: metricRequestDuration, desc: "Request duration in seconds", unit: "s", bounds: durationBucketBoundaries}),
		errorsTotal:      set.counter(instrument{name: metricErrorsTotal, desc: "Total number of errors", unit: "{error}"}),
		inflightRequests: set.gauge(instrument{name: metricInflightRequests, desc: "Number of in-flight requests", unit: "{request}"}),
	}

	if set.err != nil {
		return nil, set.err
	}

	return rm, nil
}

// RecordRequest records a completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
