package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrument declares one metric. Bounds apply to histograms only.
type instrument struct {
	name   string
	desc   string
	unit   string
	bounds []float64
}

// instrumentSet creates instruments on one meter and remembers the first
// failure.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func (set *instrumentSet) counter(spec instrument) metric.Int64Counter {
	counter, err := set.meter.Int64Counter(spec.name, metric.WithDescription(spec.desc), metric.WithUnit(spec.unit))
	set.fail(spec, err)

	return counter
}

func (set *instrumentSet) histogram(spec instrument) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(spec.desc), metric.WithUnit(spec.unit)}
	if len(spec.bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(spec.bounds...))
	}

	histogram, err := set.meter.Float64Histogram(spec.name, opts...)
	set.fail(spec, err)

	return histogram
}

func (set *instrumentSet) gauge(spec instrument) metric.Int64UpDownCounter {
	gauge, err := set.meter.Int64UpDownCounter(spec.name, metric.WithDescription(spec.desc), metric.WithUnit(spec.unit))
	set.fail(spec, err)

	return gauge
}

func (set *instrumentSet) fail(spec instrument, err error) {
	if err != nil && set.err == nil {
		set.err = fmt.Errorf("instrument %s: %w", spec.name, err)
	}
}
