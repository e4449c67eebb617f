package diff

import (
	"log/slog"
	"math"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// Default similarity thresholds.
const (
	// DefaultF is the minimum bigram Dice coefficient between the canonical
	// renderings of two inner nodes.
	DefaultF = 0.6
	// DefaultT is the minimum matched-leaf ratio for inner nodes with more
	// than smallSubtreeLeaves leaves on both sides.
	DefaultT = 0.6
)

const (
	// strongLeafRatio accepts an inner pair on leaf overlap alone.
	strongLeafRatio = 0.8
	// smallSubtreeT replaces T when either side has few leaves.
	smallSubtreeT      = 0.4
	smallSubtreeLeaves = 4
)

// Matching pins a source node to a target node before automatic matching.
type Matching struct {
	Source *node.Node
	Target *node.Node
}

// Option configures a diff call.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	dialect   render.Dialect
	matchings []Matching
	f         float64
	t         float64
	deltaOnly bool
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		dialect: render.DialectANSI,
		f:       DefaultF,
		t:       DefaultT,
	}
}

// WithMatchings seeds the correspondence with fixed pairs.
func WithMatchings(matchings ...Matching) Option {
	return func(opts *options) {
		opts.matchings = append(opts.matchings, matchings...)
	}
}

// WithDialect selects the dialect used to render nodes in diagnostics. It has
// no effect on matching.
func WithDialect(dialect render.Dialect) Option {
	return func(opts *options) {
		opts.dialect = dialect
	}
}

// WithDeltaOnly drops Keep edits from the result.
func WithDeltaOnly(deltaOnly bool) Option {
	return func(opts *options) {
		opts.deltaOnly = deltaOnly
	}
}

// WithThresholds overrides the similarity thresholds f (Dice) and t (leaf ratio).
func WithThresholds(f, t float64) Option {
	return func(opts *options) {
		opts.f = f
		opts.t = t
	}
}

// WithLogger sets the logger for diagnostics. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

func (opts *options) validate() error {
	for _, threshold := range []float64{opts.f, opts.t} {
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return &ConfigurationError{Index: -1, Err: ErrInvalidThreshold}
		}
	}

	return nil
}
