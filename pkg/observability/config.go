// Package observability wires OpenTelemetry tracing and metrics and slog
// structured logging for every sqldiff entry point (CLI, MCP, HTTP server).
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
	// ModeServe is the HTTP API server.
	ModeServe AppMode = "serve"
)

const (
	defaultServiceName        = "sqldiff"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// LogWriter receives log output. Nil means os.Stderr.
	LogWriter io.Writer

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment ("production", "dev", ...).
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// export and the providers become no-op.
	OTLPEndpoint string

	// SampleRatio is the trace sampling ratio when DebugTrace is false.
	// Zero keeps parent-based always-on sampling.
	SampleRatio float64

	// LogLevel is the minimum slog severity.
	LogLevel slog.Level

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int

	// OTLPInsecure disables TLS for the OTLP connection.
	OTLPInsecure bool

	// DebugTrace forces full sampling.
	DebugTrace bool

	// TraceVerbose keeps the per-phase spans (decode, match, render) that
	// are otherwise dropped when exporting.
	TraceVerbose bool

	// LogJSON selects JSON log output instead of text.
	LogJSON bool

	// PrometheusMetrics exposes metrics for scraping through
	// Providers.MetricsHandler.
	PrometheusMetrics bool
}

// DefaultConfig returns the zero-config startup settings.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
