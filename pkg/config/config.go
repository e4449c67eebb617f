// Package config loads sqldiff settings from defaults, a YAML file and
// SQLDIFF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// Sentinel validation errors.
var (
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidColor     = errors.New("invalid color mode")
	ErrInvalidThreshold = errors.New("similarity threshold must be within [0, 1]")
	ErrInvalidSize      = errors.New("invalid size")
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidSample    = errors.New("sample ratio must be within [0, 1]")
)

const maxPort = 65535

// Formats lists the report formats the CLI can produce.
var Formats = []string{"unified", "summary", "table", "json"}

// Config is the top-level configuration struct for sqldiff.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Diff      DiffConfig      `mapstructure:"diff"`
	Input     InputConfig     `mapstructure:"input"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DiffConfig holds the defaults applied to every diff.
type DiffConfig struct {
	Dialect   string  `mapstructure:"dialect"`
	Format    string  `mapstructure:"format"`
	Color     string  `mapstructure:"color"`
	F         float64 `mapstructure:"f"`
	T         float64 `mapstructure:"t"`
	DeltaOnly bool    `mapstructure:"delta_only"`
}

// InputConfig bounds tree documents read by the CLI.
type InputConfig struct {
	MaxDocumentSize string `mapstructure:"max_document_size"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	MaxBodySize  string        `mapstructure:"max_body_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// Validate checks every section and returns the first violation.
func (c *Config) Validate() error {
	if _, err := render.ParseDialect(c.Diff.Dialect); err != nil {
		return err
	}

	if !isFormat(c.Diff.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Diff.Format)
	}

	switch c.Diff.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Diff.Color)
	}

	if c.Diff.F < 0 || c.Diff.F > 1 || c.Diff.T < 0 || c.Diff.T > 1 {
		return fmt.Errorf("%w: f=%g t=%g", ErrInvalidThreshold, c.Diff.F, c.Diff.T)
	}

	if _, err := parseSize(c.Input.MaxDocumentSize); err != nil {
		return fmt.Errorf("input.max_document_size: %w", err)
	}

	if _, err := parseSize(c.Server.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSample, c.Telemetry.SampleRatio)
	}

	return nil
}

// Dialect returns the configured render dialect.
func (c *Config) Dialect() render.Dialect {
	dialect, err := render.ParseDialect(c.Diff.Dialect)
	if err != nil {
		return render.DialectANSI
	}

	return dialect
}

// MaxDocumentBytes returns the input size limit in bytes.
func (c *Config) MaxDocumentBytes() int64 {
	size, err := parseSize(c.Input.MaxDocumentSize)
	if err != nil {
		size, _ = parseSize(DefaultMaxDocumentSize)
	}

	return size
}

// MaxBodyBytes returns the HTTP request body limit in bytes.
func (c *Config) MaxBodyBytes() int64 {
	size, err := parseSize(c.Server.MaxBodySize)
	if err != nil {
		size, _ = parseSize(DefaultServerMaxBodySize)
	}

	return size
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Observability translates the logging and telemetry sections for the given
// launch mode.
func (c *Config) Observability(mode observability.AppMode, serviceVersion string) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = serviceVersion
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = c.Telemetry.SampleRatio
	obsCfg.PrometheusMetrics = c.Telemetry.Prometheus && mode == observability.ModeServe
	obsCfg.LogJSON = strings.EqualFold(c.Logging.Format, "json")

	level, err := parseLevel(c.Logging.Level)
	if err == nil {
		obsCfg.LogLevel = level
	}

	return obsCfg
}

func isFormat(format string) bool {
	for _, known := range Formats {
		if format == known {
			return true
		}
	}

	return false
}

func parseSize(raw string) (int64, error) {
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}

	if size == 0 || size > 1<<40 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}

	return int64(size), nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(raw))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, raw)
	}

	return level, nil
}
