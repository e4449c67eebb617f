package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/config"
	"github.com/Sumatoshi-tech/sqldiff/pkg/observability"
)

func TestConfig_Observability(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `logging:
  level: warn
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.5
`))
	require.NoError(t, err)

	obsCfg := cfg.Observability(observability.ModeServe, "1.2.3")

	assert.Equal(t, "sqldiff", obsCfg.ServiceName)
	assert.Equal(t, "1.2.3", obsCfg.ServiceVersion)
	assert.Equal(t, observability.ModeServe, obsCfg.Mode)
	assert.Equal(t, slog.LevelWarn, obsCfg.LogLevel)
	assert.True(t, obsCfg.LogJSON)
	assert.Equal(t, "localhost:4317", obsCfg.OTLPEndpoint)
	assert.True(t, obsCfg.OTLPInsecure)
	assert.InDelta(t, 0.5, obsCfg.SampleRatio, 1e-9)
	assert.True(t, obsCfg.PrometheusMetrics)
}

func TestConfig_ObservabilityPrometheusOnlyWhenServing(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.False(t, cfg.Observability(observability.ModeCLI, "dev").PrometheusMetrics)
	assert.False(t, cfg.Observability(observability.ModeMCP, "dev").PrometheusMetrics)
	assert.True(t, cfg.Observability(observability.ModeServe, "dev").PrometheusMetrics)
}

func TestConfig_ValidateDirect(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	cfg.Diff.T = -0.1

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidThreshold)
}

func TestLoadConfig_SampleFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("../../examples/sqldiff.yaml")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Diff.Dialect)
	assert.True(t, cfg.Diff.DeltaOnly)
	assert.Equal(t, int64(16_000_000), cfg.MaxDocumentBytes())
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}
