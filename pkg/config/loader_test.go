package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sqldiff/pkg/config"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".sqldiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDialect, cfg.Diff.Dialect)
	assert.Equal(t, config.DefaultFormat, cfg.Diff.Format)
	assert.Equal(t, config.DefaultColor, cfg.Diff.Color)
	assert.False(t, cfg.Diff.DeltaOnly)
	assert.InDelta(t, config.DefaultF, cfg.Diff.F, 1e-9)
	assert.InDelta(t, config.DefaultT, cfg.Diff.T, 1e-9)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultServerReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.True(t, cfg.Telemetry.Prometheus)

	assert.Equal(t, render.DialectANSI, cfg.Dialect())
	assert.Equal(t, int64(16_000_000), cfg.MaxDocumentBytes())
	assert.Equal(t, int64(32_000_000), cfg.MaxBodyBytes())
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `diff:
  dialect: postgres
  format: json
  color: never
  delta_only: true
  f: 0.5
  t: 0.7
input:
  max_document_size: 1MiB
server:
  host: 0.0.0.0
  port: 9090
  read_timeout: 5s
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: collector:4317
  sample_ratio: 0.25
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, render.DialectPostgres, cfg.Dialect())
	assert.Equal(t, "json", cfg.Diff.Format)
	assert.Equal(t, "never", cfg.Diff.Color)
	assert.True(t, cfg.Diff.DeltaOnly)
	assert.InDelta(t, 0.5, cfg.Diff.F, 1e-9)
	assert.InDelta(t, 0.7, cfg.Diff.T, 1e-9)
	assert.Equal(t, int64(1<<20), cfg.MaxDocumentBytes())
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "dialect", content: "diff:\n  dialect: cobol\n", wantErr: render.ErrUnknownDialect},
		{name: "format", content: "diff:\n  format: html\n", wantErr: config.ErrInvalidFormat},
		{name: "color", content: "diff:\n  color: rainbow\n", wantErr: config.ErrInvalidColor},
		{name: "threshold", content: "diff:\n  f: 1.5\n", wantErr: config.ErrInvalidThreshold},
		{name: "document size", content: "input:\n  max_document_size: lots\n", wantErr: config.ErrInvalidSize},
		{name: "body size", content: "server:\n  max_body_size: 0B\n", wantErr: config.ErrInvalidSize},
		{name: "port", content: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{name: "log level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "log format", content: "logging:\n  format: xml\n", wantErr: config.ErrInvalidLogFormat},
		{name: "sample ratio", content: "telemetry:\n  sample_ratio: -1\n", wantErr: config.ErrInvalidSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "diff: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SQLDIFF_DIFF_DIALECT", "mysql")
	t.Setenv("SQLDIFF_SERVER_PORT", "9999")

	cfg, err := config.LoadConfig(writeConfig(t, "diff:\n  dialect: postgres\n"))
	require.NoError(t, err)

	assert.Equal(t, render.DialectMySQL, cfg.Dialect())
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadConfigWith_FlagValueWins(t *testing.T) {
	t.Parallel()

	viperCfg := viper.New()
	viperCfg.Set("diff.format", "table")

	cfg, err := config.LoadConfigWith(viperCfg, writeConfig(t, "diff:\n  format: json\n"))
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Diff.Format)
}
