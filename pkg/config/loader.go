package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sqldiff"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sqldiff settings.
const envPrefix = "SQLDIFF"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

// LoadConfigWith is LoadConfig on a caller-owned viper instance, so that
// command-line flags bound to it take precedence over file and env values.
func LoadConfigWith(viperCfg *viper.Viper, configPath string) (*Config, error) {
	return load(viperCfg, configPath)
}

func load(viperCfg *viper.Viper, configPath string) (*Config, error) {
	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("diff.dialect", DefaultDialect)
	viperCfg.SetDefault("diff.format", DefaultFormat)
	viperCfg.SetDefault("diff.color", DefaultColor)
	viperCfg.SetDefault("diff.delta_only", DefaultDeltaOnly)
	viperCfg.SetDefault("diff.f", DefaultF)
	viperCfg.SetDefault("diff.t", DefaultT)

	viperCfg.SetDefault("input.max_document_size", DefaultMaxDocumentSize)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	viperCfg.SetDefault("server.max_body_size", DefaultServerMaxBodySize)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultTelemetrySample)
	viperCfg.SetDefault("telemetry.prometheus", DefaultTelemetryPrometheus)
}
