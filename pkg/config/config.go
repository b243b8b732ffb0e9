// Package config loads docspec configuration from file, environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidWorkers     = errors.New("batch workers must not be negative")
	ErrInvalidPolicy      = errors.New("invalid batch failure policy")
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrInvalidColor       = errors.New("invalid color mode")
	ErrInvalidDepth       = errors.New("max depth must not be negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

// EnvPrefix is the prefix of environment overrides, e.g. DOCSPEC_BATCH_WORKERS.
const EnvPrefix = "DOCSPEC"

const maxPort = 65535

// Config holds all docspec configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Output      OutputConfig      `mapstructure:"output"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Server      ServerConfig      `mapstructure:"server"`
	Batch       BatchConfig       `mapstructure:"batch"`
	Reconstruct ReconstructConfig `mapstructure:"reconstruct"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ReconstructConfig tunes typed tree reconstruction.
type ReconstructConfig struct {
	// MaxDepth rejects deeper parse trees; zero disables the limit.
	MaxDepth int `mapstructure:"max_depth"`
	// TagCheck requires token tags to match their terminal category.
	TagCheck bool `mapstructure:"tag_check"`
	// RequireDrained fails when tokens are left over after reconstruction.
	RequireDrained bool `mapstructure:"require_drained"`
}

// BatchConfig controls parallel reconstruction across sentences.
type BatchConfig struct {
	Policy  string `mapstructure:"policy"`
	Workers int    `mapstructure:"workers"`
}

// OutputConfig controls how typed trees are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig reads configPath (or docspec.yaml from the search path when
// empty), applies DOCSPEC_* environment overrides and defaults, and validates
// the result.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("docspec")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/docspec")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults are static and always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	viperCfg.SetDefault("reconstruct.max_depth", DefaultMaxDepth)
	viperCfg.SetDefault("reconstruct.tag_check", false)
	viperCfg.SetDefault("reconstruct.require_drained", true)

	viperCfg.SetDefault("batch.workers", DefaultBatchWorkers)
	viperCfg.SetDefault("batch.policy", DefaultBatchPolicy)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.color", DefaultColor)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.environment", "")
}

// Validate checks cross-field constraints.
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Batch.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Batch.Workers)
	}

	if !containsFold(Policies, config.Batch.Policy) {
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, config.Batch.Policy)
	}

	if !containsFold(Formats, config.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, config.Output.Format)
	}

	if !containsFold(ColorModes, config.Output.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, config.Output.Color)
	}

	if config.Reconstruct.MaxDepth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, config.Reconstruct.MaxDepth)
	}

	if !containsFold(LogLevels, config.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

func containsFold(options []string, value string) bool {
	for _, option := range options {
		if strings.EqualFold(option, value) {
			return true
		}
	}

	return false
}
