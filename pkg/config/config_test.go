package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/pkg/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "docspec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultMaxDepth, cfg.Reconstruct.MaxDepth)
	assert.True(t, cfg.Reconstruct.RequireDrained)
	assert.False(t, cfg.Reconstruct.TagCheck)
	assert.Equal(t, "skip", cfg.Batch.Policy)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
}

func TestDefault_MatchesLoadConfig(t *testing.T) {
	t.Parallel()

	loaded, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, loaded, config.Default())
	require.NoError(t, config.Validate(config.Default()))
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
logging:
  level: debug
  json: true
reconstruct:
  max_depth: 12
  tag_check: true
  require_drained: false
batch:
  workers: 3
  policy: abort
output:
  format: sexpr
  color: never
server:
  port: 9090
  write_timeout: 5s
telemetry:
  sample_ratio: 0.5
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, 12, cfg.Reconstruct.MaxDepth)
	assert.True(t, cfg.Reconstruct.TagCheck)
	assert.False(t, cfg.Reconstruct.RequireDrained)
	assert.Equal(t, 3, cfg.Batch.Workers)
	assert.Equal(t, "abort", cfg.Batch.Policy)
	assert.Equal(t, "sexpr", cfg.Output.Format)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, config.DefaultServerHost, cfg.Server.Host)
	assert.InDelta(t, 0.5, cfg.Telemetry.SampleRatio, 1e-9)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DOCSPEC_BATCH_WORKERS", "7")
	t.Setenv("DOCSPEC_OUTPUT_FORMAT", "tree")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Batch.Workers)
	assert.Equal(t, "tree", cfg.Output.Format)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"port", "server:\n  port: 70000\n", config.ErrInvalidPort},
		{"workers", "batch:\n  workers: -1\n", config.ErrInvalidWorkers},
		{"policy", "batch:\n  policy: retry\n", config.ErrInvalidPolicy},
		{"format", "output:\n  format: xml\n", config.ErrInvalidFormat},
		{"color", "output:\n  color: sometimes\n", config.ErrInvalidColor},
		{"depth", "reconstruct:\n  max_depth: -2\n", config.ErrInvalidDepth},
		{"level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"ratio", "telemetry:\n  sample_ratio: 1.5\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.body))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_CaseInsensitiveEnums(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Batch.Policy = "ABORT"
	cfg.Output.Format = "Leaves"

	require.NoError(t, config.Validate(cfg))
}
