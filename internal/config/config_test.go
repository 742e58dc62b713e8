package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "geo-intel.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 2.0, cfg.Anthropic.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.Anthropic.MaxAttempts)
	assert.Equal(t, 5, cfg.Anthropic.CircuitThreshold)
	assert.Equal(t, 30, cfg.Anthropic.CircuitResetSecs)
	assert.Equal(t, 8, cfg.Intel.FanOutWidth)
	assert.Equal(t, 30, cfg.Intel.StageTimeoutSecs)
	assert.Equal(t, 50, cfg.Intel.MaxOpportunities)
	assert.Equal(t, DefaultEngines, cfg.Intel.Engines)
	assert.InDelta(t, 10.0, cfg.Validation.CompositeTolerance, 0.001)
	assert.Equal(t, 5, cfg.Validation.MinPrompts)
	assert.Equal(t, 3, cfg.Validation.MinCompetitors)
	assert.Equal(t, 5, cfg.Validation.MinOpportunities)
	assert.Equal(t, 3, cfg.Validation.MinRecommendations)
	assert.InDelta(t, 0.5, cfg.Validation.MinConfidence, 0.001)
	assert.Contains(t, cfg.Validation.CompetitiveIndustries, "travel")
	assert.InDelta(t, 0.5, cfg.Confidence.Base, 0.001)
	assert.InDelta(t, 0.1, cfg.Confidence.Bonus, 0.001)
	assert.InDelta(t, 0.7, cfg.Confidence.HighThreshold, 0.001)
	assert.InDelta(t, 0.2, cfg.Confidence.FailurePenalty, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300, cfg.Server.CacheTTLSecs)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/geo
intel:
  fan_out_width: 4
  engines: [chatgpt, gemini]
validation:
  composite_tolerance: 5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/geo", cfg.Store.DatabaseURL)
	assert.Equal(t, 4, cfg.Intel.FanOutWidth)
	assert.Equal(t, []string{"chatgpt", "gemini"}, cfg.Intel.Engines)
	assert.InDelta(t, 5.0, cfg.Validation.CompositeTolerance, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Intel.StageTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
intel:
  fan_out_width: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GEOINTEL_INTEL_FAN_OUT_WIDTH", "16")
	t.Setenv("GEOINTEL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Intel.FanOutWidth)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("intel: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "geo-intel.db"
	cfg.Intel.FanOutWidth = 8
	cfg.Intel.StageTimeoutSecs = 30
	cfg.Intel.MaxOpportunities = 50
	cfg.Validation.CompositeTolerance = 10
	cfg.Validation.MinConfidence = 0.5
	cfg.Confidence.Base = 0.5
	cfg.Confidence.FailurePenalty = 0.2
	cfg.Server.Port = 8080
	cfg.Server.CacheTTLSecs = 300
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "serve ok", mode: "serve"},
		{name: "estimate ignores store", mode: "estimate", mutate: func(c *Config) { c.Store.DatabaseURL = "" }},
		{name: "zero fan out", mode: "run", mutate: func(c *Config) { c.Intel.FanOutWidth = 0 }, wantErr: "intel.fan_out_width must be >= 1"},
		{name: "negative tolerance", mode: "run", mutate: func(c *Config) { c.Validation.CompositeTolerance = -1 }, wantErr: "validation.composite_tolerance must be >= 0"},
		{name: "confidence out of range", mode: "run", mutate: func(c *Config) { c.Validation.MinConfidence = 1.5 }, wantErr: "validation.min_confidence"},
		{name: "bad port", mode: "serve", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port must be > 0"},
		{name: "missing database", mode: "migrate", mutate: func(c *Config) { c.Store.DatabaseURL = "" }, wantErr: "store.database_url is required"},
		{name: "unknown driver", mode: "import", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: "store.driver must be sqlite or postgres"},
		{name: "unknown mode", mode: "bogus", wantErr: "unknown mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate(tt.mode)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
