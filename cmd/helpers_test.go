//go:build !integration

package main

import (
	"path/filepath"
	"testing"

	"github.com/sells-group/geo-intel/internal/config"
)

// useTestConfig installs a valid config backed by a temp-dir SQLite store.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "geo-intel.db"),
		},
		Anthropic: config.AnthropicConfig{Model: "claude-haiku-4-5-20251001"},
		Intel: config.IntelConfig{
			FanOutWidth:      4,
			StageTimeoutSecs: 5,
			MaxOpportunities: 50,
			Engines:          []string{"chatgpt", "gemini"},
		},
		Validation: config.ValidationConfig{
			CompositeTolerance: 10,
			MinPrompts:         5,
			MinCompetitors:     3,
			MinOpportunities:   5,
			MinRecommendations: 3,
			MinConfidence:      0.5,
		},
		Confidence: config.ConfidenceConfig{Base: 0.5, Bonus: 0.1, HighThreshold: 0.7, FailurePenalty: 0.2},
		Server:     config.ServerConfig{Port: 8080, CacheTTLSecs: 300},
	}
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
	return c
}
