package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Intel      IntelConfig      `yaml:"intel" mapstructure:"intel"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Confidence ConfidenceConfig `yaml:"confidence" mapstructure:"confidence"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	CircuitThreshold  int     `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
	CircuitResetSecs  int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// IntelConfig tunes the orchestration pipeline.
type IntelConfig struct {
	FanOutWidth      int      `yaml:"fan_out_width" mapstructure:"fan_out_width"`
	StageTimeoutSecs int      `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	MaxOpportunities int      `yaml:"max_opportunities" mapstructure:"max_opportunities"`
	Engines          []string `yaml:"engines" mapstructure:"engines"`
}

// ValidationConfig holds structural validation and data-quality thresholds.
type ValidationConfig struct {
	CompositeTolerance    float64  `yaml:"composite_tolerance" mapstructure:"composite_tolerance"`
	MinPrompts            int      `yaml:"min_prompts" mapstructure:"min_prompts"`
	MinCompetitors        int      `yaml:"min_competitors" mapstructure:"min_competitors"`
	MinOpportunities      int      `yaml:"min_opportunities" mapstructure:"min_opportunities"`
	MinRecommendations    int      `yaml:"min_recommendations" mapstructure:"min_recommendations"`
	MinConfidence         float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	CompetitiveIndustries []string `yaml:"competitive_industries" mapstructure:"competitive_industries"`
}

// ConfidenceConfig holds the aggregate confidence scoring constants.
type ConfidenceConfig struct {
	Base           float64 `yaml:"base" mapstructure:"base"`
	Bonus          float64 `yaml:"bonus" mapstructure:"bonus"`
	HighThreshold  float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	FailurePenalty float64 `yaml:"failure_penalty" mapstructure:"failure_penalty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	CacheTTLSecs   int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// PricingConfig points at the price table used by the cost estimator.
type PricingConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultEngines are the answer engines observed when none are configured.
var DefaultEngines = []string{"chatgpt", "claude", "gemini", "perplexity"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "geo-intel.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("anthropic.max_attempts", 3)
	v.SetDefault("anthropic.circuit_threshold", 5)
	v.SetDefault("anthropic.circuit_reset_secs", 30)
	v.SetDefault("intel.fan_out_width", 8)
	v.SetDefault("intel.stage_timeout_secs", 30)
	v.SetDefault("intel.max_opportunities", 50)
	v.SetDefault("intel.engines", DefaultEngines)
	v.SetDefault("validation.composite_tolerance", 10.0)
	v.SetDefault("validation.min_prompts", 5)
	v.SetDefault("validation.min_competitors", 3)
	v.SetDefault("validation.min_opportunities", 5)
	v.SetDefault("validation.min_recommendations", 3)
	v.SetDefault("validation.min_confidence", 0.5)
	v.SetDefault("validation.competitive_industries", []string{
		"travel", "hospitality", "e-commerce", "ecommerce", "retail",
		"saas", "software", "fintech", "insurance",
	})
	v.SetDefault("confidence.base", 0.5)
	v.SetDefault("confidence.bonus", 0.1)
	v.SetDefault("confidence.high_threshold", 0.7)
	v.SetDefault("confidence.failure_penalty", 0.2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl_secs", 300)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Intel.FanOutWidth < 1 {
		problems = append(problems, "intel.fan_out_width must be >= 1")
	}
	if c.Intel.StageTimeoutSecs < 1 {
		problems = append(problems, "intel.stage_timeout_secs must be >= 1")
	}
	if c.Intel.MaxOpportunities < 1 {
		problems = append(problems, "intel.max_opportunities must be >= 1")
	}
	if c.Validation.CompositeTolerance < 0 {
		problems = append(problems, "validation.composite_tolerance must be >= 0")
	}
	if c.Validation.MinConfidence < 0 || c.Validation.MinConfidence > 1 {
		problems = append(problems, "validation.min_confidence must be between 0 and 1")
	}
	if c.Confidence.Base < 0 || c.Confidence.Base > 1 {
		problems = append(problems, "confidence.base must be between 0 and 1")
	}
	if c.Confidence.FailurePenalty < 0 {
		problems = append(problems, "confidence.failure_penalty must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.CacheTTLSecs < 0 {
			problems = append(problems, "server.cache_ttl_secs must be >= 0")
		}
		problems = append(problems, c.storeProblems()...)
	case "run", "import", "migrate":
		problems = append(problems, c.storeProblems()...)
	case "estimate":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
