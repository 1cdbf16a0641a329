// Package config loads application configuration from file and
// environment into an explicit struct injected at process start.
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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Supabase  SupabaseConfig  `yaml:"supabase" mapstructure:"supabase"`
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds completion-service settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SupabaseConfig holds record-store settings. Empty URL or key disables
// the record store; runs then persist only to the local run store.
type SupabaseConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
	Key string `yaml:"key" mapstructure:"key"`
}

// Configured reports whether the record store can be used.
func (c SupabaseConfig) Configured() bool {
	return c.URL != "" && c.Key != ""
}

// SheetsConfig holds the spreadsheet webhook URL. Empty disables the
// mirror.
type SheetsConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotionConfig holds the review-queue integration. Empty token disables
// review queuing.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	ReviewDB string `yaml:"review_db" mapstructure:"review_db"`
}

// StoreConfig configures the local run store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PipelineConfig configures generation behavior.
type PipelineConfig struct {
	// MaxContinuations bounds the continue-writing loop per section.
	MaxContinuations int `yaml:"max_continuations" mapstructure:"max_continuations"`
	// MaxRateLimitAttempts bounds retries of a rate-limited completion
	// call; exhausting it fails the run.
	MaxRateLimitAttempts int `yaml:"max_rate_limit_attempts" mapstructure:"max_rate_limit_attempts"`
	// SectionsFile optionally overrides the built-in section table.
	SectionsFile string `yaml:"sections_file" mapstructure:"sections_file"`
	// MaxConcurrentRuns bounds the batch command.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAJU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv binds them even
	// without a config file entry.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("sheets.webhook_url", "")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.review_db", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 6000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "saju-admin.db")
	v.SetDefault("pipeline.max_continuations", 3)
	v.SetDefault("pipeline.max_rate_limit_attempts", 3)
	v.SetDefault("pipeline.max_concurrent_runs", 3)
	v.SetDefault("server.port", 8080)
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
