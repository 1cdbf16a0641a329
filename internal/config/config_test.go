package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Anthropic.Model)
	assert.Equal(t, int64(6000), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "saju-admin.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 3, cfg.Pipeline.MaxContinuations)
	assert.Equal(t, 3, cfg.Pipeline.MaxRateLimitAttempts)
	assert.Equal(t, 3, cfg.Pipeline.MaxConcurrentRuns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SAJU_ANTHROPIC_KEY", "sk-test-key")
	t.Setenv("SAJU_STORE_DRIVER", "postgres")
	t.Setenv("SAJU_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test-key", cfg.Anthropic.Key)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestSupabaseConfigured(t *testing.T) {
	assert.False(t, SupabaseConfig{}.Configured())
	assert.False(t, SupabaseConfig{URL: "https://x.supabase.co"}.Configured())
	assert.False(t, SupabaseConfig{Key: "service-role"}.Configured())
	assert.True(t, SupabaseConfig{URL: "https://x.supabase.co", Key: "service-role"}.Configured())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}
