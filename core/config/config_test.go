package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMissingToken(t *testing.T) {
	err := Normalize(&Config{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfigurationMissing))
	require.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: " abc ", RunMode: "Polling"}}
	require.NoError(t, Normalize(cfg))
	require.Equal(t, "abc", cfg.Telegram.Token)
	require.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}
	require.Error(t, Normalize(cfg))

	cfg.Webhook = WebhookConfig{URL: "https://example.org/hook", Port: 8443}
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback ", ""}},
	}
	require.NoError(t, Normalize(cfg))
	require.Equal(t, "callback", cfg.RateLimit.ExcludeUpdates[0])

	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	require.Error(t, Normalize(cfg))
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "telegram:\n  token: from-yaml\n  admin_id: 42\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("BOT_TOKEN", "from-env")

	var cfg Config
	require.NoError(t, Load(path, &cfg))
	require.Equal(t, "from-env", cfg.Telegram.Token)
	require.Equal(t, int64(42), cfg.Telegram.AdminID)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "only-env")
	var cfg Config
	require.NoError(t, Load("", &cfg))
	require.Equal(t, "only-env", cfg.Telegram.Token)
}
