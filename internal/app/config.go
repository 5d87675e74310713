package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/postbot/core/config"
	coredatabase "github.com/m3rciful/postbot/core/database"
	"github.com/m3rciful/postbot/internal/health"
	"github.com/m3rciful/postbot/internal/keepalive"
	"github.com/m3rciful/postbot/internal/localization"
)

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	KeepAlive keepalive.Config    `yaml:"keepalive"`
	Health    health.Config       `yaml:"health"`
	// Language selects the bot texts; unknown values fall back to French.
	Language string `yaml:"language" envconfig:"BOT_LANGUAGE"`
}

// CoreConfig exposes the shared runtime settings.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads path (optional), overlays the environment and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Load(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Database.Normalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	if cfg.Language == "" {
		cfg.Language = localization.DefaultLanguage
	}
	return &cfg, nil
}
