// Package config handles loading, parsing, and validating the YAML
// configuration of the kickwatch CLI. Secrets and per-deployment values can
// be overridden with KICK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

// DefaultConfigFile is looked up when no --config flag is given.
const DefaultConfigFile = "kickwatch.yaml"

// Config is the root configuration.
type Config struct {
	Channel            string        `yaml:"channel"`
	UserAgent          string        `yaml:"user_agent,omitempty"`
	LogLevel           string        `yaml:"log_level"`
	LogDir             string        `yaml:"log_dir,omitempty"`
	ViewerCount        bool          `yaml:"viewer_count"`
	ViewerPollInterval time.Duration `yaml:"viewer_poll_interval"`

	Reconnect     ReconnectConfig     `yaml:"reconnect"`
	Server        ServerConfig        `yaml:"server"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ReconnectConfig controls the CLI's reconnect loop.
type ReconnectConfig struct {
	Enabled    *bool         `yaml:"enabled,omitempty"`
	MinBackoff time.Duration `yaml:"min_backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// IsEnabled returns whether reconnecting is enabled. Defaults to true.
func (r ReconnectConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// NotificationsConfig holds all notification provider configurations.
type NotificationsConfig struct {
	Discord *DiscordConfig `yaml:"discord,omitempty"`
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`
}

// DiscordConfig holds Discord notification settings.
type DiscordConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WebhookURL string   `yaml:"webhook_url,omitempty"`
	Events     []string `yaml:"events"`
}

// WebhookConfig holds generic webhook notification settings.
type WebhookConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Method   string   `yaml:"method"`
	Events   []string `yaml:"events"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads a YAML config from path, then applies defaults and environment
// overrides. A missing file is not an error when path is the default file.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFile:
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if cfg.ViewerPollInterval <= 0 {
		cfg.ViewerPollInterval = constants.DefaultViewerPollInterval
	}
	if cfg.Reconnect.MinBackoff <= 0 {
		cfg.Reconnect.MinBackoff = constants.DefaultReconnectMinBackoff
	}
	if cfg.Reconnect.MaxBackoff <= 0 {
		cfg.Reconnect.MaxBackoff = constants.DefaultReconnectMaxBackoff
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Notifications.Webhook != nil && cfg.Notifications.Webhook.Method == "" {
		cfg.Notifications.Webhook.Method = http.MethodPost
	}
}

// applyEnvOverrides overlays KICK_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KICK_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if v := os.Getenv("KICK_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("KICK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("KICK_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("KICK_VIEWER_COUNT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ViewerCount = b
		}
	}
	if v := os.Getenv("KICK_SERVER_ADDR"); v != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = v
	}

	if cfg.Notifications.Discord != nil {
		if v := os.Getenv("KICK_DISCORD_WEBHOOK"); v != "" {
			cfg.Notifications.Discord.WebhookURL = v
		}
	}
	if cfg.Notifications.Webhook != nil {
		if v := os.Getenv("KICK_WEBHOOK_URL"); v != "" {
			cfg.Notifications.Webhook.Endpoint = v
		}
	}
}

// Validate checks the configuration for common errors.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Channel) == "" {
		return fmt.Errorf("channel is required (set it in the config file, with --channel or KICK_CHANNEL)")
	}

	if cfg.Reconnect.MinBackoff > cfg.Reconnect.MaxBackoff {
		return fmt.Errorf("reconnect: min_backoff %s exceeds max_backoff %s",
			cfg.Reconnect.MinBackoff, cfg.Reconnect.MaxBackoff)
	}

	if d := cfg.Notifications.Discord; d != nil && d.Enabled {
		if d.WebhookURL == "" {
			return fmt.Errorf("discord enabled but webhook_url not set (use env var KICK_DISCORD_WEBHOOK)")
		}
		if err := validateEvents("discord", d.Events); err != nil {
			return err
		}
	}

	if w := cfg.Notifications.Webhook; w != nil && w.Enabled {
		if w.Endpoint == "" {
			return fmt.Errorf("webhook enabled but endpoint not set (use env var KICK_WEBHOOK_URL)")
		}
		switch strings.ToUpper(w.Method) {
		case http.MethodGet, http.MethodPost:
		default:
			return fmt.Errorf("webhook: unsupported method %q (use GET or POST)", w.Method)
		}
		if err := validateEvents("webhook", w.Events); err != nil {
			return err
		}
	}

	return nil
}

func validateEvents(provider string, names []string) error {
	for _, name := range names {
		if events.ParseKind(name) == "" {
			return fmt.Errorf("%s: unknown event %q", provider, name)
		}
	}
	return nil
}
