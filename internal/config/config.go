package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pmharris/mastodigest/pkg/scoring"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Timeline string         `yaml:"timeline"`
	Hours    int            `yaml:"hours"`
	Scorer   ScorerConfig   `yaml:"scorer"`
	Digest   DigestConfig   `yaml:"digest"`
	Boost    BoostConfig    `yaml:"boost"`
	Database DatabaseConfig `yaml:"database"`
	Notify   NotifyConfig   `yaml:"notify"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// ServerConfig identifies the Mastodon server and credentials.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Host returns the server hostname used to qualify bare local handles.
func (s ServerConfig) Host() string {
	u, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil {
		return ""
	}
	return u.Host
}

// ScorerConfig selects the scoring strategy and its per-account rules.
type ScorerConfig struct {
	Name               string             `yaml:"name"`
	Threshold          string             `yaml:"threshold"`
	AmplifyAccounts    map[string]float64 `yaml:"amplify_accounts"`
	FilteredAccounts   []string           `yaml:"filtered_accounts"`
	Keywords           []string           `yaml:"keywords"`
	FilteredBoost      float64            `yaml:"filtered_boost"`
	SuppressedAccounts []string           `yaml:"suppressed_accounts"`
}

// DigestConfig controls HTML output.
type DigestConfig struct {
	OutputDir string `yaml:"output_dir"`
	ThemeDir  string `yaml:"theme_dir"`
}

// BoostConfig controls the re-share queue.
type BoostConfig struct {
	PerMinute    float64 `yaml:"per_minute"`
	MaxPerRun    int     `yaml:"max_per_run"`
	AuthorWindow int     `yaml:"author_window"`
}

// DatabaseConfig configures the SQLite boost history.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures digest-run notifications.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook notifications.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook notifications.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Timeline: "home",
		Hours:    12,
		Scorer: ScorerConfig{
			Name:      "SimpleWeighted",
			Threshold: "normal",
		},
		Digest: DigestConfig{OutputDir: "./render"},
		Boost: BoostConfig{
			PerMinute:    2,
			MaxPerRun:    10,
			AuthorWindow: 10,
		},
		Database: DatabaseConfig{Path: "./mastodigest.db"},
		HTTP:     HTTPConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file, applies env var overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MASTODON_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("MASTODON_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("MASTODIGEST_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.Slack.WebhookURL = v
		cfg.Notify.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.Discord.WebhookURL = v
		cfg.Notify.Discord.Enabled = true
	}
}

// Validate rejects configurations the pipeline cannot run with. These are
// fatal: there is no retry for a mistyped scorer name or account handle.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required (or set MASTODON_BASE_URL)")
	}
	if c.Hours < 1 || c.Hours > 24 {
		return fmt.Errorf("hours must be between 1 and 24, got %d", c.Hours)
	}
	if _, err := scoring.New(c.Scorer.Name); err != nil {
		return err
	}
	if _, err := scoring.ThresholdFromName(c.Scorer.Threshold); err != nil {
		return err
	}

	for acct := range c.Scorer.AmplifyAccounts {
		if err := checkHandle(acct, "amplify_accounts"); err != nil {
			return err
		}
	}
	for _, acct := range c.Scorer.FilteredAccounts {
		if err := checkHandle(acct, "filtered_accounts"); err != nil {
			return err
		}
	}
	for _, acct := range c.Scorer.SuppressedAccounts {
		if err := checkHandle(acct, "suppressed_accounts"); err != nil {
			return err
		}
	}
	return nil
}

// checkHandle requires the fully-qualified user@host form so rules never
// silently miss an account from another server.
func checkHandle(acct, list string) error {
	parts := strings.Split(acct, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("accounts must be given as 'user@host' (check failed for %q in %s)", acct, list)
	}
	return nil
}
