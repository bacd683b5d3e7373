package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: https://hachyderm.io\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeline != "home" {
		t.Errorf("timeline = %q, want home", cfg.Timeline)
	}
	if cfg.Hours != 12 {
		t.Errorf("hours = %d, want 12", cfg.Hours)
	}
	if cfg.Scorer.Name != "SimpleWeighted" || cfg.Scorer.Threshold != "normal" {
		t.Errorf("scorer defaults = %q/%q", cfg.Scorer.Name, cfg.Scorer.Threshold)
	}
	if cfg.Server.Host() != "hachyderm.io" {
		t.Errorf("Host() = %q", cfg.Server.Host())
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: https://example.social
  token: abc
timeline: hashtag:golang
hours: 6
scorer:
  name: ExtendedSimple
  threshold: strict
  amplify_accounts:
    alice@example.social: 2.5
  filtered_accounts: [news@journa.host]
  keywords: [golang, sqlite]
  suppressed_accounts: [spammy@other.net]
boost:
  per_minute: 1
  max_per_run: 3
database:
  path: /tmp/digest.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeline != "hashtag:golang" || cfg.Hours != 6 {
		t.Errorf("timeline/hours = %q/%d", cfg.Timeline, cfg.Hours)
	}
	if cfg.Scorer.AmplifyAccounts["alice@example.social"] != 2.5 {
		t.Errorf("amplify = %v", cfg.Scorer.AmplifyAccounts)
	}
	if cfg.Boost.MaxPerRun != 3 {
		t.Errorf("max_per_run = %d", cfg.Boost.MaxPerRun)
	}
	// Untouched sections keep their defaults.
	if cfg.Boost.AuthorWindow != 10 || cfg.HTTP.Port != 8080 {
		t.Errorf("defaults lost: window=%d port=%d", cfg.Boost.AuthorWindow, cfg.HTTP.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MASTODON_BASE_URL", "https://env.example")
	t.Setenv("MASTODON_TOKEN", "envtoken")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/T/B/x")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "https://env.example" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Token != "envtoken" {
		t.Errorf("token = %q", cfg.Server.Token)
	}
	if !cfg.Notify.Slack.Enabled || cfg.Notify.Slack.WebhookURL == "" {
		t.Error("slack webhook env must enable slack notifications")
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.Server.BaseURL = "https://example.social"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			"missing base url",
			func(c *Config) { c.Server.BaseURL = "" },
			"base_url",
		},
		{
			"hours too small",
			func(c *Config) { c.Hours = 0 },
			"hours",
		},
		{
			"hours too large",
			func(c *Config) { c.Hours = 48 },
			"hours",
		},
		{
			"unknown scorer",
			func(c *Config) { c.Scorer.Name = "Turbo" },
			"Turbo",
		},
		{
			"unknown threshold",
			func(c *Config) { c.Scorer.Threshold = "medium" },
			"medium",
		},
		{
			"bare handle in amplify list",
			func(c *Config) { c.Scorer.AmplifyAccounts = map[string]float64{"alice": 2} },
			"user@host",
		},
		{
			"bare handle in filtered list",
			func(c *Config) { c.Scorer.FilteredAccounts = []string{"@bob@"} },
			"user@host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
