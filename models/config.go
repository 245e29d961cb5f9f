package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExtractConfig holds the runtime tuning knobs for an extraction run.
// Values come from the built-in defaults, optionally overridden by a YAML
// config file passed via --config. CLI flags always win over both.
type ExtractConfig struct {
	// DocMaxLength is the character budget for a cleaned document before
	// head/tail truncation kicks in.
	DocMaxLength int `yaml:"doc_max_length"`

	// PacingSeconds is the delay between consecutive backend requests.
	PacingSeconds int `yaml:"pacing_seconds"`

	// BackoffSeconds is the per-attempt unit for degraded-reply backoff;
	// attempt n sleeps n*BackoffSeconds.
	BackoffSeconds int `yaml:"backoff_seconds"`

	// MaxWaitStates bounds how many times a single document may be
	// submitted before the session is declared dead.
	MaxWaitStates int `yaml:"max_wait_states"`

	// RateLimitSleepMinutes is how long to sleep after the backend reports
	// a rate limit, before aborting the session.
	RateLimitSleepMinutes int `yaml:"rate_limit_sleep_minutes"`

	// BridgeURL is the base URL of the browser-automation bridge daemon.
	BridgeURL string `yaml:"bridge_url"`

	// AuditDBPath is where the SQLite run-audit database lives.
	AuditDBPath string `yaml:"audit_db_path"`
}

// DefaultExtractConfig returns the stock configuration.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		DocMaxLength:          3000,
		PacingSeconds:         60,
		BackoffSeconds:        120,
		MaxWaitStates:         5,
		RateLimitSleepMinutes: 60,
		BridgeURL:             "http://127.0.0.1:8575",
		AuditDBPath:           "chat-extract.db",
	}
}

// LoadExtractConfig reads a YAML config file and merges it over the
// defaults. Zero-valued fields in the file keep their default.
func LoadExtractConfig(path string) (ExtractConfig, error) {
	cfg := DefaultExtractConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var overrides ExtractConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if overrides.DocMaxLength > 0 {
		cfg.DocMaxLength = overrides.DocMaxLength
	}
	if overrides.PacingSeconds > 0 {
		cfg.PacingSeconds = overrides.PacingSeconds
	}
	if overrides.BackoffSeconds > 0 {
		cfg.BackoffSeconds = overrides.BackoffSeconds
	}
	if overrides.MaxWaitStates > 0 {
		cfg.MaxWaitStates = overrides.MaxWaitStates
	}
	if overrides.RateLimitSleepMinutes > 0 {
		cfg.RateLimitSleepMinutes = overrides.RateLimitSleepMinutes
	}
	if overrides.BridgeURL != "" {
		cfg.BridgeURL = overrides.BridgeURL
	}
	if overrides.AuditDBPath != "" {
		cfg.AuditDBPath = overrides.AuditDBPath
	}

	return cfg, nil
}

// Pacing returns the inter-request delay as a duration.
func (c ExtractConfig) Pacing() time.Duration {
	return time.Duration(c.PacingSeconds) * time.Second
}

// Backoff returns the degraded-reply backoff unit as a duration.
func (c ExtractConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

// RateLimitSleep returns the post-429 sleep as a duration.
func (c ExtractConfig) RateLimitSleep() time.Duration {
	return time.Duration(c.RateLimitSleepMinutes) * time.Minute
}
