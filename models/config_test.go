package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultExtractConfig(t *testing.T) {
	cfg := DefaultExtractConfig()

	if cfg.DocMaxLength != 3000 {
		t.Errorf("DocMaxLength = %d, want 3000", cfg.DocMaxLength)
	}
	if cfg.Pacing() != 60*time.Second {
		t.Errorf("Pacing() = %v, want 60s", cfg.Pacing())
	}
	if cfg.Backoff() != 120*time.Second {
		t.Errorf("Backoff() = %v, want 120s", cfg.Backoff())
	}
	if cfg.MaxWaitStates != 5 {
		t.Errorf("MaxWaitStates = %d, want 5", cfg.MaxWaitStates)
	}
	if cfg.RateLimitSleep() != time.Hour {
		t.Errorf("RateLimitSleep() = %v, want 1h", cfg.RateLimitSleep())
	}
}

func TestLoadExtractConfig_PartialOverride(t *testing.T) {
	path := writeConfig(t, "pacing_seconds: 5\nbridge_url: http://localhost:9999\n")

	cfg, err := LoadExtractConfig(path)
	if err != nil {
		t.Fatalf("LoadExtractConfig() error = %v", err)
	}

	if cfg.PacingSeconds != 5 {
		t.Errorf("PacingSeconds = %d, want 5", cfg.PacingSeconds)
	}
	if cfg.BridgeURL != "http://localhost:9999" {
		t.Errorf("BridgeURL = %q", cfg.BridgeURL)
	}
	// Untouched fields keep their defaults.
	if cfg.DocMaxLength != 3000 || cfg.MaxWaitStates != 5 {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadExtractConfig_MissingFile(t *testing.T) {
	if _, err := LoadExtractConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadExtractConfig() error = nil, want read failure")
	}
}

func TestLoadExtractConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "pacing_seconds: [not a number\n")
	if _, err := LoadExtractConfig(path); err == nil {
		t.Error("LoadExtractConfig() error = nil, want parse failure")
	}
}
