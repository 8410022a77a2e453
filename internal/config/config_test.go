package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:               "8081",
		SQLiteDBPath:       filepath.Join(t.TempDir(), "soldi.db"),
		FeedMaxResident:    100,
		DashboardCacheSize: 32,
		DashboardCacheTTL:  30 * time.Second,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "not-a-port"
	cfg.FeedMaxResident = 0
	cfg.DashboardCacheTTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port", "feed resident budget", "dashboard cache TTL"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error, got %q", want, msg)
		}
	}
}

func TestValidatePortRange(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "70000"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("expected default port 8081, got %q", cfg.Port)
	}
	if cfg.FeedMaxResident != 100 {
		t.Fatalf("expected default resident budget 100, got %d", cfg.FeedMaxResident)
	}
}
