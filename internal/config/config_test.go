package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.APIBaseURL != "https://api.anevia.my.id" {
		t.Errorf("api base url: got %q", cfg.APIBaseURL)
	}
	if cfg.Cache.EntryTTLHours != 24 {
		t.Errorf("entry ttl: got %d", cfg.Cache.EntryTTLHours)
	}
	if cfg.Cache.PendingTTLMinutes != 60 {
		t.Errorf("pending ttl: got %d", cfg.Cache.PendingTTLMinutes)
	}
	if cfg.Dashboard.Port != 8750 {
		t.Errorf("dashboard port: got %d", cfg.Dashboard.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != DefaultConfig().APIBaseURL {
		t.Errorf("expected default api base url, got %q", cfg.APIBaseURL)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := DefaultConfig()
	cfg.APIBaseURL = "http://localhost:9000"
	cfg.IdentityAPIKey = "key-123"
	cfg.Cache.EntryTTLHours = 12
	cfg.Google.ClientID = "client-1"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.APIBaseURL != "http://localhost:9000" {
		t.Errorf("api base url: got %q", loaded.APIBaseURL)
	}
	if loaded.IdentityAPIKey != "key-123" {
		t.Errorf("identity api key: got %q", loaded.IdentityAPIKey)
	}
	if loaded.Cache.EntryTTLHours != 12 {
		t.Errorf("entry ttl: got %d", loaded.Cache.EntryTTLHours)
	}
	if loaded.Google.ClientID != "client-1" {
		t.Errorf("google client id: got %q", loaded.Google.ClientID)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANEVIA_API_BASE_URL", "http://env-override:8080")
	t.Setenv("ANEVIA_CACHE__ENTRY_TTL_HOURS", "6")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://env-override:8080" {
		t.Errorf("env override: got %q", cfg.APIBaseURL)
	}
	if cfg.Cache.EntryTTLHours != 6 {
		t.Errorf("nested env override: got %d", cfg.Cache.EntryTTLHours)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := DefaultConfig()
	cfg.APIBaseURL = "http://from-file"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("ANEVIA_API_BASE_URL", "http://from-env")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.APIBaseURL != "http://from-env" {
		t.Errorf("env must win over file, got %q", loaded.APIBaseURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing api url", func(c *Config) { c.APIBaseURL = "" }, "api_base_url is required"},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://x" }, "must be an http(s) URL"},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "data_dir is required"},
		{"negative entry ttl", func(c *Config) { c.Cache.EntryTTLHours = -1 }, "entry_ttl_hours"},
		{"negative pending ttl", func(c *Config) { c.Cache.PendingTTLMinutes = -1 }, "pending_ttl_minutes"},
		{"port out of range", func(c *Config) { c.Dashboard.Port = 70000 }, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate: got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/anevia-test"}

	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/anevia-test", "anevia.db") {
		t.Errorf("DatabasePath: got %q", got)
	}
	if got := cfg.CredentialsPath(); got != filepath.Join("/tmp/anevia-test", "credentials.json") {
		t.Errorf("CredentialsPath: got %q", got)
	}
}
