package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns ~/.anevia, falling back to a relative directory when
// the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anevia"
	}
	return filepath.Join(home, ".anevia")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL: "https://api.anevia.my.id",
		DataDir:    DefaultDataDir(),
		Cache: CacheConfig{
			EntryTTLHours:        24,
			PendingTTLMinutes:    60,
			ProbeIntervalSeconds: 30,
		},
		Dashboard: DashboardConfig{
			Port: 8750,
		},
	}
}
