package config

// Config is the top-level anevia configuration, corresponding to ~/.anevia/config.yml.
type Config struct {
	// APIBaseURL is the root of the Anevia REST API.
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`
	// IdentityAPIKey is the Firebase web API key used by the identity endpoints.
	IdentityAPIKey string `yaml:"identity_api_key" koanf:"identity_api_key"`
	// IdentityBaseURL overrides the Identity Toolkit endpoint (tests, emulator).
	IdentityBaseURL string `yaml:"identity_base_url" koanf:"identity_base_url"`
	// TokenBaseURL overrides the Secure Token endpoint (tests, emulator).
	TokenBaseURL string `yaml:"token_base_url" koanf:"token_base_url"`
	// DataDir holds the local SQLite database and credential files.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Cache     CacheConfig     `yaml:"cache" koanf:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard" koanf:"dashboard"`
	Google    GoogleConfig    `yaml:"google" koanf:"google"`
}

// GoogleConfig holds the OAuth client used for Google sign-in. Empty values
// disable the flow.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id" koanf:"client_id"`
	ClientSecret string `yaml:"client_secret" koanf:"client_secret"`
}

// CacheConfig controls the offline response cache and pending-request queue.
type CacheConfig struct {
	// EntryTTLHours is how long a cached response stays servable.
	EntryTTLHours int `yaml:"entry_ttl_hours" koanf:"entry_ttl_hours"`
	// PendingTTLMinutes is how long a queued mutation stays replayable.
	PendingTTLMinutes int `yaml:"pending_ttl_minutes" koanf:"pending_ttl_minutes"`
	// ProbeIntervalSeconds is how often connectivity is re-checked. 0 disables probing.
	ProbeIntervalSeconds int `yaml:"probe_interval_seconds" koanf:"probe_interval_seconds"`
}

// DashboardConfig holds settings for the local dashboard server.
type DashboardConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
