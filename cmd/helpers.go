package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/config"
	"github.com/anevia/anevia/internal/db"
	"github.com/anevia/anevia/internal/offline"
)

// appContext is the wired client stack shared by commands: config, local
// storage, connectivity, the API client, and the auth bridge.
type appContext struct {
	cfg     *config.Config
	db      *db.DB
	store   *offline.Store
	monitor *offline.Monitor
	cache   *offline.Cache
	client  *api.Client
	creds   *auth.CredentialStore
	bridge  *auth.Bridge
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `anevia init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildApp wires the full client stack from config.
func buildApp() (*appContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}

	store := offline.NewStore(database)
	monitor := offline.NewMonitor(true)
	cache := offline.New(store, monitor, offline.WithTTLs(
		time.Duration(cfg.Cache.EntryTTLHours)*time.Hour,
		time.Duration(cfg.Cache.PendingTTLMinutes)*time.Minute,
	))

	client := api.NewClient(cfg.APIBaseURL, cache)
	provider := auth.NewFirebaseProvider(cfg.IdentityAPIKey, cfg.IdentityBaseURL, cfg.TokenBaseURL)
	creds := auth.NewCredentialStore(cfg.CredentialsPath())
	bridge := auth.NewBridge(provider, creds, client)
	client.SetTokenSource(bridge)

	return &appContext{
		cfg:     cfg,
		db:      database,
		store:   store,
		monitor: monitor,
		cache:   cache,
		client:  client,
		creds:   creds,
		bridge:  bridge,
	}, nil
}

// Close releases the app's resources.
func (a *appContext) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// startProbe launches background connectivity probing when configured.
func (a *appContext) startProbe(ctx context.Context) {
	interval := a.cfg.Cache.ProbeIntervalSeconds
	if interval <= 0 {
		return
	}
	go a.monitor.Probe(ctx, a.cfg.APIBaseURL+"/healthz", time.Duration(interval)*time.Second)
}

// googleTokenFunc builds the browser OAuth flow from config. Returns nil when
// no Google OAuth client is configured.
func (a *appContext) googleTokenFunc() account.GoogleTokenFunc {
	clientID := a.cfg.Google.ClientID
	clientSecret := a.cfg.Google.ClientSecret
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return func(ctx context.Context) (string, error) {
		token, err := auth.RunGoogleOAuth(ctx, clientID, clientSecret)
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}
}

// requireUser returns the signed-in user or a sign-in hint.
func (a *appContext) requireUser() (*auth.User, error) {
	user, err := a.bridge.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("not signed in. Run `anevia login` first")
	}
	return user, nil
}
