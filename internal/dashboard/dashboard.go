// Package dashboard serves a local web view of the signed-in account: scan
// history, profile, connectivity state, and a WebSocket chat relay.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/chat"
	"github.com/anevia/anevia/internal/offline"
	"github.com/anevia/anevia/internal/scan"
)

// Config holds dashboard server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Dashboard exposes the account's data over local HTTP.
type Dashboard struct {
	cfg        Config
	scans      *scan.Model
	chats      *chat.Model
	profile    *account.ProfileModel
	bridge     *auth.Bridge
	monitor    *offline.Monitor
	store      *offline.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a dashboard over the shared feature models.
func New(cfg Config, scans *scan.Model, chats *chat.Model, profile *account.ProfileModel, bridge *auth.Bridge, monitor *offline.Monitor, store *offline.Store) *Dashboard {
	d := &Dashboard{
		cfg:     cfg,
		scans:   scans,
		chats:   chats,
		profile: profile,
		bridge:  bridge,
		monitor: monitor,
		store:   store,
	}
	d.router = d.buildRouter()
	return d
}

// buildRouter creates and configures the chi router with all routes.
func (d *Dashboard) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if d.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", d.ServeIndex)
	r.Get("/api/status", d.handleStatus)
	r.Get("/api/scans", d.handleScans)
	r.Get("/api/scans/{scanID}", d.handleScan)
	r.Get("/api/profile", d.handleProfile)
	r.Get("/ws/chat", d.handleWebSocket)

	return r
}

// Router returns the chi router, used directly by tests.
func (d *Dashboard) Router() chi.Router { return d.router }

// Start begins listening on the configured port.
func (d *Dashboard) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Port)
	d.httpServer = &http.Server{
		Addr:              addr,
		Handler:           d.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("anevia dashboard listening on %s", addr)
	return d.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (d *Dashboard) Shutdown(ctx context.Context) error {
	if d.httpServer != nil {
		return d.httpServer.Shutdown(ctx)
	}
	return nil
}
