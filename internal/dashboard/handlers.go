package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/anevia/anevia/internal/api"
)

// markdown renders the AI-written recommendation text for the browser view.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// statusResponse is the JSON response for the status endpoint.
type statusResponse struct {
	Online       bool   `json:"online"`
	SignedIn     bool   `json:"signed_in"`
	Email        string `json:"email,omitempty"`
	PendingCount int    `json:"pending_count"`
}

// scanResponse is a scan plus its recommendations rendered to HTML.
type scanResponse struct {
	api.Scan
	RecommendationsHTML string `json:"recommendationsHtml,omitempty"`
}

func (d *Dashboard) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Online: d.monitor.Online()}

	if user, err := d.bridge.CurrentUser(); err == nil {
		resp.SignedIn = true
		resp.Email = user.Email
	}

	count, err := d.store.PendingCount(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	resp.PendingCount = count

	writeJSON(w, http.StatusOK, resp)
}

func (d *Dashboard) handleScans(w http.ResponseWriter, r *http.Request) {
	user, err := d.bridge.CurrentUser()
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}

	scans, err := d.scans.LoadHistory(r.Context(), user.UID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if scans == nil {
		scans = []api.Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (d *Dashboard) handleScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")

	s, err := d.scans.GetScan(r.Context(), scanID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Scan:                *s,
		RecommendationsHTML: renderRecommendations(s.Recommendations),
	})
}

func (d *Dashboard) handleProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := d.bridge.CurrentUser(); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}

	profile, err := d.profile.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// renderRecommendations joins the recommendation list into one markdown list
// and renders it to HTML.
func renderRecommendations(recs []string) string {
	if len(recs) == 0 {
		return ""
	}
	var src strings.Builder
	for _, rec := range recs {
		src.WriteString("- ")
		src.WriteString(rec)
		src.WriteString("\n")
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src.String()), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
