package api

import (
	"encoding/json"
	"net/http"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/config"
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
	"github.com/hasdouaaa/dashboard-autops/internal/enrichment"
	"github.com/hasdouaaa/dashboard-autops/internal/explorer"
	"github.com/hasdouaaa/dashboard-autops/internal/session"
)

// Version is set from main.go at startup
var Version = "dev"

type Handlers struct {
	creds    *auth.Store
	auth     *auth.Auth
	sessions *session.Store
	enricher *enrichment.Enricher
	explorer *explorer.Explorer
	cfg      *config.Config
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetVersion returns the current version
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// activeTable resolves the calling session's dataset. Writes a 404 and
// returns nil when the session has not uploaded anything yet.
func (h *Handlers) activeTable(w http.ResponseWriter, r *http.Request) *dataset.Table {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}

	t := h.sessions.ActiveTable(claims.SessionID)
	if t == nil {
		writeError(w, http.StatusNotFound, "no dataset uploaded")
		return nil
	}
	return t
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
