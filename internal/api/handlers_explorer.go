package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hasdouaaa/dashboard-autops/internal/explorer"
)

// ExplorerQuery runs a read-only SQL query against the active dataset
func (h *Handlers) ExplorerQuery(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}

	var input struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := h.explorer.Query(t, input.Query)
	if err != nil {
		if errors.Is(err, explorer.ErrNotReadOnly) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Query failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExplorerSchema describes the queryable table for the active dataset
func (h *Handlers) ExplorerSchema(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, h.explorer.Schema(t))
}
