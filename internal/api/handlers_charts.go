package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/charts"
)

// CreateChart builds a custom figure from user-chosen axes and appends it
// to the session's history. Invalid specs store nothing.
func (h *Handlers) CreateChart(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}

	var input struct {
		XField    string `json:"x_field"`
		YField    string `json:"y_field"`
		ChartType string `json:"chart_type"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fig, err := charts.Build(t, input.XField, input.YField, charts.ChartType(input.ChartType), input.Title)
	if err != nil {
		if errors.Is(err, charts.ErrUnsupportedType) || errors.Is(err, charts.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid chart configuration: %v", err))
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build chart")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	h.sessions.AppendChart(claims.SessionID, fig)

	writeJSON(w, http.StatusCreated, fig)
}

// ListCharts returns the session's chart history in insertion order
func (h *Handlers) ListCharts(w http.ResponseWriter, r *http.Request) {
	figures := h.sessionCharts(r)
	if figures == nil {
		figures = []*charts.Figure{}
	}
	writeJSON(w, http.StatusOK, figures)
}

func (h *Handlers) sessionCharts(r *http.Request) []*charts.Figure {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil
	}
	return h.sessions.Charts(claims.SessionID)
}
