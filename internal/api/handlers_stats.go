package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hasdouaaa/dashboard-autops/internal/charts"
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
	"github.com/hasdouaaa/dashboard-autops/internal/filter"
	"github.com/hasdouaaa/dashboard-autops/internal/report"
)

// parseCriteria extracts filter params from the request. Comma-separated
// lists for dates (YYYY-MM-DD), countries and hours; bots is one of
// all/humans/bots. Unknown bot values fall back to all rather than erroring,
// matching the permissive filter contract.
func parseCriteria(r *http.Request) filter.Criteria {
	q := r.URL.Query()

	c := filter.Criteria{
		Dates:     splitList(q.Get("dates")),
		Countries: splitList(q.Get("countries")),
	}

	for _, v := range splitList(q.Get("hours")) {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			c.Hours = append(c.Hours, h)
		}
	}

	if b := filter.BotFilter(q.Get("bots")); b.Valid() {
		c.Bots = b
	}

	return c
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// filteredView resolves the session's dataset and applies request filters.
func (h *Handlers) filteredView(w http.ResponseWriter, r *http.Request) *dataset.Table {
	t := h.activeTable(w, r)
	if t == nil {
		return nil
	}
	return filter.Apply(t, parseCriteria(r))
}

// writeAggregate responds with an aggregate, or with a skip marker when the
// dataset lacks the aggregate's required columns.
func writeAggregate[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"skipped": true,
			"reason":  "required columns missing",
		})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetStatsHourlyIPs returns distinct IPs per hour
func (h *Handlers) GetStatsHourlyIPs(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.HourlyIPs(view))
	}
}

// GetStatsCountryIPs returns distinct IPs per country, ascending by count
func (h *Handlers) GetStatsCountryIPs(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.CountryIPs(view))
	}
}

// GetStatsCityIPs returns distinct IPs per city, descending by count
func (h *Handlers) GetStatsCityIPs(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.CityIPs(view))
	}
}

// GetStatsGeoIPs returns distinct IPs per (country, city) pair
func (h *Handlers) GetStatsGeoIPs(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.GeoIPs(view))
	}
}

// GetStatsVisitorsByDate returns distinct visitors per (date, bot type)
func (h *Handlers) GetStatsVisitorsByDate(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.VisitorsByDate(view))
	}
}

// GetStatsIPsByDate returns distinct IPs per (date, bot type)
func (h *Handlers) GetStatsIPsByDate(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.IPsByDate(view))
	}
}

// GetStatsTopURLs returns the ten most visited URLs
func (h *Handlers) GetStatsTopURLs(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.TopURLs(view))
	}
}

// GetStatsUserAgents returns distinct user-agent counts per bot type
func (h *Handlers) GetStatsUserAgents(w http.ResponseWriter, r *http.Request) {
	if view := h.filteredView(w, r); view != nil {
		writeAggregate(w, report.UserAgentsByBot(view))
	}
}

// GetStatsOverview returns every applicable aggregate plus the session's
// stored custom figures, replayed without recomputation.
func (h *Handlers) GetStatsOverview(w http.ResponseWriter, r *http.Request) {
	view := h.filteredView(w, r)
	if view == nil {
		return
	}

	figures := h.sessionCharts(r)
	if figures == nil {
		figures = []*charts.Figure{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"aggregates":    report.Build(view),
		"custom_charts": figures,
	})
}
