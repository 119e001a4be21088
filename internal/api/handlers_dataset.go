package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strconv"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
	"github.com/hasdouaaa/dashboard-autops/internal/filter"
)

// datasetSummary is what the UI needs to build its controls: size, axes,
// and which filters/charts the uploaded columns can support.
func datasetSummary(t *dataset.Table) map[string]interface{} {
	return map[string]interface{}{
		"rows":           t.Len(),
		"columns":        t.Columns(),
		"fingerprint":    t.Fingerprint(),
		"has_date":       t.HasColumn(dataset.ColDate),
		"has_hour":       t.HourColumn() != "",
		"has_country":    t.HasColumn(dataset.ColCountry),
		"has_city":       t.HasColumn(dataset.ColCity),
		"has_ip":         t.HasColumn(dataset.ColIP),
		"has_url":        t.HasColumn(dataset.ColURL),
		"has_user_agent": t.HasColumn(dataset.ColUserAgent),
		"has_bot_type":   t.HasColumn(dataset.ColBotType),
		"has_visitor":    t.HasColumn(dataset.ColVisitor),
	}
}

// UploadDataset ingests a CSV upload and makes it the session's active
// dataset. A parse failure leaves the previous dataset in place.
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Reject oversized uploads outright instead of parsing a truncated
	// stream.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	var body io.Reader

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
			if isTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()
		body = file
	} else {
		body = r.Body
	}

	t, err := dataset.ParseCSV(body)
	if err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse CSV: %v", err))
		return
	}

	t = h.enricher.Enrich(t)
	t = h.sessions.SetDataset(claims.SessionID, t)

	writeJSON(w, http.StatusCreated, datasetSummary(t))
}

// GetDataset returns the active dataset's summary
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, datasetSummary(t))
}

// GetDatasetRows returns a raw-data page of the active dataset
func (h *Handlers) GetDatasetRows(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows := t.Rows()
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	cols := t.Columns()
	page := make([]map[string]string, 0, end-offset)
	for _, rec := range rows[offset:end] {
		row := make(map[string]string, len(cols))
		for _, c := range cols {
			row[c] = rec.Values[c]
		}
		page = append(page, row)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(rows),
		"offset":  offset,
		"columns": cols,
		"rows":    page,
	})
}

// GetDatasetOptions returns the distinct values the filter controls offer:
// dates, countries and hours present in the active dataset, nulls dropped.
func (h *Handlers) GetDatasetOptions(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}

	dates := make(map[string]bool)
	countries := make(map[string]bool)
	hours := make(map[int]bool)
	for _, rec := range t.Rows() {
		if key := rec.DateKey(); key != "" {
			dates[key] = true
		}
		if c := rec.Get(dataset.ColCountry); c != "" {
			countries[c] = true
		}
		if rec.Hour != nil {
			hours[*rec.Hour] = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dates":        sortedKeys(dates),
		"countries":    sortedKeys(countries),
		"hours":        sortedInts(hours),
		"has_bot_type": t.HasColumn(dataset.ColBotType),
	})
}

// ExportDataset streams the filtered record set as a CSV download
func (h *Handlers) ExportDataset(w http.ResponseWriter, r *http.Request) {
	t := h.activeTable(w, r)
	if t == nil {
		return
	}

	view := filter.Apply(t, parseCriteria(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered-logs.csv"`)
	// Headers are already sent; a mid-stream write error just truncates
	// the download.
	view.WriteCSV(w)
}

func isTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
