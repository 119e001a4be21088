package dataset

import (
	"strings"
	"time"
)

// Normalized column names recognized by filters, aggregates and enrichment.
// Ingestion lowercases and trims every header, so these are the only
// spellings downstream code has to know about.
const (
	ColDate      = "date"
	ColHour      = "heure"
	ColHourAlt   = "hour"
	ColCountry   = "country"
	ColCity      = "city"
	ColIP        = "ip"
	ColURL       = "url"
	ColUserAgent = "user-agent"
	ColBotType   = "bottype"
	ColVisitor   = "visiteur"

	// Derived by enrichment, never expected in uploads.
	ColBrowser = "browser"
	ColOS      = "os"
)

// DateLayout is the day-first calendar format used in uploads.
const DateLayout = "02/01/2006"

// timeLayout is the time-of-day format reduced to an hour on ingest.
const timeLayout = "15:04:05"

// Record is one log row. Values holds the raw string cell for every column;
// Date and Hour are the coerced forms of the recognized date/time columns,
// nil when the column is absent or the cell did not parse.
type Record struct {
	Values map[string]string
	Date   *time.Time
	Hour   *int
}

// Get returns the raw cell for a column, or "" when absent.
func (r Record) Get(col string) string {
	return r.Values[col]
}

// DateKey returns the record's date as YYYY-MM-DD, or "" when null.
func (r Record) DateKey() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

// Table is an immutable normalized record set. Filtering and enrichment
// produce new Tables; the rows of a published Table are never mutated.
type Table struct {
	columns     []string
	rows        []Record
	fingerprint string
}

// Columns returns the column names in file order (derived columns last).
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the backing row slice. Callers must not mutate it.
func (t *Table) Rows() []Record { return t.rows }

// HasColumn reports whether a normalized column name exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// HourColumn returns the name of the hour column ("heure" or "hour"),
// or "" when the table has neither.
func (t *Table) HourColumn() string {
	if t.HasColumn(ColHour) {
		return ColHour
	}
	if t.HasColumn(ColHourAlt) {
		return ColHourAlt
	}
	return ""
}

// Fingerprint returns the content hash of the original upload. Derived
// tables (filtered views, enriched copies) keep the source fingerprint so
// the ingest cache key survives the pipeline.
func (t *Table) Fingerprint() string { return t.fingerprint }

// WithRows returns a view over a subset of rows, sharing column metadata
// and fingerprint with the receiver.
func (t *Table) WithRows(rows []Record) *Table {
	return &Table{columns: t.columns, rows: rows, fingerprint: t.fingerprint}
}

// AppendColumn returns a new Table with an extra column. Rows are copied so
// the receiver stays untouched. values must have one entry per row; rows
// beyond len(values) get "".
func (t *Table) AppendColumn(name string, values []string) *Table {
	cols := append(t.Columns(), name)
	rows := make([]Record, len(t.rows))
	for i, r := range t.rows {
		vals := make(map[string]string, len(r.Values)+1)
		for k, v := range r.Values {
			vals[k] = v
		}
		if i < len(values) {
			vals[name] = values[i]
		}
		rows[i] = Record{Values: vals, Date: r.Date, Hour: r.Hour}
	}
	return &Table{columns: cols, rows: rows, fingerprint: t.fingerprint}
}

// normalizeHeader trims and lowercases a CSV header cell.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// parseDate coerces a DD/MM/YYYY cell. Empty or malformed cells are null.
func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil
	}
	return &d
}

// parseHour reduces an HH:MM:SS cell to its hour component.
func parseHour(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	ts, err := time.Parse(timeLayout, v)
	if err != nil {
		return nil
	}
	h := ts.Hour()
	return &h
}
