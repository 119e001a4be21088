package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Delimiter used by the upload and export formats.
const Delimiter = ';'

var (
	ErrEmptyFile       = errors.New("file has no header row")
	ErrEmptyHeader     = errors.New("header contains an empty column name")
	ErrDuplicateColumn = errors.New("header contains a duplicate column name")
)

// ParseCSV reads a semicolon-delimited upload into a normalized Table.
// Header cells are trimmed and lowercased, blank lines are skipped, and the
// recognized date and hour columns are coerced per cell (bad cells become
// null, the row is kept). Any structural CSV error is fatal for the whole
// upload; no partial table is returned.
func ParseCSV(r io.Reader) (*Table, error) {
	hasher := sha256.New()
	cr := csv.NewReader(io.TeeReader(r, hasher))
	cr.Comma = Delimiter
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if name == "" {
			return nil, ErrEmptyHeader
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
		columns[i] = name
	}

	hourCol := ""
	if seen[ColHour] {
		hourCol = ColHour
	} else if seen[ColHourAlt] {
		hourCol = ColHourAlt
	}

	var rows []Record
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		vals := make(map[string]string, len(columns))
		for i, c := range columns {
			if i < len(cells) {
				vals[c] = cells[i]
			}
		}

		rec := Record{Values: vals}
		if seen[ColDate] {
			rec.Date = parseDate(vals[ColDate])
		}
		if hourCol != "" {
			rec.Hour = parseHour(vals[hourCol])
		}
		rows = append(rows, rec)
	}

	return &Table{
		columns:     columns,
		rows:        rows,
		fingerprint: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// WriteCSV streams the table back out in the upload format, UTF-8, same
// delimiter, columns in table order including derived ones. Cells are the
// raw ingested strings, so a re-ingest parses to the same records.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	if err := cw.Write(t.columns); err != nil {
		return err
	}

	cells := make([]string, len(t.columns))
	for _, r := range t.rows {
		for i, c := range t.columns {
			cells[i] = r.Values[c]
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
