package explorer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// QueryResult is the outcome of one explorer query.
type QueryResult struct {
	Columns    []string        `json:"columns"`
	Rows       [][]interface{} `json:"rows"`
	RowCount   int             `json:"row_count"`
	DurationMs int64           `json:"duration_ms"`
}

// MaxQueryRows caps result sets.
const MaxQueryRows = 1000

// QueryTimeout is the maximum query execution time.
const QueryTimeout = 5 * time.Second

var ErrNotReadOnly = errors.New("only SELECT queries are allowed")

// dangerousKeywords are SQL keywords that modify state.
var dangerousKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"TRUNCATE", "GRANT", "REVOKE", "ATTACH", "DETACH",
	"VACUUM", "REINDEX", "PRAGMA",
}

var (
	singleLineComment = regexp.MustCompile(`--.*`)
	multiLineComment  = regexp.MustCompile(`/\*[\s\S]*?\*/`)
)

// isReadOnlyQuery checks if a query is safe to execute.
func isReadOnlyQuery(query string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(query))
	normalized = singleLineComment.ReplaceAllString(normalized, "")
	normalized = multiLineComment.ReplaceAllString(normalized, "")
	normalized = strings.TrimSpace(normalized)

	// Must start with SELECT or WITH (for CTEs)
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return false
	}

	for _, kw := range dangerousKeywords {
		pattern := regexp.MustCompile(`\b` + kw + `\b`)
		if pattern.MatchString(normalized) {
			return false
		}
	}

	return true
}

// Query runs a read-only SQL query against the dataset, loading it into
// sqlite first when needed. A LIMIT is forced when the query has none.
func (e *Explorer) Query(t *dataset.Table, query string) (*QueryResult, error) {
	if !isReadOnlyQuery(query) {
		return nil, ErrNotReadOnly
	}

	if !strings.Contains(strings.ToUpper(query), "LIMIT") {
		query = strings.TrimSuffix(strings.TrimSpace(query), ";")
		query = fmt.Sprintf("%s LIMIT %d", query, MaxQueryRows)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	conn, err := e.ensure(t)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New("query timeout exceeded (5 seconds max)")
		}
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var resultRows [][]interface{}
	rowCount := 0
	for rows.Next() {
		if rowCount >= MaxQueryRows {
			break
		}

		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]interface{}, len(columns))
		for i, v := range values {
			switch val := v.(type) {
			case []byte:
				row[i] = string(val)
			case sql.RawBytes:
				row[i] = string(val)
			default:
				row[i] = val
			}
		}
		resultRows = append(resultRows, row)
		rowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Columns:    columns,
		Rows:       resultRows,
		RowCount:   rowCount,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
