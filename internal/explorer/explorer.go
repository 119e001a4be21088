// Package explorer exposes the active dataset to read-only SQL. The table
// is loaded wholesale into an in-memory sqlite database, so queries never
// touch disk and the loaded copy is dropped whenever the dataset changes.
package explorer

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// TableName is the SQL name of the loaded dataset.
const TableName = "logs"

// Explorer keeps at most one dataset loaded, keyed by fingerprint.
type Explorer struct {
	mu          sync.Mutex
	conn        *sql.DB
	fingerprint string
}

// New creates an empty Explorer.
func New() *Explorer {
	return &Explorer{}
}

// Close releases the loaded database, if any.
func (e *Explorer) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drop()
}

func (e *Explorer) drop() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	e.fingerprint = ""
	return err
}

// ensure loads t into sqlite unless the same upload is already loaded.
// Caller holds the lock.
func (e *Explorer) ensure(t *dataset.Table) (*sql.DB, error) {
	if e.conn != nil && e.fingerprint == t.Fingerprint() {
		return e.conn, nil
	}
	if err := e.drop(); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory db: %w", err)
	}
	// The :memory: DSN is per-connection; a second connection would see an
	// empty database.
	conn.SetMaxOpenConns(1)

	cols := t.Columns()
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `" TEXT`
		placeholders[i] = "?"
	}

	if _, err := conn.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", TableName, strings.Join(quoted, ", "))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		conn.Close()
		return nil, err
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", TableName, strings.Join(placeholders, ", ")))
	if err != nil {
		tx.Rollback()
		conn.Close()
		return nil, err
	}

	args := make([]interface{}, len(cols))
	for _, r := range t.Rows() {
		for i, c := range cols {
			args[i] = r.Values[c]
		}
		if _, err := stmt.Exec(args...); err != nil {
			stmt.Close()
			tx.Rollback()
			conn.Close()
			return nil, fmt.Errorf("load row: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		conn.Close()
		return nil, err
	}

	e.conn = conn
	e.fingerprint = t.Fingerprint()
	return conn, nil
}

// Schema describes the loaded table's columns for the given dataset.
func (e *Explorer) Schema(t *dataset.Table) map[string][]map[string]string {
	cols := make([]map[string]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		cols = append(cols, map[string]string{"name": c, "type": "TEXT"})
	}
	return map[string][]map[string]string{TableName: cols}
}
