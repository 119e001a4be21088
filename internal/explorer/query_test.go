package explorer

import (
	"errors"
	"strings"
	"testing"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

func fixture(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.ParseCSV(strings.NewReader("country;ip;user-agent\n" +
		"FR;1.1.1.1;Googlebot/2.1\n" +
		"FR;2.2.2.2;Mozilla/5.0\n" +
		"DE;3.3.3.3;Mozilla/5.0\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	return table
}

func TestIsReadOnlyQuery(t *testing.T) {
	valid := []string{
		"SELECT * FROM logs",
		"select country, count(*) from logs group by country",
		"WITH c AS (SELECT country FROM logs) SELECT * FROM c",
	}
	for _, q := range valid {
		if !isReadOnlyQuery(q) {
			t.Errorf("expected %q to be allowed", q)
		}
	}

	invalid := []string{
		"DROP TABLE logs",
		"INSERT INTO logs VALUES ('x')",
		"SELECT * FROM logs; DELETE FROM logs",
		"PRAGMA table_info(logs)",
		"/* sneaky */ UPDATE logs SET country='X'",
	}
	for _, q := range invalid {
		if isReadOnlyQuery(q) {
			t.Errorf("expected %q to be rejected", q)
		}
	}
}

func TestQueryCountsRows(t *testing.T) {
	e := New()
	defer e.Close()

	result, err := e.Query(fixture(t), "SELECT COUNT(*) AS n FROM logs")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.RowCount != 1 || len(result.Rows) != 1 {
		t.Fatalf("expected 1 result row, got %+v", result)
	}
	if n, ok := result.Rows[0][0].(int64); !ok || n != 3 {
		t.Errorf("expected COUNT(*) = 3, got %v", result.Rows[0][0])
	}
}

func TestQueryGroupBy(t *testing.T) {
	e := New()
	defer e.Close()

	result, err := e.Query(fixture(t), `SELECT country, COUNT(DISTINCT ip) AS ips FROM logs GROUP BY country ORDER BY country`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.RowCount != 2 {
		t.Fatalf("expected 2 groups, got %d", result.RowCount)
	}
	if result.Rows[0][0] != "DE" || result.Rows[1][0] != "FR" {
		t.Errorf("unexpected grouping: %v", result.Rows)
	}
}

func TestQueryRejectsWrites(t *testing.T) {
	e := New()
	defer e.Close()

	if _, err := e.Query(fixture(t), "DELETE FROM logs"); !errors.Is(err, ErrNotReadOnly) {
		t.Errorf("expected ErrNotReadOnly, got %v", err)
	}
}

func TestQueryReloadsOnNewDataset(t *testing.T) {
	e := New()
	defer e.Close()

	if _, err := e.Query(fixture(t), "SELECT COUNT(*) FROM logs"); err != nil {
		t.Fatalf("first query failed: %v", err)
	}

	other, err := dataset.ParseCSV(strings.NewReader("country;ip;user-agent\nES;4.4.4.4;curl/8\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	result, err := e.Query(other, "SELECT COUNT(*) AS n FROM logs")
	if err != nil {
		t.Fatalf("second query failed: %v", err)
	}
	if n, ok := result.Rows[0][0].(int64); !ok || n != 1 {
		t.Errorf("expected reloaded dataset with 1 row, got %v", result.Rows[0][0])
	}
}

func TestSchemaListsColumns(t *testing.T) {
	e := New()
	schema := e.Schema(fixture(t))

	cols, ok := schema[TableName]
	if !ok {
		t.Fatalf("expected %q in schema", TableName)
	}
	if len(cols) != 3 || cols[0]["name"] != "country" || cols[2]["name"] != "user-agent" {
		t.Errorf("unexpected schema: %v", cols)
	}
}
