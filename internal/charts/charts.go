// Package charts builds user-defined figures from arbitrary dataset
// columns. A built figure carries its rendered data series, so replaying a
// session's chart history never touches the dataset again.
package charts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// ChartType is one of the supported figure kinds.
type ChartType string

const (
	Bar     ChartType = "bar"
	Line    ChartType = "line"
	Scatter ChartType = "scatter"
	Pie     ChartType = "pie"
)

var (
	ErrUnsupportedType = errors.New("unsupported chart type")
	ErrUnknownField    = errors.New("unknown field")
)

// Valid reports whether the chart type is supported.
func (c ChartType) Valid() bool {
	switch c {
	case Bar, Line, Scatter, Pie:
		return true
	}
	return false
}

// Figure is a rendered chart: the spec the user submitted plus the data
// series pulled from the table at build time. For pie charts the X series
// holds slice names and Y the values.
type Figure struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      ChartType `json:"type"`
	XField    string    `json:"x_field"`
	YField    string    `json:"y_field"`
	X         []string  `json:"x"`
	Y         []string  `json:"y"`
	CreatedAt time.Time `json:"created_at"`
}

// Build validates a chart spec against the table and renders it. The
// series preserve row order. Errors are user-level configuration problems;
// nothing is stored on failure.
func Build(t *dataset.Table, xField, yField string, chartType ChartType, title string) (*Figure, error) {
	// Tolerate casing like "Bar" or "Pie" from clients.
	chartType = ChartType(strings.ToLower(string(chartType)))
	if !chartType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, chartType)
	}
	if !t.HasColumn(xField) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, xField)
	}
	if !t.HasColumn(yField) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, yField)
	}

	if title == "" {
		title = fmt.Sprintf("%s of %s by %s", chartType, yField, xField)
	}

	rows := t.Rows()
	x := make([]string, len(rows))
	y := make([]string, len(rows))
	for i, r := range rows {
		x[i] = r.Get(xField)
		y[i] = r.Get(yField)
	}

	return &Figure{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      chartType,
		XField:    xField,
		YField:    yField,
		X:         x,
		Y:         y,
		CreatedAt: time.Now().UTC(),
	}, nil
}
