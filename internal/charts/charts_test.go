package charts

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

func fixture(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.ParseCSV(strings.NewReader("country;ip\nFR;1.1.1.1\nDE;2.2.2.2\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	return table
}

func TestBuildRendersSeries(t *testing.T) {
	fig, err := Build(fixture(t), "country", "ip", Bar, "IPs by country")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if fig.Title != "IPs by country" || fig.Type != Bar {
		t.Errorf("unexpected spec: %+v", fig)
	}
	if !reflect.DeepEqual(fig.X, []string{"FR", "DE"}) {
		t.Errorf("X series = %v", fig.X)
	}
	if !reflect.DeepEqual(fig.Y, []string{"1.1.1.1", "2.2.2.2"}) {
		t.Errorf("Y series = %v", fig.Y)
	}
	if fig.ID == "" {
		t.Error("expected a generated figure ID")
	}
}

func TestBuildDefaultTitle(t *testing.T) {
	fig, err := Build(fixture(t), "country", "ip", Line, "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if fig.Title != "line of ip by country" {
		t.Errorf("default title = %q", fig.Title)
	}
}

func TestBuildNormalizesTypeCasing(t *testing.T) {
	for _, raw := range []string{"Bar", "BAR", "Pie"} {
		fig, err := Build(fixture(t), "country", "ip", ChartType(raw), "t")
		if err != nil {
			t.Errorf("Build(%q) failed: %v", raw, err)
			continue
		}
		if fig.Type != ChartType(strings.ToLower(raw)) {
			t.Errorf("Build(%q) stored type %q", raw, fig.Type)
		}
	}
}

func TestBuildRejectsUnsupportedType(t *testing.T) {
	_, err := Build(fixture(t), "country", "ip", ChartType("Heatmap"), "t")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestBuildRejectsUnknownField(t *testing.T) {
	if _, err := Build(fixture(t), "nope", "ip", Bar, "t"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField for x, got %v", err)
	}
	if _, err := Build(fixture(t), "country", "nope", Pie, "t"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField for y, got %v", err)
	}
}
