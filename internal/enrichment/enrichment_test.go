package enrichment

import (
	"strings"
	"testing"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

func parseTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	table, err := dataset.ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	return table
}

func TestEnrichDerivesBotType(t *testing.T) {
	// Real user-agents carry semicolons, so the fields must be quoted.
	table := parseTable(t, "ip;user-agent\n"+
		`1.1.1.1;"Mozilla/5.0 (compatible; Googlebot/2.1)"`+"\n"+
		`2.2.2.2;"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"`+"\n")

	enriched := New("").Enrich(table)

	if !enriched.HasColumn(dataset.ColBotType) {
		t.Fatal("expected bottype column after enrichment")
	}
	rows := enriched.Rows()
	if got := rows[0].Get(dataset.ColBotType); got != string(BotGoogle) {
		t.Errorf("row 0 bottype = %q, want %q", got, BotGoogle)
	}
	if got := rows[1].Get(dataset.ColBotType); got != string(BotHuman) {
		t.Errorf("row 1 bottype = %q, want %q", got, BotHuman)
	}

	// Browser/OS derived alongside.
	if !enriched.HasColumn(dataset.ColBrowser) || !enriched.HasColumn(dataset.ColOS) {
		t.Error("expected browser and os columns after enrichment")
	}
	if got := rows[1].Get(dataset.ColBrowser); got != "Chrome" {
		t.Errorf("row 1 browser = %q, want Chrome", got)
	}
}

func TestEnrichPreservesUploadedBotType(t *testing.T) {
	table := parseTable(t, "ip;user-agent;bottype\n1.1.1.1;Googlebot/2.1;Custom\n")

	enriched := New("").Enrich(table)
	if got := enriched.Rows()[0].Get(dataset.ColBotType); got != "Custom" {
		t.Errorf("expected uploaded bottype preserved verbatim, got %q", got)
	}
}

func TestEnrichDerivesMissingBrowserOrOSColumn(t *testing.T) {
	table := parseTable(t, "user-agent;browser\n"+
		`"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36";Netscape`+"\n")

	enriched := New("").Enrich(table)
	if !enriched.HasColumn(dataset.ColOS) {
		t.Fatal("expected os column derived when only browser was uploaded")
	}
	if got := enriched.Rows()[0].Get(dataset.ColBrowser); got != "Netscape" {
		t.Errorf("expected uploaded browser preserved verbatim, got %q", got)
	}
	if got := enriched.Rows()[0].Get(dataset.ColOS); got == "" {
		t.Error("expected a derived os value")
	}
}

func TestEnrichWithoutUserAgent(t *testing.T) {
	table := parseTable(t, "ip;url\n1.1.1.1;/a\n")

	enriched := New("").Enrich(table)
	if enriched.HasColumn(dataset.ColBotType) {
		t.Error("expected no bottype column without user-agent")
	}
	if enriched.HasColumn(dataset.ColBrowser) {
		t.Error("expected no browser column without user-agent")
	}
}

func TestEnrichLeavesInputUntouched(t *testing.T) {
	table := parseTable(t, "ip;user-agent\n1.1.1.1;Googlebot/2.1\n")

	New("").Enrich(table)
	if table.HasColumn(dataset.ColBotType) {
		t.Error("enrichment mutated the ingested table")
	}
}
