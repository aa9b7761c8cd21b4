package display

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/equilens/equilens/internal/models"
)

func sampleReport() *models.FinalReport {
	return &models.FinalReport{
		Ticker: "AAPL",
		Recommendation: models.Recommendation{
			Label:      models.LabelBuy,
			Conviction: models.ConvictionHigh,
			Rationale:  "earnings momentum outweighs valuation risk",
		},
		Findings: map[string]models.Finding{
			"Quant":          {Analyst: "Quant", Summary: "trend is positive"},
			"Fundamentalist": {Analyst: "Fundamentalist", Summary: "valuation is rich"},
		},
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Elapsed:     42 * time.Second,
	}
}

func TestMarkdownReportSectionsInOrder(t *testing.T) {
	md := MarkdownReport(sampleReport())

	for _, want := range []string{
		"# Research Report: AAPL",
		"**Recommendation:** BUY",
		"**Conviction:** High",
		"## Strategist Rationale",
		"## Fundamentalist Analysis",
		"## Quant Analysis",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}

	// Analyst sections are emitted in name order.
	if strings.Index(md, "Fundamentalist Analysis") > strings.Index(md, "Quant Analysis") {
		t.Fatal("analyst sections out of order")
	}
}

func TestWriteMarkdownCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	path, err := WriteMarkdown(dir, sampleReport())
	if err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Research Report: AAPL") {
		t.Fatal("written memo missing title")
	}
	if filepath.Ext(path) != ".md" {
		t.Fatalf("unexpected file name %s", path)
	}
}

func TestRenderReportCarriesFindings(t *testing.T) {
	out := RenderReport(sampleReport())
	if !strings.Contains(out, "trend is positive") {
		t.Fatalf("rendered report missing finding:\n%s", out)
	}
	if !strings.Contains(out, "BUY") {
		t.Fatal("rendered report missing label")
	}
}
