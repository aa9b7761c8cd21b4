// Package display renders research reports for the terminal and writes the
// markdown memo that each run leaves behind.
package display

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/equilens/equilens/internal/history"
	"github.com/equilens/equilens/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	buyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	sellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))
)

func labelStyle(label models.Label) lipgloss.Style {
	switch label {
	case models.LabelBuy:
		return buyStyle
	case models.LabelSell:
		return sellStyle
	default:
		return holdStyle
	}
}

// RenderReport formats the final report for the terminal.
func RenderReport(report *models.FinalReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Research Report: %s", report.Ticker)))
	b.WriteString("\n\n")

	rec := report.Recommendation
	b.WriteString(fmt.Sprintf("Recommendation: %s (Conviction: %s)\n",
		labelStyle(rec.Label).Render(string(rec.Label)),
		rec.Conviction,
	))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Generated %s in %s",
		report.GeneratedAt.Format("2006-01-02 15:04:05"),
		report.Elapsed.Round(time.Second),
	)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Strategist Rationale"))
	b.WriteString("\n")
	b.WriteString(rec.Rationale)
	b.WriteString("\n\n")

	for _, name := range sortedNames(report.Findings) {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s Analysis", name)))
		b.WriteString("\n")
		b.WriteString(report.Findings[name].Summary)
		b.WriteString("\n\n")
	}

	return b.String()
}

// RenderError formats a run failure for the terminal.
func RenderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("Error: %v", err))
}

// RenderHistory formats persisted runs as a simple table.
func RenderHistory(records []history.Record) string {
	if len(records) == 0 {
		return mutedStyle.Render("No runs recorded yet.")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Recent Runs"))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%-19s %-8s %s (%s)\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Ticker,
			labelStyle(models.Label(r.Label)).Render(r.Label),
			r.Conviction,
		))
	}
	return b.String()
}

// WriteMarkdown writes the report memo into dir and returns the file path.
func WriteMarkdown(dir string, report *models.FinalReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.md", report.Ticker, report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(MarkdownReport(report)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// MarkdownReport renders the report as a standalone markdown memo.
func MarkdownReport(report *models.FinalReport) string {
	var b strings.Builder

	rec := report.Recommendation
	fmt.Fprintf(&b, "# Research Report: %s\n\n", report.Ticker)
	fmt.Fprintf(&b, "**Recommendation:** %s  \n", rec.Label)
	fmt.Fprintf(&b, "**Conviction:** %s  \n", rec.Conviction)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Strategist Rationale\n\n")
	b.WriteString(rec.Rationale)
	b.WriteString("\n\n")

	for _, name := range sortedNames(report.Findings) {
		fmt.Fprintf(&b, "## %s Analysis\n\n", name)
		b.WriteString(report.Findings[name].Summary)
		b.WriteString("\n\n")
	}

	return b.String()
}

func sortedNames(findings map[string]models.Finding) []string {
	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
