package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/equilens/equilens/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(ticker string, at time.Time) *models.FinalReport {
	return &models.FinalReport{
		Ticker: ticker,
		Recommendation: models.Recommendation{
			Label:      models.LabelHold,
			Conviction: models.ConvictionMedium,
			Rationale:  "mixed signals",
		},
		GeneratedAt: at,
	}
}

func TestInsertAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, ticker := range []string{"AAPL", "MSFT", "NVDA"} {
		if err := store.Insert(ctx, sampleReport(ticker, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Insert %s: %v", ticker, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Ticker != "NVDA" || records[1].Ticker != "MSFT" {
		t.Fatalf("wrong order: %s, %s", records[0].Ticker, records[1].Ticker)
	}
	if records[0].Label != "HOLD" || records[0].Conviction != "Medium" {
		t.Fatalf("recommendation not round-tripped: %+v", records[0])
	}
}

func TestRecentEmptyStore(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestInsertRejectsNilReport(t *testing.T) {
	store := openTestStore(t)
	if err := store.Insert(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil report")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
