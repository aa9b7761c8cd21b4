package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/equilens/equilens/internal/models"
)

func marketSnapshot() *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Ticker: "AAPL",
		Quote: models.Metrics{
			Ticker:     "AAPL",
			Price:      decimal.NewFromFloat(187.50),
			MarketCap:  2_900_000_000_000,
			TrailingPE: decimal.NullDecimal{Decimal: decimal.NewFromFloat(30.5), Valid: true},
		},
		Peers:          []string{"MSFT", "GOOGL"},
		PeerComparison: "PEER COMPARISON ANALYSIS FOR AAPL",
		Headlines: []models.Headline{
			{Title: "Apple unveils new chip", Source: "Reuters"},
		},
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	llm := &scriptedCompleter{reply: "fine"}
	if _, err := NewRegistry(NewQuant(llm), NewQuant(llm)); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRegistryRequiresAnalysts(t *testing.T) {
	if _, err := NewRegistry(); err == nil {
		t.Fatal("expected error for empty registry")
	}
}

func TestDefaultTeamNames(t *testing.T) {
	reg := DefaultTeam(&scriptedCompleter{reply: "fine"})
	names := reg.Names()
	want := []string{NameFundamentalist, NameQuant, NameSentiment}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestTeamFromNames(t *testing.T) {
	llm := &scriptedCompleter{reply: "fine"}

	reg, err := TeamFromNames(llm, []string{NameQuant, NameSentiment})
	if err != nil {
		t.Fatalf("TeamFromNames: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 analysts, got %d", reg.Len())
	}

	if reg, err = TeamFromNames(llm, nil); err != nil || reg.Len() != 3 {
		t.Fatalf("empty selection should yield the default team, got %d (%v)", reg.Len(), err)
	}

	if _, err := TeamFromNames(llm, []string{"Astrologer"}); err == nil {
		t.Fatal("expected error for unknown analyst")
	}
}

func TestFundamentalistPromptCarriesMetrics(t *testing.T) {
	llm := &scriptedCompleter{reply: "valuation looks stretched"}
	f := NewFundamentalist(llm)

	finding, err := f.Analyze(context.Background(), marketSnapshot())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if finding.Analyst != NameFundamentalist {
		t.Fatalf("finding keyed by %q", finding.Analyst)
	}
	if !strings.Contains(llm.lastUser, "Price: $187.50") {
		t.Fatalf("prompt missing price:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "PEER COMPARISON ANALYSIS FOR AAPL") {
		t.Fatalf("prompt missing peer comparison:\n%s", llm.lastUser)
	}
}

func TestSentimentPromptListsHeadlines(t *testing.T) {
	llm := &scriptedCompleter{reply: "coverage skews positive"}
	s := NewSentiment(llm)

	if _, err := s.Analyze(context.Background(), marketSnapshot()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(llm.lastUser, "Apple unveils new chip") {
		t.Fatalf("prompt missing headline:\n%s", llm.lastUser)
	}
}

func TestSentimentPromptHandlesNoHeadlines(t *testing.T) {
	llm := &scriptedCompleter{reply: "inconclusive"}
	s := NewSentiment(llm)

	snap := marketSnapshot()
	snap.Headlines = nil
	if _, err := s.Analyze(context.Background(), snap); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(llm.lastUser, "no recent headlines") {
		t.Fatalf("prompt should state headlines are missing:\n%s", llm.lastUser)
	}
}

func TestAnalystRejectsBlankReply(t *testing.T) {
	llm := &scriptedCompleter{reply: "   "}
	q := NewQuant(llm)

	if _, err := q.Analyze(context.Background(), marketSnapshot()); err == nil {
		t.Fatal("expected error for blank analysis")
	}
}

func TestPriceTrend(t *testing.T) {
	history := []models.PriceBar{
		{Close: decimal.NewFromInt(100)},
		{Close: decimal.NewFromInt(110)},
	}
	trend := priceTrend(history)
	if !strings.Contains(trend, "10.0%") {
		t.Fatalf("expected 10%% move, got %q", trend)
	}

	if priceTrend(nil) != "" {
		t.Fatal("no history must produce no trend line")
	}
}
