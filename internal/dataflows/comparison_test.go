package dataflows

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/equilens/equilens/internal/models"
)

func metricsWith(ticker string, price float64, pe, pb float64) models.Metrics {
	m := models.Metrics{
		Ticker:    ticker,
		Price:     decimal.NewFromFloat(price),
		MarketCap: 1_000_000_000,
	}
	if pe != 0 {
		m.TrailingPE = decimal.NullDecimal{Decimal: decimal.NewFromFloat(pe), Valid: true}
	}
	if pb != 0 {
		m.PriceToBook = decimal.NullDecimal{Decimal: decimal.NewFromFloat(pb), Valid: true}
	}
	return m
}

func TestBuildPeerComparisonPremium(t *testing.T) {
	subject := metricsWith("AAPL", 150, 30, 10)
	peers := map[string]models.Metrics{
		"MSFT":  metricsWith("MSFT", 300, 20, 8),
		"GOOGL": metricsWith("GOOGL", 120, 20, 4),
	}

	out := BuildPeerComparison(subject, []string{"MSFT", "GOOGL"}, peers)

	if !strings.Contains(out, "PEER COMPARISON ANALYSIS FOR AAPL") {
		t.Fatalf("missing header:\n%s", out)
	}
	// Subject P/E 30 vs peer average 20 is a 50% premium.
	if !strings.Contains(out, "+50.0% (PREMIUM)") {
		t.Fatalf("expected +50.0%% P/E premium:\n%s", out)
	}
	if !strings.Contains(out, "Peer Avg: 20.00") {
		t.Fatalf("expected peer average 20.00:\n%s", out)
	}
}

func TestBuildPeerComparisonDiscount(t *testing.T) {
	subject := metricsWith("F", 12, 6, 1)
	peers := map[string]models.Metrics{
		"GM": metricsWith("GM", 40, 8, 1),
		"TM": metricsWith("TM", 180, 10, 1),
	}

	out := BuildPeerComparison(subject, []string{"GM", "TM"}, peers)

	// Subject P/E 6 vs average 9 is a 33.3% discount.
	if !strings.Contains(out, "-33.3% (DISCOUNT)") {
		t.Fatalf("expected -33.3%% P/E discount:\n%s", out)
	}
}

func TestBuildPeerComparisonSkipsMissingMetrics(t *testing.T) {
	subject := metricsWith("NEWCO", 10, 0, 0)
	peers := map[string]models.Metrics{
		"PEER": metricsWith("PEER", 20, 15, 2),
	}

	out := BuildPeerComparison(subject, []string{"PEER"}, peers)

	if !strings.Contains(out, "P/E Ratio: Data not available") {
		t.Fatalf("expected P/E marked unavailable:\n%s", out)
	}
	if !strings.Contains(out, "Price-to-Book Ratio: Data not available") {
		t.Fatalf("expected P/B marked unavailable:\n%s", out)
	}
}

func TestPeerAverageIgnoresUnreportedPeers(t *testing.T) {
	peers := map[string]models.Metrics{
		"A": metricsWith("A", 10, 10, 0),
		"B": metricsWith("B", 10, 0, 0), // no P/E reported
		"C": metricsWith("C", 10, 20, 0),
	}

	avg, n := peerAverage([]string{"A", "B", "C"}, peers, func(m models.Metrics) decimal.NullDecimal {
		return m.PE()
	})

	if n != 2 {
		t.Fatalf("expected 2 reporting peers, got %d", n)
	}
	if !avg.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected average 15, got %s", avg)
	}
}
