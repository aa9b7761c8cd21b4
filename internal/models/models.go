// Package models holds the domain types shared across the research workflow.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Label is the final call on a ticker.
type Label string

const (
	LabelBuy  Label = "BUY"
	LabelSell Label = "SELL"
	LabelHold Label = "HOLD"
)

func (l Label) Valid() bool {
	switch l {
	case LabelBuy, LabelSell, LabelHold:
		return true
	}
	return false
}

// Conviction expresses how strongly the strategist stands behind the label.
type Conviction string

const (
	ConvictionLow    Conviction = "Low"
	ConvictionMedium Conviction = "Medium"
	ConvictionHigh   Conviction = "High"
)

func (c Conviction) Valid() bool {
	switch c {
	case ConvictionLow, ConvictionMedium, ConvictionHigh:
		return true
	}
	return false
}

// Metrics is one ticker's valuation snapshot. Ratios Yahoo does not report
// for a symbol stay invalid rather than zero so peer averages can skip them.
type Metrics struct {
	Ticker      string              `json:"ticker"`
	Price       decimal.Decimal     `json:"price"`
	MarketCap   int64               `json:"market_cap"`
	TrailingPE  decimal.NullDecimal `json:"trailing_pe"`
	ForwardPE   decimal.NullDecimal `json:"forward_pe"`
	PriceToBook decimal.NullDecimal `json:"price_to_book"`
	EPS         decimal.NullDecimal `json:"eps"`
}

// PE returns the trailing P/E, falling back to forward P/E.
func (m Metrics) PE() decimal.NullDecimal {
	if m.TrailingPE.Valid {
		return m.TrailingPE
	}
	return m.ForwardPE
}

// PriceBar is one day of closing-price history.
type PriceBar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Headline is one recent news item about the subject ticker.
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// MarketSnapshot is everything the fetch stage produces for one run. The
// analyst tasks treat it as read-only.
type MarketSnapshot struct {
	Ticker         string             `json:"ticker"`
	Quote          Metrics            `json:"quote"`
	History        []PriceBar         `json:"history,omitempty"`
	Peers          []string           `json:"peers"`
	PeerMetrics    map[string]Metrics `json:"peer_metrics"`
	PeerComparison string             `json:"peer_comparison"`
	Headlines      []Headline         `json:"headlines,omitempty"`
	FetchedAt      time.Time          `json:"fetched_at"`
}

// Finding is one analyst's assessment of the snapshot.
type Finding struct {
	Analyst     string    `json:"analyst"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Recommendation is the synthesized outcome of a run.
type Recommendation struct {
	Label      Label      `json:"label"`
	Conviction Conviction `json:"conviction"`
	Rationale  string     `json:"rationale"`
}

// FinalReport is the value a completed run hands back to the caller.
type FinalReport struct {
	Ticker         string             `json:"ticker"`
	Recommendation Recommendation     `json:"recommendation"`
	Findings       map[string]Finding `json:"findings"`
	GeneratedAt    time.Time          `json:"generated_at"`
	Elapsed        time.Duration      `json:"elapsed"`
}
