// Package agents defines the analyst viewpoints and the strategist that
// synthesizes their findings. Analysts are pure functions of the market
// snapshot and their fixed prompt; they share no state with one another.
package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equilens/equilens/internal/models"
)

// Analyst names double as findings-map keys.
const (
	NameFundamentalist = "Fundamentalist"
	NameQuant          = "Quant"
	NameSentiment      = "Sentiment"
)

// Completer is the LLM surface the agents consume.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Analyst produces one independent finding from a fixed viewpoint.
type Analyst interface {
	Name() string
	Analyze(ctx context.Context, snap *models.MarketSnapshot) (models.Finding, error)
}

// Registry is an explicit, ordered set of analysts with unique names.
type Registry struct {
	analysts []Analyst
}

func NewRegistry(analysts ...Analyst) (*Registry, error) {
	if len(analysts) == 0 {
		return nil, fmt.Errorf("at least one analyst is required")
	}
	seen := make(map[string]bool, len(analysts))
	for _, a := range analysts {
		name := a.Name()
		if name == "" {
			return nil, fmt.Errorf("analyst with empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate analyst name %q", name)
		}
		seen[name] = true
	}
	return &Registry{analysts: analysts}, nil
}

// DefaultTeam registers the standard three viewpoints.
func DefaultTeam(llm Completer) *Registry {
	reg, _ := NewRegistry(
		NewFundamentalist(llm),
		NewQuant(llm),
		NewSentiment(llm),
	)
	return reg
}

// TeamFromNames builds a registry holding only the named analysts. An empty
// name list selects the default team.
func TeamFromNames(llm Completer, names []string) (*Registry, error) {
	if len(names) == 0 {
		return DefaultTeam(llm), nil
	}
	analysts := make([]Analyst, 0, len(names))
	for _, name := range names {
		switch name {
		case NameFundamentalist:
			analysts = append(analysts, NewFundamentalist(llm))
		case NameQuant:
			analysts = append(analysts, NewQuant(llm))
		case NameSentiment:
			analysts = append(analysts, NewSentiment(llm))
		default:
			return nil, fmt.Errorf("unknown analyst %q", name)
		}
	}
	return NewRegistry(analysts...)
}

func (r *Registry) All() []Analyst {
	return r.analysts
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.analysts))
	for i, a := range r.analysts {
		names[i] = a.Name()
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.analysts)
}

// complete runs one prompt exchange and wraps the reply into a finding.
func complete(ctx context.Context, llm Completer, name, system, user string) (models.Finding, error) {
	text, err := llm.Complete(ctx, system, user)
	if err != nil {
		return models.Finding{}, fmt.Errorf("%s: %w", name, err)
	}
	if strings.TrimSpace(text) == "" {
		return models.Finding{}, fmt.Errorf("%s: empty analysis", name)
	}
	return models.Finding{
		Analyst:     name,
		Summary:     text,
		GeneratedAt: time.Now(),
	}, nil
}

// formatMetrics renders one ticker's valuation block for prompts.
func formatMetrics(m models.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", m.Ticker)
	fmt.Fprintf(&b, "Price: $%s\n", m.Price.StringFixed(2))
	fmt.Fprintf(&b, "Market Cap: $%d\n", m.MarketCap)
	writeRatio(&b, "Trailing P/E", m.TrailingPE)
	writeRatio(&b, "Forward P/E", m.ForwardPE)
	writeRatio(&b, "Price/Book", m.PriceToBook)
	writeRatio(&b, "EPS (ttm)", m.EPS)
	return b.String()
}

func writeRatio(b *strings.Builder, label string, v decimal.NullDecimal) {
	if v.Valid {
		fmt.Fprintf(b, "%s: %s\n", label, v.Decimal.StringFixed(2))
	} else {
		fmt.Fprintf(b, "%s: n/a\n", label)
	}
}

// priceTrend summarizes the history window as a percent move, or "" when
// there is not enough history to say anything.
func priceTrend(history []models.PriceBar) string {
	if len(history) < 2 {
		return ""
	}
	first := history[0]
	last := history[len(history)-1]
	if first.Close.IsZero() {
		return ""
	}
	change := last.Close.Sub(first.Close).Div(first.Close).Mul(decimal.NewFromInt(100))
	days := int(last.Date.Sub(first.Date).Hours() / 24)
	return fmt.Sprintf("Price change over the last %d days: %s%%", days, change.StringFixed(1))
}

// sortedFindingKeys gives a stable iteration order over the findings map.
func sortedFindingKeys(findings map[string]models.Finding) []string {
	keys := make([]string, 0, len(findings))
	for k := range findings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
