package dataflows

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/equilens/equilens/internal/models"
)

// BuildPeerComparison renders the subject's valuation against peer-group
// averages as the text block the analyst prompts consume. Metrics a symbol
// does not report are skipped from the averages rather than counted as zero.
func BuildPeerComparison(subject models.Metrics, peerOrder []string, peers map[string]models.Metrics) string {
	var b strings.Builder
	divider := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nPEER COMPARISON ANALYSIS FOR %s\n%s\n\n", divider, subject.Ticker, divider)
	fmt.Fprintf(&b, "Main Ticker: %s\n", subject.Ticker)
	fmt.Fprintf(&b, "Price: $%s\n", subject.Price.StringFixed(2))
	fmt.Fprintf(&b, "Market Cap: $%d\n\n", subject.MarketCap)
	fmt.Fprintf(&b, "Peer Group: %s\n\n", strings.Join(peerOrder, ", "))
	b.WriteString("--- VALUATION METRICS ---\n\n")

	writeMetricComparison(&b, "P/E Ratio", subject.Ticker, subject.PE(), peerOrder, peers,
		func(m models.Metrics) decimal.NullDecimal { return m.PE() })
	writeMetricComparison(&b, "Price-to-Book Ratio", subject.Ticker, subject.PriceToBook, peerOrder, peers,
		func(m models.Metrics) decimal.NullDecimal { return m.PriceToBook })
	writeMetricComparison(&b, "EPS (trailing)", subject.Ticker, subject.EPS, peerOrder, peers,
		func(m models.Metrics) decimal.NullDecimal { return m.EPS })

	b.WriteString(divider)
	return b.String()
}

func writeMetricComparison(b *strings.Builder, label, ticker string, own decimal.NullDecimal,
	peerOrder []string, peers map[string]models.Metrics,
	pick func(models.Metrics) decimal.NullDecimal,
) {
	avg, n := peerAverage(peerOrder, peers, pick)
	if !own.Valid || n == 0 || avg.IsZero() {
		fmt.Fprintf(b, "%s: Data not available\n\n", label)
		return
	}

	diff := own.Decimal.Sub(avg).Div(avg).Mul(decimal.NewFromInt(100))
	tag := "(PREMIUM)"
	if diff.IsNegative() {
		tag = "(DISCOUNT)"
	}

	fmt.Fprintf(b, "%s:\n", label)
	fmt.Fprintf(b, "  %s: %s\n", ticker, own.Decimal.StringFixed(2))
	fmt.Fprintf(b, "  Peer Avg: %s (across %d peers)\n", avg.StringFixed(2), n)
	fmt.Fprintf(b, "  Difference: %s%% %s\n\n", signedFixed(diff), tag)
}

// peerAverage averages the picked metric over peers that report it.
func peerAverage(peerOrder []string, peers map[string]models.Metrics,
	pick func(models.Metrics) decimal.NullDecimal,
) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, p := range peerOrder {
		m, ok := peers[p]
		if !ok {
			continue
		}
		v := pick(m)
		if !v.Valid {
			continue
		}
		sum = sum.Add(v.Decimal)
		n++
	}
	if n == 0 {
		return decimal.Zero, 0
	}
	return sum.Div(decimal.NewFromInt(int64(n))), n
}

func signedFixed(d decimal.Decimal) string {
	s := d.StringFixed(1)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}
