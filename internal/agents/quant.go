package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/equilens/equilens/internal/models"
)

// Quant is the data-only peer-comparison viewpoint.
type Quant struct {
	llm Completer
}

func NewQuant(llm Completer) *Quant {
	return &Quant{llm: llm}
}

func (q *Quant) Name() string {
	return NameQuant
}

func (q *Quant) Analyze(ctx context.Context, snap *models.MarketSnapshot) (models.Finding, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is the peer comparison data for %s:\n\n%s\n", snap.Ticker, snap.PeerComparison)
	if trend := priceTrend(snap.History); trend != "" {
		fmt.Fprintf(&b, "\n%s\n", trend)
	}
	b.WriteString("\nProvide your quantitative analysis:")

	return complete(ctx, q.llm, q.Name(), quantPrompt, b.String())
}
