package agents

import (
	"context"
	"fmt"

	"github.com/equilens/equilens/internal/models"
)

// Fundamentalist is the value-focused, conservative viewpoint.
type Fundamentalist struct {
	llm Completer
}

func NewFundamentalist(llm Completer) *Fundamentalist {
	return &Fundamentalist{llm: llm}
}

func (f *Fundamentalist) Name() string {
	return NameFundamentalist
}

func (f *Fundamentalist) Analyze(ctx context.Context, snap *models.MarketSnapshot) (models.Finding, error) {
	user := fmt.Sprintf(`Here is the market data for %s:

%s
%s

Provide your fundamental analysis:`,
		snap.Ticker, formatMetrics(snap.Quote), snap.PeerComparison)

	return complete(ctx, f.llm, f.Name(), fundamentalistPrompt, user)
}
