package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/equilens/equilens/internal/models"
)

// Sentiment reads recent press coverage of the ticker.
type Sentiment struct {
	llm Completer
}

func NewSentiment(llm Completer) *Sentiment {
	return &Sentiment{llm: llm}
}

func (s *Sentiment) Name() string {
	return NameSentiment
}

func (s *Sentiment) Analyze(ctx context.Context, snap *models.MarketSnapshot) (models.Finding, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent headlines for %s:\n\n", snap.Ticker)
	if len(snap.Headlines) == 0 {
		b.WriteString("(no recent headlines were found)\n")
	}
	for _, h := range snap.Headlines {
		fmt.Fprintf(&b, "- %s", h.Title)
		if h.Source != "" {
			fmt.Fprintf(&b, " (%s", h.Source)
			if !h.PublishedAt.IsZero() {
				fmt.Fprintf(&b, ", %s", h.PublishedAt.Format("2006-01-02"))
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nProvide your sentiment analysis:")

	return complete(ctx, s.llm, s.Name(), sentimentPrompt, b.String())
}
