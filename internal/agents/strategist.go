package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/equilens/equilens/internal/models"
)

// Strategist merges the analyst findings into the final recommendation.
type Strategist struct {
	llm Completer
}

func NewStrategist(llm Completer) *Strategist {
	return &Strategist{llm: llm}
}

// Synthesize builds the memo prompt from the findings and parses the
// model's reply. Findings are assembled in sorted-name order so the map's
// insertion order never influences the outcome. Empty findings are
// rejected here, before any model call.
func (s *Strategist) Synthesize(ctx context.Context, snap *models.MarketSnapshot, findings map[string]models.Finding) (models.Recommendation, error) {
	if len(findings) == 0 {
		return models.Recommendation{}, fmt.Errorf("no findings to synthesize")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are analyzing: %s\n", snap.Ticker)
	for _, name := range sortedFindingKeys(findings) {
		f := findings[name]
		if strings.TrimSpace(f.Summary) == "" {
			return models.Recommendation{}, fmt.Errorf("empty finding from %s", name)
		}
		fmt.Fprintf(&b, "\n=== %s ANALYST'S REPORT ===\n%s\n", strings.ToUpper(name), f.Summary)
	}
	b.WriteString(`
=== YOUR TASK ===
Synthesize the above analyses into a final investment memo with a clear
BUY/SELL/HOLD recommendation and a Low/Medium/High conviction level.
`)

	text, err := s.llm.Complete(ctx, strategistPrompt, b.String())
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("strategist: %w", err)
	}

	rec, err := ParseRecommendation(text)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("strategist: %w", err)
	}
	return rec, nil
}

var (
	labelPattern      = regexp.MustCompile(`(?i)recommendation[^A-Za-z]{0,20}(BUY|SELL|HOLD)`)
	bareLabelPattern  = regexp.MustCompile(`\*\*(BUY|SELL|HOLD)\*\*`)
	convictionPattern = regexp.MustCompile(`(?i)conviction[^A-Za-z]{0,20}(?:level[^A-Za-z]{0,20})?(LOW|MEDIUM|HIGH)`)
)

// ParseRecommendation extracts the label and conviction from a memo. A memo
// that does not state both is a synthesis failure, never defaulted.
func ParseRecommendation(text string) (models.Recommendation, error) {
	label, err := parseLabel(text)
	if err != nil {
		return models.Recommendation{}, err
	}
	conviction, err := parseConviction(text)
	if err != nil {
		return models.Recommendation{}, err
	}
	return models.Recommendation{
		Label:      label,
		Conviction: conviction,
		Rationale:  strings.TrimSpace(text),
	}, nil
}

func parseLabel(text string) (models.Label, error) {
	if m := labelPattern.FindStringSubmatch(text); m != nil {
		return models.Label(strings.ToUpper(m[1])), nil
	}
	// Fall back to the last bold label in the memo.
	if ms := bareLabelPattern.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		return models.Label(strings.ToUpper(ms[len(ms)-1][1])), nil
	}
	return "", fmt.Errorf("memo does not state a BUY/SELL/HOLD recommendation")
}

func parseConviction(text string) (models.Conviction, error) {
	m := convictionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("memo does not state a conviction level")
	}
	switch strings.ToUpper(m[1]) {
	case "LOW":
		return models.ConvictionLow, nil
	case "MEDIUM":
		return models.ConvictionMedium, nil
	default:
		return models.ConvictionHigh, nil
	}
}
