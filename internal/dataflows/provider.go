// Package dataflows fetches the market data one research run consumes:
// quote and fundamentals from Yahoo Finance, the peer group from Finnhub
// (or an LLM fallback), and recent headlines from Google News.
package dataflows

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/equilens/equilens/config"
	"github.com/equilens/equilens/internal/models"
)

// fallbackPeers stands in when neither Finnhub nor the LLM can produce a
// peer group. Broad market ETFs keep the comparison meaningful.
var fallbackPeers = []string{"SPY", "QQQ", "DIA"}

const historyWindowDays = 90

// Completer is the LLM surface the peer fallback needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service assembles the full MarketSnapshot for a ticker.
type Service struct {
	cfg       *config.Config
	yahoo     *YahooClient
	finnhub   *FinnhubClient
	news      *NewsClient
	completer Completer
}

// NewService wires the provider. completer may be nil; peer discovery then
// falls straight through to the static fallback when Finnhub is not
// configured.
func NewService(cfg *config.Config, completer Completer) *Service {
	return &Service{
		cfg:       cfg,
		yahoo:     NewYahooClient(cfg),
		finnhub:   NewFinnhubClient(cfg),
		news:      NewNewsClient(cfg),
		completer: completer,
	}
}

// Fetch produces the snapshot for one run. Subject metrics are mandatory;
// individual peers and headlines degrade gracefully since the analysts can
// reason around gaps in them.
func (s *Service) Fetch(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	ticker = NormalizeSymbol(ticker)

	quote, err := s.yahoo.GetMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}

	peers := s.peersFor(ctx, ticker)

	peerMetrics := make(map[string]models.Metrics, len(peers))
	kept := peers[:0]
	for _, p := range peers {
		m, err := s.yahoo.GetMetrics(ctx, p)
		if err != nil {
			log.Printf("dataflows: skipping peer %s: %v", p, err)
			continue
		}
		peerMetrics[p] = m
		kept = append(kept, p)
	}
	peers = kept

	history, err := s.yahoo.GetHistoryWindow(ctx, ticker, historyWindowDays)
	if err != nil {
		log.Printf("dataflows: price history unavailable for %s: %v", ticker, err)
		history = nil
	}

	headlines, err := s.news.GetHeadlines(ctx, ticker, s.cfg.MaxHeadlines)
	if err != nil {
		log.Printf("dataflows: headlines unavailable for %s: %v", ticker, err)
		headlines = nil
	}

	return &models.MarketSnapshot{
		Ticker:         ticker,
		Quote:          quote,
		History:        history,
		Peers:          peers,
		PeerMetrics:    peerMetrics,
		PeerComparison: BuildPeerComparison(quote, peers, peerMetrics),
		Headlines:      headlines,
		FetchedAt:      time.Now(),
	}, nil
}

// peersFor tries Finnhub first, then the LLM, then the static fallback.
func (s *Service) peersFor(ctx context.Context, ticker string) []string {
	if s.finnhub.Configured() {
		peers, err := s.finnhub.GetPeers(ctx, ticker, s.cfg.PeerCount)
		if err == nil && len(peers) > 0 {
			return peers
		}
		log.Printf("dataflows: finnhub peers for %s failed, falling back: %v", ticker, err)
	}

	if s.completer != nil {
		peers, err := s.llmPeers(ctx, ticker)
		if err == nil && len(peers) > 0 {
			return peers
		}
		log.Printf("dataflows: llm peers for %s failed, using market ETFs: %v", ticker, err)
	}

	return append([]string(nil), fallbackPeers...)
}

var tickerPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9.\-]{0,9}\b`)

// llmPeers asks the model for competitor tickers and pulls anything that
// looks like a symbol out of the reply.
func (s *Service) llmPeers(ctx context.Context, ticker string) ([]string, error) {
	system := "You are a financial analyst. Answer with ticker symbols only."
	user := fmt.Sprintf(
		"Given the stock ticker '%s', return exactly %d competitor ticker symbols "+
			"as a comma-separated list, nothing else. Example for AAPL: MSFT, GOOGL, META",
		ticker, s.cfg.PeerCount)

	reply, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{ticker: true}
	var peers []string
	for _, match := range tickerPattern.FindAllString(reply, -1) {
		sym := NormalizeSymbol(match)
		if seen[sym] || ValidateSymbol(sym) != nil {
			continue
		}
		seen[sym] = true
		peers = append(peers, sym)
		if len(peers) == s.cfg.PeerCount {
			break
		}
	}
	if len(peers) < s.cfg.PeerCount {
		return nil, fmt.Errorf("could not parse %d peers from reply %q", s.cfg.PeerCount, reply)
	}
	return peers, nil
}
