package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/equilens/equilens/config"
)

// FinnhubClient resolves a ticker's peer group via the Finnhub API.
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")
	cache := NewCacheManager(cacheDir, 7*24*time.Hour, cfg.CacheEnabled) // peer groups barely move

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  cache,
		apiKey: cfg.FinnhubAPIKey,
	}
}

// Configured reports whether an API key is available.
func (fc *FinnhubClient) Configured() bool {
	return fc.apiKey != ""
}

// GetPeers returns up to limit competitor tickers for symbol, excluding the
// symbol itself.
func (fc *FinnhubClient) GetPeers(ctx context.Context, symbol string, limit int) ([]string, error) {
	if !fc.Configured() {
		return nil, fmt.Errorf("%w: finnhub api key not configured", ErrUnavailable)
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached []string
	if fc.cache.Get("finnhub", "peers", symbol, &cached) {
		return capPeers(cached, symbol, limit), nil
	}

	var peers []string
	err := WithRetry(ctx, DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"token":  fc.apiKey,
			}).
			Get("/stock/peers")
		if err != nil {
			return fmt.Errorf("%w: fetch peers for %s: %v", ErrUnavailable, symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("%w: peers API error %d: %s", ErrUnavailable, resp.StatusCode(), resp.String())
		}

		peers = peers[:0]
		if err := json.Unmarshal(resp.Body(), &peers); err != nil {
			return fmt.Errorf("%w: parse peers response: %v", ErrUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, fmt.Errorf("%w: no peers for %s", ErrNotFound, symbol)
	}

	fc.cache.Set("finnhub", "peers", symbol, peers)
	return capPeers(peers, symbol, limit), nil
}

func capPeers(peers []string, self string, limit int) []string {
	out := make([]string, 0, limit)
	for _, p := range peers {
		p = NormalizeSymbol(p)
		if p == "" || p == self {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
