package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/equilens/equilens/config"
	"github.com/equilens/equilens/internal/models"
)

// YahooClient fetches quotes and fundamentals from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
}

func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo")
	return &YahooClient{
		cache: NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
	}
}

// GetMetrics fetches the valuation snapshot for one symbol.
func (yc *YahooClient) GetMetrics(ctx context.Context, symbol string) (models.Metrics, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return models.Metrics{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	symbol = NormalizeSymbol(symbol)

	var cached models.Metrics
	if yc.cache.Get("yahoo", "metrics", symbol, &cached) {
		return cached, nil
	}

	var result models.Metrics
	err := WithRetry(ctx, DefaultRetryConfig(), func() error {
		eq, err := equity.Get(symbol)
		if err != nil {
			return classifyYahooError(symbol, err)
		}
		if eq == nil || (eq.RegularMarketPrice == 0 && eq.MarketCap == 0) {
			return fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}

		result = models.Metrics{
			Ticker:      symbol,
			Price:       decimal.NewFromFloat(eq.RegularMarketPrice),
			MarketCap:   eq.MarketCap,
			TrailingPE:  nullFromFloat(eq.TrailingPE),
			ForwardPE:   nullFromFloat(eq.ForwardPE),
			PriceToBook: nullFromFloat(eq.PriceToBook),
			EPS:         nullFromFloat(eq.EpsTrailingTwelveMonths),
		}
		return nil
	})
	if err != nil {
		return models.Metrics{}, err
	}

	yc.cache.Set("yahoo", "metrics", symbol, result)
	return result, nil
}

// GetHistoryWindow fetches daily closes for the trailing window of days.
func (yc *YahooClient) GetHistoryWindow(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	symbol = NormalizeSymbol(symbol)

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}
	var cached []models.PriceBar
	if yc.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var result []models.PriceBar
	err := WithRetry(ctx, DefaultRetryConfig(), func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, models.PriceBar{
				Date:  time.Unix(int64(bar.Timestamp), 0),
				Close: bar.Close,
			})
		}
		if err := iter.Err(); err != nil {
			return classifyYahooError(symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "history", cacheKey, result)
	return result, nil
}

// classifyYahooError maps upstream failures onto the provider sentinels.
func classifyYahooError(symbol string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "no results"),
		strings.Contains(msg, "argument-error"),
		strings.Contains(msg, "invalid symbol"):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, symbol, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
}

func nullFromFloat(f float64) decimal.NullDecimal {
	if f == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(f), Valid: true}
}
