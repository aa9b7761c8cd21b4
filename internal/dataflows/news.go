package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/equilens/equilens/config"
	"github.com/equilens/equilens/internal/models"
)

// NewsClient scrapes recent Google News headlines for a ticker.
type NewsClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewNewsClient(cfg *config.Config) *NewsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "news")
	cache := NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; equilens/1.0)")

	return &NewsClient{
		client: client,
		cache:  cache,
	}
}

// GetHeadlines returns up to limit recent headlines mentioning the symbol.
func (nc *NewsClient) GetHeadlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	symbol = NormalizeSymbol(symbol)
	if limit <= 0 {
		limit = 8
	}

	cacheKey := map[string]interface{}{"symbol": symbol, "limit": limit}
	var cached []models.Headline
	if nc.cache.Get("google_news", "headlines", cacheKey, &cached) {
		return cached, nil
	}

	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(symbol+" stock"))

	var result []models.Headline
	err := WithRetry(ctx, DefaultRetryConfig(), func() error {
		resp, err := nc.client.R().SetContext(ctx).Get(searchURL)
		if err != nil {
			return fmt.Errorf("%w: fetch headlines for %s: %v", ErrUnavailable, symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("%w: headlines HTTP %d", ErrUnavailable, resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("%w: parse headlines page: %v", ErrUnavailable, err)
		}

		result = parseHeadlines(doc, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}

	nc.cache.Set("google_news", "headlines", cacheKey, result)
	return result, nil
}

func parseHeadlines(doc *goquery.Document, limit int) []models.Headline {
	var headlines []models.Headline

	doc.Find("article").EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			// Newer Google News layouts put the headline on the anchor.
			title = strings.TrimSpace(s.Find("a").Last().Text())
		}
		if title == "" {
			return true
		}

		href, _ := s.Find("a").First().Attr("href")
		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}

		publishedAt := time.Time{}
		if dt, ok := s.Find("time").Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, dt); err == nil {
				publishedAt = t
			}
		}

		headlines = append(headlines, models.Headline{
			Title:       title,
			Source:      source,
			URL:         cleanNewsURL(href),
			PublishedAt: publishedAt,
		})
		return len(headlines) < limit
	})

	return headlines
}

// cleanNewsURL resolves Google News relative links and redirect wrappers.
func cleanNewsURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "./") {
		return "https://news.google.com/" + strings.TrimPrefix(href, "./")
	}
	if strings.Contains(href, "url=") {
		parts := strings.SplitN(href, "url=", 2)
		if decoded, err := url.QueryUnescape(parts[1]); err == nil {
			return decoded
		}
	}
	return href
}
