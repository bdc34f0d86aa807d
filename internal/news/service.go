package news

import (
	"context"
	"time"

	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/store"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// Service provides ticker news items, preferring the sentiment API and
// falling back to headline scraping when the API fails. It holds no
// per-request state, so one instance serves concurrent requests.
type Service struct {
	client         *Client
	scraper        *Scraper
	limit          int
	scrapeFallback bool
}

// NewService creates a news service from configuration.
func NewService(cfg *store.Config) *Service {
	timeout := time.Duration(cfg.News.TimeoutSeconds) * time.Second
	return &Service{
		client:         NewClient(cfg.News.BaseURL, cfg.NewsAPIKey(), cfg.News.Limit, timeout),
		scraper:        NewScraper(timeout, cfg.News.ScrapeUserAgent),
		limit:          cfg.News.Limit,
		scrapeFallback: cfg.News.ScrapeFallback,
	}
}

// News fetches news items for a ticker. The API is the primary source;
// when it fails and scraping is enabled, scored headlines stand in. The
// original API error is returned when the fallback also comes up empty,
// since it names the root cause.
func (s *Service) News(ctx context.Context, ticker string) ([]types.NewsItem, error) {
	items, err := s.client.News(ctx, ticker)
	if err == nil {
		return items, nil
	}

	if !s.scrapeFallback {
		return nil, err
	}

	logger.Warn(ctx, "News API failed, falling back to headline scrape", "ticker", ticker, "error", err.Error())
	scraped, scrapeErr := s.scraper.ScrapeHeadlines(ctx, ticker, s.limit)
	if scrapeErr != nil || len(scraped) == 0 {
		return nil, err
	}
	return scraped, nil
}
