package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// Scraper collects recent headlines mentioning a ticker from public
// financial news sites. It is the degraded-mode fallback when the
// sentiment API is unavailable.
type Scraper struct {
	sources   []source
	lexicon   *Lexicon
	timeout   time.Duration
	userAgent string
}

// source defines one scrapeable news site.
type source struct {
	Name       string
	BaseURL    string
	SearchPath string // "{symbol}" is replaced with the ticker
	Selectors  headlineSelectors
}

// headlineSelectors holds CSS selectors for extracting headlines.
type headlineSelectors struct {
	Container string
	Title     string
}

// NewScraper creates a headline scraper with default sources.
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	return &Scraper{
		sources:   defaultSources(),
		lexicon:   NewLexicon(),
		timeout:   timeout,
		userAgent: userAgent,
	}
}

func defaultSources() []source {
	return []source{
		{
			Name:       "Finviz",
			BaseURL:    "https://finviz.com",
			SearchPath: "/quote.ashx?t={symbol}",
			Selectors: headlineSelectors{
				Container: "tr.news-table-row",
				Title:     "a.tab-link-news",
			},
		},
		{
			Name:       "MarketWatch",
			BaseURL:    "https://www.marketwatch.com",
			SearchPath: "/investing/stock/{symbol}",
			Selectors: headlineSelectors{
				Container: "div.article__content",
				Title:     "a.link",
			},
		},
	}
}

// ScrapeHeadlines fetches headlines for a ticker and scores each one with
// the lexicon, returning them as news items. All sources failing is an
// error; partial coverage is not.
func (s *Scraper) ScrapeHeadlines(ctx context.Context, ticker string, maxItems int) ([]types.NewsItem, error) {
	logger.Info(ctx, "Starting headline scrape", "ticker", ticker, "sources", len(s.sources))

	items := []types.NewsItem{}
	failed := 0
	for _, src := range s.sources {
		if len(items) >= maxItems {
			break
		}
		headlines, err := s.scrapeSource(ctx, src, ticker, maxItems-len(items))
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", src.Name, "ticker", ticker)
			failed++
			continue
		}
		for _, headline := range headlines {
			items = append(items, types.NewsItem{
				Ticker:    ticker,
				Relevance: scrapedRelevance,
				Score:     s.lexicon.Score(headline),
			})
		}
	}

	if failed == len(s.sources) {
		return nil, fmt.Errorf("all %d news sources failed for %s", len(s.sources), ticker)
	}

	logger.Info(ctx, "Headline scrape completed", "ticker", ticker, "items", len(items))
	return items, nil
}

// scrapeSource collects headlines from a single site.
func (s *Scraper) scrapeSource(ctx context.Context, src source, ticker string, maxItems int) ([]string, error) {
	headlines := []string{}

	c := colly.NewCollector(
		colly.AllowedDomains(domainOf(src.BaseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.userAgent)
	})

	c.OnHTML(src.Selectors.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= maxItems {
			return
		}
		title := strings.TrimSpace(e.DOM.Find(src.Selectors.Title).First().Text())
		if title == "" {
			return
		}
		headlines = append(headlines, title)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", src.Name, "url", r.Request.URL.String())
	})

	searchURL := src.BaseURL + strings.ReplaceAll(src.SearchPath, "{symbol}", strings.ToUpper(ticker))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// ScoreDocument scores headlines out of a pre-fetched HTML document. Exists
// so the scoring path can be exercised without network access.
func (s *Scraper) ScoreDocument(doc *goquery.Document, sel headlineSelectors, ticker string, maxItems int) []types.NewsItem {
	items := []types.NewsItem{}
	doc.Find(sel.Container).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if len(items) >= maxItems {
			return false
		}
		title := strings.TrimSpace(el.Find(sel.Title).First().Text())
		if title == "" {
			return true
		}
		items = append(items, types.NewsItem{
			Ticker:    ticker,
			Relevance: scrapedRelevance,
			Score:     s.lexicon.Score(title),
		})
		return true
	})
	return items
}

// domainOf extracts the hostname from a URL.
func domainOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
