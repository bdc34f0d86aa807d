package news

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// Client fetches ticker-scoped news sentiment from the Alpha Vantage
// NEWS_SENTIMENT endpoint.
type Client struct {
	http   *resty.Client
	apiKey string
	limit  int
}

// newsFeedResponse mirrors the NEWS_SENTIMENT payload. Numeric fields
// arrive as strings.
type newsFeedResponse struct {
	Feed []struct {
		Title           string `json:"title"`
		TimePublished   string `json:"time_published"`
		TickerSentiment []struct {
			Ticker         string `json:"ticker"`
			RelevanceScore string `json:"relevance_score"`
			SentimentScore string `json:"ticker_sentiment_score"`
		} `json:"ticker_sentiment"`
	} `json:"feed"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// NewClient creates a news API client.
func NewClient(baseURL, apiKey string, limit int, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		apiKey: apiKey,
		limit:  limit,
	}
}

// News returns recent news items mentioning the ticker, each carrying the
// provider's per-ticker relevance and sentiment scores.
func (c *Client) News(ctx context.Context, ticker string) ([]types.NewsItem, error) {
	var out newsFeedResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "NEWS_SENTIMENT",
			"tickers":  ticker,
			"limit":    strconv.Itoa(c.limit),
			"apikey":   c.apiKey,
		}).
		SetResult(&out).
		Get("")
	if err != nil {
		return nil, errs.ToolUnavailable("news API request failed", true, err)
	}

	if !resp.IsSuccess() {
		retryable := resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		return nil, errs.ToolUnavailable("news API returned HTTP "+strconv.Itoa(resp.StatusCode()), retryable, nil)
	}

	if out.ErrorMessage != "" {
		return nil, errs.ToolUnavailable("news API rejected request: "+out.ErrorMessage, false, nil)
	}
	if out.Note != "" || out.Information != "" {
		return nil, errs.ToolUnavailable("news API rate limit reached", true, nil)
	}

	items := c.toNewsItems(ticker, out)
	logger.Debug(ctx, "Fetched news sentiment", "ticker", ticker, "articles", len(out.Feed), "items", len(items))
	return items, nil
}

// toNewsItems extracts the entries scoped to the requested ticker. Articles
// that mention the ticker with an unparseable score are skipped rather than
// failing the whole fetch.
func (c *Client) toNewsItems(ticker string, out newsFeedResponse) []types.NewsItem {
	items := make([]types.NewsItem, 0, len(out.Feed))
	for _, article := range out.Feed {
		for _, ts := range article.TickerSentiment {
			if ts.Ticker != ticker {
				continue
			}
			relevance, err := strconv.ParseFloat(ts.RelevanceScore, 64)
			if err != nil {
				continue
			}
			score, err := strconv.ParseFloat(ts.SentimentScore, 64)
			if err != nil {
				continue
			}
			items = append(items, types.NewsItem{
				Ticker:    ticker,
				Relevance: relevance,
				Score:     score,
			})
		}
	}
	return items
}
