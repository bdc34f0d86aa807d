package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// dailySeriesResponse mirrors the Alpha Vantage TIME_SERIES_DAILY payload.
// The Note and Information fields carry rate-limit notices; ErrorMessage
// carries permanent request errors.
type dailySeriesResponse struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	TimeSeries   map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

// Client fetches daily price history from Alpha Vantage.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient creates a price history client. baseURL is configurable so
// tests can point it at a local server.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{http: httpClient, apiKey: apiKey}
}

// History returns the daily close series for a ticker, oldest first.
// Failures are classified so the orchestrator's retry policy can tell
// transient conditions (rate limits, server errors) from permanent ones.
func (c *Client) History(ctx context.Context, ticker string) ([]types.PricePoint, error) {
	var result dailySeriesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "TIME_SERIES_DAILY",
			"symbol":   ticker,
			"apikey":   c.apiKey,
		}).
		SetResult(&result).
		Get("")
	if err != nil {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history request for %s failed", ticker), true, err)
	}

	if resp.StatusCode() == 429 || resp.StatusCode() >= 500 {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history service returned status %d", resp.StatusCode()), true, nil)
	}
	if !resp.IsSuccess() {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history service returned status %d", resp.StatusCode()), false, nil)
	}

	if result.ErrorMessage != "" {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history rejected for %s: %s", ticker, result.ErrorMessage), false, nil)
	}
	if result.Note != "" || result.Information != "" {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history rate limited for %s", ticker), true, nil)
	}
	if len(result.TimeSeries) == 0 {
		return nil, errs.InsufficientData("no price history returned for %s", ticker)
	}

	points, err := toPricePoints(result)
	if err != nil {
		return nil, errs.ToolUnavailable(
			fmt.Sprintf("price history for %s is malformed", ticker), false, err)
	}

	logger.Debug(ctx, "price history fetched", "ticker", ticker, "points", len(points))
	return points, nil
}

func toPricePoints(result dailySeriesResponse) ([]types.PricePoint, error) {
	points := make([]types.PricePoint, 0, len(result.TimeSeries))
	for date, bar := range result.TimeSeries {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("bad series date %q: %w", date, err)
		}
		price, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("bad close %q on %s: %w", bar.Close, date, err)
		}
		points = append(points, types.PricePoint{Ts: ts.Unix(), Price: price})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Ts < points[j].Ts })
	return points, nil
}
