package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
)

func dailySeriesJSON(bars map[string]float64) string {
	var b strings.Builder
	b.WriteString(`{"Time Series (Daily)": {`)
	first := true
	for date, close := range bars {
		if !first {
			b.WriteString(",")
		}
		first = false
		fmt.Fprintf(&b, `%q: {"1. open": "0", "2. high": "0", "3. low": "0", "4. close": "%.2f", "5. volume": "100"}`, date, close)
	}
	b.WriteString("}}")
	return b.String()
}

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ts.URL, "testkey", 2*time.Second)
}

func TestHistoryParsesAndSortsSeries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_DAILY" {
			t.Errorf("function = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, dailySeriesJSON(map[string]float64{
			"2026-08-28": 121,
			"2026-08-26": 101,
			"2026-08-27": 111,
		}))
	}))
	defer ts.Close()

	points, err := newTestClient(ts).History(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Ts <= points[i-1].Ts {
			t.Fatalf("points not chronological: %v", points)
		}
	}
	if points[0].Price != 101 || points[2].Price != 121 {
		t.Errorf("closes out of order: %v", points)
	}
}

func TestHistoryAPIErrorIsPermanent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Error Message": "Invalid API call"}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).History(context.Background(), "ZZZZZ")
	if err == nil {
		t.Fatal("expected error")
	}
	if errs.IsRetryable(err) {
		t.Error("API rejection should not be retryable")
	}
}

func TestHistoryRateLimitIsRetryable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).History(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errs.IsRetryable(err) {
		t.Error("rate limit should be retryable")
	}
}

func TestHistoryServerErrorIsRetryable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).History(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errs.IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestHistoryEmptySeries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Time Series (Daily)": {}}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).History(context.Background(), "AAPL")
	if errs.CodeOf(err) != errs.CodeInsufficientData {
		t.Fatalf("code = %v, want INSUFFICIENT_DATA", errs.CodeOf(err))
	}
}

func TestHistoryConnectionFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	_, err := newTestClient(ts).History(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errs.IsRetryable(err) {
		t.Error("network failure should be retryable")
	}
}
