package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/metrics"
	"github.com/perion0x/trading-supervisor/internal/store"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// newRecorder gives each test its own registry so collectors never collide.
func newRecorder() *metrics.Recorder {
	return metrics.New(prometheus.NewRegistry())
}

// overboughtCloses drives the 14-period RSI to 80.
var overboughtCloses = []float64{100, 102, 101, 105, 107, 106, 110, 108, 112, 115, 113, 117, 119, 118, 121}

type fakePriceSource struct {
	points []types.PricePoint
	err    error
	calls  atomic.Int32
	// failFirst makes only the first call fail, for retry tests.
	failFirst bool
}

func (f *fakePriceSource) History(ctx context.Context, ticker string) ([]types.PricePoint, error) {
	n := f.calls.Add(1)
	if f.failFirst && n == 1 {
		return nil, errs.ToolUnavailable("transient", true, nil)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

type fakeNewsSource struct {
	items []types.NewsItem
	err   error
	delay time.Duration
}

func (f *fakeNewsSource) News(ctx context.Context, ticker string) ([]types.NewsItem, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func pricePoints(closes []float64) []types.PricePoint {
	points := make([]types.PricePoint, len(closes))
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		points[i] = types.PricePoint{Ts: base.AddDate(0, 0, i).Unix(), Price: c}
	}
	return points
}

func bearishItems(ticker string, n int) []types.NewsItem {
	items := make([]types.NewsItem, n)
	for i := range items {
		items[i] = types.NewsItem{Ticker: ticker, Relevance: 0.8, Score: -0.5}
	}
	return items
}

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Indicators.RSIPeriod = 14
	cfg.Orchestrator.MaxRetries = 1
	cfg.Orchestrator.InitialBackoffMS = 1
	cfg.Orchestrator.MaxBackoffMS = 5
	cfg.Orchestrator.BackoffFactor = 2.0
	cfg.Orchestrator.ToolTimeoutSeconds = 2
	cfg.Orchestrator.RequestTimeoutSeconds = 3
	return cfg
}

func TestHandleQueryFullAnalysis(t *testing.T) {
	prices := &fakePriceSource{points: pricePoints(overboughtCloses)}
	news := &fakeNewsSource{items: bearishItems("AAPL", 5)}
	sup := New(testConfig(), prices, news, newRecorder())

	rec, err := sup.HandleQuery(context.Background(), "Should I buy AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if rec.Ticker != "AAPL" {
		t.Errorf("ticker = %q", rec.Ticker)
	}
	if rec.Action != types.ActionSell {
		t.Errorf("action = %v, want SELL (overbought + bearish)", rec.Action)
	}
	if rec.Technical == nil || rec.Technical.Value != 80.0 {
		t.Errorf("technical = %+v, want RSI 80", rec.Technical)
	}
	if rec.Sentiment == nil || rec.Sentiment.Classification != types.SentimentBearish {
		t.Errorf("sentiment = %+v, want Bearish", rec.Sentiment)
	}
	if !strings.Contains(rec.Summary, "AAPL") {
		t.Errorf("summary does not name the ticker: %q", rec.Summary)
	}
}

func TestHandleQueryInvalidQuery(t *testing.T) {
	sup := New(testConfig(), &fakePriceSource{}, &fakeNewsSource{}, newRecorder())

	for _, q := range []string{"", "   ", "should i buy some stock?"} {
		_, err := sup.HandleQuery(context.Background(), q)
		if errs.CodeOf(err) != errs.CodeInvalidQuery {
			t.Errorf("HandleQuery(%q) code = %v, want INVALID_QUERY", q, errs.CodeOf(err))
		}
	}
}

func TestHandleQueryDegradedSentiment(t *testing.T) {
	prices := &fakePriceSource{points: pricePoints(overboughtCloses)}
	news := &fakeNewsSource{err: errs.ToolUnavailable("news API down", false, nil)}
	sup := New(testConfig(), prices, news, newRecorder())

	rec, err := sup.HandleQuery(context.Background(), "Should I buy AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if rec.Action != types.ActionSell || rec.Confidence != 0.60 {
		t.Errorf("got (%v, %v), want (SELL, 0.60)", rec.Action, rec.Confidence)
	}
	if rec.Sentiment != nil {
		t.Error("failed sentiment should carry no payload")
	}
	if !strings.Contains(rec.SentimentNote, "unavailable") {
		t.Errorf("sentiment note = %q", rec.SentimentNote)
	}
}

func TestHandleQueryBothToolsFailed(t *testing.T) {
	prices := &fakePriceSource{err: errs.ToolUnavailable("price API down", false, nil)}
	news := &fakeNewsSource{err: errs.ToolUnavailable("news API down", false, nil)}
	sup := New(testConfig(), prices, news, newRecorder())

	rec, err := sup.HandleQuery(context.Background(), "Should I buy AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if rec.Action != types.ActionError {
		t.Errorf("action = %v, want ERROR", rec.Action)
	}
	if rec.ErrorCode != string(errs.CodeBothToolsFailed) {
		t.Errorf("error code = %q", rec.ErrorCode)
	}
}

func TestHandleQueryRetriesTransientFailure(t *testing.T) {
	prices := &fakePriceSource{points: pricePoints(overboughtCloses), failFirst: true}
	news := &fakeNewsSource{items: bearishItems("AAPL", 5)}
	sup := New(testConfig(), prices, news, newRecorder())

	rec, err := sup.HandleQuery(context.Background(), "What does the RSI say about AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if got := prices.calls.Load(); got != 2 {
		t.Errorf("price source called %d times, want 2", got)
	}
	if rec.Technical == nil {
		t.Error("retry should have recovered the technical result")
	}
}

func TestHandleQueryToolSelection(t *testing.T) {
	prices := &fakePriceSource{points: pricePoints(overboughtCloses)}
	news := &fakeNewsSource{items: bearishItems("AAPL", 5)}
	sup := New(testConfig(), prices, news, newRecorder())

	// A purely technical question skips the sentiment tool entirely.
	rec, err := sup.HandleQuery(context.Background(), "Is AAPL overbought on the RSI chart?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if rec.Sentiment != nil {
		t.Error("sentiment should not have been dispatched")
	}
	if rec.SentimentNote != "sentiment analysis not requested" {
		t.Errorf("sentiment note = %q", rec.SentimentNote)
	}
	if rec.Technical == nil {
		t.Error("technical result missing")
	}
}

func TestHandleQueryRequestDeadline(t *testing.T) {
	cfg := testConfig()
	cfg.Orchestrator.ToolTimeoutSeconds = 1
	cfg.Orchestrator.RequestTimeoutSeconds = 1
	cfg.Orchestrator.MaxRetries = 0

	prices := &fakePriceSource{points: pricePoints(overboughtCloses)}
	news := &fakeNewsSource{items: bearishItems("AAPL", 5), delay: 5 * time.Second}
	sup := New(cfg, prices, news, newRecorder())

	start := time.Now()
	rec, err := sup.HandleQuery(context.Background(), "Should I buy AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("request ran %v past its deadline", elapsed)
	}

	// Technical completed in time; sentiment did not.
	if rec.Technical == nil {
		t.Error("technical result missing")
	}
	if rec.Sentiment != nil {
		t.Error("timed-out sentiment should carry no payload")
	}
	if rec.Action != types.ActionSell {
		t.Errorf("action = %v, want SELL from technicals alone", rec.Action)
	}
}

func TestHandleQueryUnstructuredToolError(t *testing.T) {
	cfg := testConfig()
	cfg.Orchestrator.MaxRetries = 0

	prices := &fakePriceSource{err: errors.New("connection reset")}
	news := &fakeNewsSource{items: bearishItems("AAPL", 5)}
	sup := New(cfg, prices, news, newRecorder())

	rec, err := sup.HandleQuery(context.Background(), "Should I buy AAPL?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if rec.Technical != nil {
		t.Error("failed technical should carry no payload")
	}
	if rec.Action != types.ActionSell {
		t.Errorf("action = %v, want SELL from bearish sentiment alone", rec.Action)
	}
}
