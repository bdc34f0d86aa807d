package supervisor

import (
	"context"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/interfaces"
	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/metrics"
	"github.com/perion0x/trading-supervisor/internal/query"
	"github.com/perion0x/trading-supervisor/internal/retry"
	"github.com/perion0x/trading-supervisor/internal/sentiment"
	"github.com/perion0x/trading-supervisor/internal/store"
	"github.com/perion0x/trading-supervisor/internal/ta"
	"github.com/perion0x/trading-supervisor/internal/trace"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// Supervisor orchestrates one query end to end: interpret, dispatch the
// analysis tools concurrently, and synthesize a recommendation. It holds
// no mutable state between requests.
type Supervisor struct {
	prices    interfaces.PriceSource
	news      interfaces.NewsSource
	recorder  *metrics.Recorder
	policy    retry.Policy
	rsiPeriod int

	toolTimeout    time.Duration
	requestTimeout time.Duration
}

// toolResult is one tool's contribution, sent back over the fan-in channel.
type toolResult struct {
	tool      types.Tool
	technical *types.IndicatorResult
	sentiment *types.SentimentResult
	err       error
}

// New wires a supervisor from its collaborators and configuration.
func New(cfg *store.Config, prices interfaces.PriceSource, news interfaces.NewsSource, recorder *metrics.Recorder) *Supervisor {
	if recorder == nil {
		recorder = metrics.New(nil)
	}
	return &Supervisor{
		prices:   prices,
		news:     news,
		recorder: recorder,
		policy: retry.Policy{
			MaxRetries:    cfg.Orchestrator.MaxRetries,
			InitialDelay:  cfg.InitialBackoff(),
			MaxDelay:      cfg.MaxBackoff(),
			BackoffFactor: cfg.Orchestrator.BackoffFactor,
		},
		rsiPeriod:      cfg.Indicators.RSIPeriod,
		toolTimeout:    cfg.ToolTimeout(),
		requestTimeout: cfg.RequestTimeout(),
	}
}

// HandleQuery processes a natural-language query into a recommendation.
// Invalid queries return an error before any tool is dispatched; tool
// failures degrade the recommendation instead of failing the call.
func (s *Supervisor) HandleQuery(ctx context.Context, rawQuery string) (*types.Recommendation, error) {
	start := time.Now()
	defer func() {
		s.recorder.RecordRequestDuration(time.Since(start).Seconds())
	}()

	normalized, err := query.Normalize(rawQuery)
	if err != nil {
		return nil, err
	}
	parsed, err := query.Interpret(normalized)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	ctx, span := trace.StartSpan(ctx, "supervisor.handle_query")
	defer span.End()

	logger.Info(ctx, "Dispatching analysis tools", "ticker", parsed.Ticker, "tools", len(parsed.Tools))

	technical, sentimentOut := s.dispatch(ctx, parsed.Ticker, parsed.Tools)

	rec := synthesize(parsed.Ticker, technical, sentimentOut)
	s.recorder.RecordQuery(string(rec.Action))
	logger.Recommendation(ctx, rec.Ticker, string(rec.Action), rec.Confidence, rec.Summary,
		"duration_ms", time.Since(start).Milliseconds())

	return rec, nil
}

// dispatch fans the requested tools out to goroutines and collects their
// results. The channel is buffered to tool count, so a tool finishing after
// the request deadline parks its result there and leaks nothing.
func (s *Supervisor) dispatch(ctx context.Context, ticker string, tools []types.Tool) (technical, sentimentOut toolOutcome) {
	results := make(chan toolResult, len(tools))

	for _, tool := range tools {
		switch tool {
		case types.ToolTechnical:
			technical.requested = true
			go s.runTechnical(ctx, ticker, results)
		case types.ToolSentiment:
			sentimentOut.requested = true
			go s.runSentiment(ctx, ticker, results)
		}
	}

	pending := len(tools)
	for pending > 0 {
		select {
		case res := <-results:
			pending--
			switch res.tool {
			case types.ToolTechnical:
				technical.technical = res.technical
				technical.err = res.err
			case types.ToolSentiment:
				sentimentOut.sentiment = res.sentiment
				sentimentOut.err = res.err
			}
			if res.err != nil {
				s.recorder.RecordToolFailure(string(res.tool), string(errs.CodeOf(res.err)))
				logger.Warn(ctx, "Analysis tool failed", "tool", string(res.tool), "ticker", ticker, "error", res.err.Error())
			}
		case <-ctx.Done():
			// Request deadline: everything still outstanding counts as
			// failed. Late arrivals are discarded.
			deadline := errs.ToolUnavailable("analysis timed out", false, ctx.Err())
			if technical.requested && technical.technical == nil && technical.err == nil {
				technical.err = deadline
				s.recorder.RecordToolFailure(string(types.ToolTechnical), string(errs.CodeToolUnavailable))
			}
			if sentimentOut.requested && sentimentOut.sentiment == nil && sentimentOut.err == nil {
				sentimentOut.err = deadline
				s.recorder.RecordToolFailure(string(types.ToolSentiment), string(errs.CodeToolUnavailable))
			}
			logger.Warn(ctx, "Request deadline reached with tools outstanding", "ticker", ticker, "outstanding", pending)
			return technical, sentimentOut
		}
	}

	return technical, sentimentOut
}

// runTechnical fetches price history with retries and computes the momentum
// indicator.
func (s *Supervisor) runTechnical(ctx context.Context, ticker string, results chan<- toolResult) {
	start := time.Now()
	defer func() {
		s.recorder.RecordToolDuration(string(types.ToolTechnical), time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.toolTimeout)
	defer cancel()
	ctx, span := trace.StartSpan(ctx, "tool.technical")
	defer span.End()

	var prices []types.PricePoint
	err := s.policy.Do(ctx, "fetch_price_history", func(ctx context.Context) error {
		var fetchErr error
		prices, fetchErr = s.prices.History(ctx, ticker)
		return fetchErr
	})
	if err != nil {
		results <- toolResult{tool: types.ToolTechnical, err: err}
		return
	}

	indicator, err := ta.Compute(prices, s.rsiPeriod)
	results <- toolResult{tool: types.ToolTechnical, technical: indicator, err: err}
}

// runSentiment fetches news items with retries and aggregates them into a
// sentiment classification.
func (s *Supervisor) runSentiment(ctx context.Context, ticker string, results chan<- toolResult) {
	start := time.Now()
	defer func() {
		s.recorder.RecordToolDuration(string(types.ToolSentiment), time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.toolTimeout)
	defer cancel()
	ctx, span := trace.StartSpan(ctx, "tool.sentiment")
	defer span.End()

	var items []types.NewsItem
	err := s.policy.Do(ctx, "fetch_news", func(ctx context.Context) error {
		var fetchErr error
		items, fetchErr = s.news.News(ctx, ticker)
		return fetchErr
	})
	if err != nil {
		results <- toolResult{tool: types.ToolSentiment, err: err}
		return
	}

	result, err := sentiment.Aggregate(ticker, items)
	results <- toolResult{tool: types.ToolSentiment, sentiment: result, err: err}
}
