package types

import "time"

// PricePoint is one observation in a chronological daily close series.
type PricePoint struct {
	Ts    int64   `json:"ts"`
	Price float64 `json:"price"`
}

// NewsItem is a single scored news mention of a ticker, as supplied by a
// news collaborator. Score is in [-1, 1], Relevance in [0, 1].
type NewsItem struct {
	Ticker    string  `json:"ticker"`
	Relevance float64 `json:"relevance"`
	Score     float64 `json:"score"`
}

type Signal string

const (
	SignalOverbought Signal = "Overbought"
	SignalOversold   Signal = "Oversold"
	SignalNeutral    Signal = "Neutral"
)

type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "Bullish"
	SentimentBearish SentimentLabel = "Bearish"
)

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionError Action = "ERROR"
)

// Tool identifies one of the two analysis paths the supervisor can dispatch.
type Tool string

const (
	ToolTechnical Tool = "technical"
	ToolSentiment Tool = "sentiment"
)

// IndicatorResult is the output of one Indicator Engine run. Immutable once
// returned; Value is always in [0, 100].
type IndicatorResult struct {
	Value        float64   `json:"value"`
	Signal       Signal    `json:"signal"`
	CurrentPrice float64   `json:"current_price"`
	PeriodChange float64   `json:"period_change"`
	Timestamp    time.Time `json:"timestamp"`
}

// SentimentResult is the output of one Sentiment Aggregator run. Immutable
// once produced; identical item sets always yield identical classification,
// confidence and rationale.
type SentimentResult struct {
	Classification SentimentLabel `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Rationale      string         `json:"rationale"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Recommendation is the caller-facing envelope, produced once per query.
// Technical and Sentiment are each either a complete result or nil with the
// matching note explaining the failure.
type Recommendation struct {
	Ticker        string           `json:"ticker"`
	Action        Action           `json:"action"`
	Confidence    float64          `json:"confidence"`
	Technical     *IndicatorResult `json:"technical,omitempty"`
	TechnicalNote string           `json:"technical_note,omitempty"`
	Sentiment     *SentimentResult `json:"sentiment,omitempty"`
	SentimentNote string           `json:"sentiment_note,omitempty"`
	Summary       string           `json:"summary"`
	Timestamp     time.Time        `json:"timestamp"`
	ErrorCode     string           `json:"error_code,omitempty"`
}
