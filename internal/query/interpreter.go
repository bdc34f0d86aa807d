package query

import (
	"regexp"
	"strings"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/types"
)

const maxQueryLen = 1000

var tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// stopwords are uppercase tokens that look like tickers but are ordinary
// query words: connectors, imperative trading verbs, and the keyword tokens
// that drive tool selection.
var stopwords = map[string]struct{}{
	"I": {}, "A": {}, "THE": {}, "AND": {}, "OR": {}, "BUT": {},
	"FOR": {}, "TO": {}, "OF": {}, "IN": {}, "ON": {}, "AT": {}, "BY": {},
	"IS": {}, "IT": {}, "DO": {}, "MY": {}, "ME": {},
	"BUY": {}, "SELL": {}, "HOLD": {},
	"RSI": {}, "NEWS": {},
}

var technicalKeywords = []string{
	"rsi", "technical", "price", "momentum", "overbought", "oversold",
	"indicator", "chart", "trend", "support", "resistance",
}

var sentimentKeywords = []string{
	"sentiment", "news", "bullish", "bearish", "opinion", "feeling",
	"buzz", "hype", "pessimistic", "optimistic",
}

// Result is the interpretation of one free-text query.
type Result struct {
	Ticker string
	Tools  []types.Tool
}

// Normalize trims and bounds a raw query string.
func Normalize(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", errs.InvalidQuery("query cannot be empty")
	}
	if len(q) > maxQueryLen {
		return "", errs.InvalidQuery("query too long: %d characters, maximum is %d", len(q), maxQueryLen)
	}
	return q, nil
}

// Interpret extracts the ticker symbol and decides which analysis tools the
// query implies. Candidates are uppercase tokens of 1-5 letters; stoplisted
// words are dropped and the first survivor in left-to-right order wins.
func Interpret(q string) (Result, error) {
	ticker := extractTicker(q)
	if ticker == "" {
		return Result{}, errs.InvalidQuery("no ticker symbol found in query")
	}
	return Result{Ticker: ticker, Tools: selectTools(q)}, nil
}

func extractTicker(q string) string {
	for _, candidate := range tickerPattern.FindAllString(q, -1) {
		if _, stop := stopwords[candidate]; !stop {
			return candidate
		}
	}
	return ""
}

// selectTools scans for the two fixed keyword sets. Only one set present
// narrows the dispatch to that tool; both, neither, or a generic phrasing
// select the comprehensive default.
func selectTools(q string) []types.Tool {
	lower := strings.ToLower(q)

	hasTechnical := containsAny(lower, technicalKeywords)
	hasSentiment := containsAny(lower, sentimentKeywords)

	switch {
	case hasTechnical && !hasSentiment:
		return []types.Tool{types.ToolTechnical}
	case hasSentiment && !hasTechnical:
		return []types.Tool{types.ToolSentiment}
	default:
		return []types.Tool{types.ToolTechnical, types.ToolSentiment}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
