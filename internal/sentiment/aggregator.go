package sentiment

import (
	"fmt"
	"math"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/types"
)

const (
	baseConfidence      = 0.5
	magnitudeWeight     = 0.3
	itemCountWeight     = 0.15
	itemCountSaturation = 10.0
	maxConfidence       = 0.95
)

// Aggregate reduces a set of scored news items into a single sentiment
// classification. The mean is relevance-weighted and the computation is
// fully deterministic for a fixed item set; only the timestamp varies
// between runs.
//
// A mean of exactly zero classifies as Bearish: absence of positive signal
// is not treated as bullish.
func Aggregate(ticker string, items []types.NewsItem) (*types.SentimentResult, error) {
	if len(items) == 0 {
		return nil, errs.InsufficientData("no news items available for %s", ticker)
	}

	sum := 0.0
	for _, item := range items {
		sum += item.Score * item.Relevance
	}
	mean := sum / float64(len(items))

	classification := types.SentimentBearish
	tone := "negative"
	if mean > 0 {
		classification = types.SentimentBullish
		tone = "positive"
	}

	confidence := baseConfidence +
		math.Abs(mean)*magnitudeWeight +
		math.Min(float64(len(items))/itemCountSaturation, 1.0)*itemCountWeight
	confidence = math.Min(confidence, maxConfidence)
	confidence = math.Round(confidence*100) / 100

	rationale := fmt.Sprintf(
		"Based on %d recent news items, average weighted sentiment score is %.3f (%s)",
		len(items), mean, tone)

	return &types.SentimentResult{
		Classification: classification,
		Confidence:     confidence,
		Rationale:      rationale,
		Timestamp:      time.Now().UTC(),
	}, nil
}
