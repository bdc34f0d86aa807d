package ta

import (
	"math"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// DefaultPeriod is the standard RSI lookback.
const DefaultPeriod = 14

const (
	overboughtThreshold = 70.0
	oversoldThreshold   = 30.0
)

// RSI computes the relative strength index over the trailing period using
// simple (unsmoothed) averages of gains and losses. Returns NaN when fewer
// than period+1 closes are supplied. A window with zero total loss is
// defined as 100, so the value stays in [0, 100] for finite inputs.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// Classify maps an RSI value to its discrete signal. The comparisons are
// strict, so exactly 70 and exactly 30 are Neutral.
func Classify(value float64) types.Signal {
	switch {
	case value > overboughtThreshold:
		return types.SignalOverbought
	case value < oversoldThreshold:
		return types.SignalOversold
	default:
		return types.SignalNeutral
	}
}

// Compute runs the indicator engine over a chronological price series.
// Requires at least period+1 points (period deltas plus one anchor); fewer
// fail with an insufficient-data error. Pure function of its input.
func Compute(prices []types.PricePoint, period int) (*types.IndicatorResult, error) {
	if period <= 0 {
		period = DefaultPeriod
	}
	if len(prices) < period+1 {
		return nil, errs.InsufficientData(
			"need at least %d price points for a %d-period indicator, got %d",
			period+1, period, len(prices))
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Price
	}

	value := RSI(closes, period)
	if math.IsNaN(value) {
		return nil, errs.InsufficientData("indicator undefined for the supplied series")
	}

	current := closes[len(closes)-1]
	change := current - closes[len(closes)-2]

	return &types.IndicatorResult{
		Value:        value,
		Signal:       Classify(value),
		CurrentPrice: current,
		PeriodChange: change,
		Timestamp:    time.Now().UTC(),
	}, nil
}
