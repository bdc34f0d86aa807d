package supervisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/types"
)

// Confidence levels for the combined decision matrix and the degraded
// single-signal modes.
const (
	agreementConfidence   = 0.80
	sentimentLedConfident = 0.65
	conflictConfidence    = 0.50

	technicalOnlyActConfidence  = 0.60
	technicalOnlyHoldConfidence = 0.50
	sentimentOnlyDiscount       = 0.80
)

// toolOutcome carries one tool's result or failure into synthesis.
type toolOutcome struct {
	requested bool
	technical *types.IndicatorResult
	sentiment *types.SentimentResult
	err       error
}

// synthesize combines whatever signals survived into a recommendation.
// Both signals present uses the full decision matrix; one signal present
// degrades to a lower-confidence single-signal call; none present yields
// an ERROR recommendation.
func synthesize(ticker string, technical, sentimentOut toolOutcome) *types.Recommendation {
	rec := &types.Recommendation{
		Ticker:    ticker,
		Timestamp: time.Now().UTC(),
	}

	if technical.requested {
		if technical.err != nil {
			rec.TechnicalNote = "technical analysis unavailable: " + technical.err.Error()
		} else {
			rec.Technical = technical.technical
		}
	} else {
		rec.TechnicalNote = "technical analysis not requested"
	}

	if sentimentOut.requested {
		if sentimentOut.err != nil {
			rec.SentimentNote = "sentiment analysis unavailable: " + sentimentOut.err.Error()
		} else {
			rec.Sentiment = sentimentOut.sentiment
		}
	} else {
		rec.SentimentNote = "sentiment analysis not requested"
	}

	switch {
	case rec.Technical != nil && rec.Sentiment != nil:
		combine(rec)
	case rec.Technical != nil:
		technicalOnly(rec)
	case rec.Sentiment != nil:
		sentimentOnly(rec)
	default:
		rec.Action = types.ActionError
		rec.ErrorCode = string(errs.CodeBothToolsFailed)
		rec.Confidence = 0
		rec.Summary = fmt.Sprintf("Unable to analyze %s: no analysis tool produced a result.", ticker)
	}

	return rec
}

// combine applies the full decision matrix over (momentum signal,
// sentiment classification) pairs. Agreement between the signals earns
// the highest base confidence, sentiment-led calls on neutral momentum a
// middle one, and conflicting signals fall back to HOLD.
func combine(rec *types.Recommendation) {
	tech := rec.Technical
	sent := rec.Sentiment

	type pair struct {
		signal types.Signal
		label  types.SentimentLabel
	}

	var base float64
	switch (pair{tech.Signal, sent.Classification}) {
	case pair{types.SignalOverbought, types.SentimentBearish}:
		rec.Action = types.ActionSell
		base = agreementConfidence
	case pair{types.SignalOversold, types.SentimentBullish}:
		rec.Action = types.ActionBuy
		base = agreementConfidence
	case pair{types.SignalNeutral, types.SentimentBullish}:
		rec.Action = types.ActionBuy
		base = sentimentLedConfident
	case pair{types.SignalNeutral, types.SentimentBearish}:
		rec.Action = types.ActionSell
		base = sentimentLedConfident
	default:
		// Overbought+Bullish and Oversold+Bearish: signals disagree.
		rec.Action = types.ActionHold
		base = conflictConfidence
	}

	rec.Confidence = round2((base + sent.Confidence) / 2)
	rec.Summary = fmt.Sprintf("%s: RSI %.1f (%s) with %s news sentiment (confidence %.2f); recommend %s.",
		rec.Ticker, tech.Value, strings.ToLower(string(tech.Signal)),
		strings.ToLower(string(sent.Classification)), sent.Confidence, rec.Action)
}

// technicalOnly decides from momentum alone.
func technicalOnly(rec *types.Recommendation) {
	tech := rec.Technical
	switch tech.Signal {
	case types.SignalOverbought:
		rec.Action = types.ActionSell
		rec.Confidence = technicalOnlyActConfidence
	case types.SignalOversold:
		rec.Action = types.ActionBuy
		rec.Confidence = technicalOnlyActConfidence
	default:
		rec.Action = types.ActionHold
		rec.Confidence = technicalOnlyHoldConfidence
	}
	rec.Summary = fmt.Sprintf("%s: RSI %.1f (%s); sentiment unavailable, recommend %s on technicals alone.",
		rec.Ticker, tech.Value, strings.ToLower(string(tech.Signal)), rec.Action)
}

// sentimentOnly decides from news sentiment alone, discounted for the
// missing momentum confirmation.
func sentimentOnly(rec *types.Recommendation) {
	sent := rec.Sentiment
	if sent.Classification == types.SentimentBullish {
		rec.Action = types.ActionBuy
	} else {
		rec.Action = types.ActionSell
	}
	rec.Confidence = round2(sent.Confidence * sentimentOnlyDiscount)
	rec.Summary = fmt.Sprintf("%s: %s news sentiment (confidence %.2f); technicals unavailable, recommend %s on sentiment alone.",
		rec.Ticker, strings.ToLower(string(sent.Classification)), sent.Confidence, rec.Action)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
