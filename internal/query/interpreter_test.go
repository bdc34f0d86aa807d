package query

import (
	"strings"
	"testing"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/types"
)

func hasTool(tools []types.Tool, want types.Tool) bool {
	for _, tool := range tools {
		if tool == want {
			return true
		}
	}
	return false
}

func TestNormalize(t *testing.T) {
	if _, err := Normalize("   "); err == nil {
		t.Error("expected error for whitespace-only query")
	}
	if _, err := Normalize(strings.Repeat("x", 1001)); err == nil {
		t.Error("expected error for oversized query")
	}
	got, err := Normalize("  Analyze AAPL  ")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "Analyze AAPL" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestExtractTickerStoplist(t *testing.T) {
	res, err := Interpret("Should I buy AAPL?")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if res.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", res.Ticker)
	}
}

func TestExtractTickerUppercaseVerbStoplisted(t *testing.T) {
	res, err := Interpret("BUY TSLA now?")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if res.Ticker != "TSLA" {
		t.Errorf("ticker = %q, want TSLA", res.Ticker)
	}
}

func TestExtractTickerFirstWins(t *testing.T) {
	res, err := Interpret("Compare MSFT against GOOG")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if res.Ticker != "MSFT" {
		t.Errorf("ticker = %q, want MSFT (first candidate)", res.Ticker)
	}
}

func TestInterpretNoTicker(t *testing.T) {
	_, err := Interpret("should i buy something today")
	if err == nil {
		t.Fatal("expected error for ticker-less query")
	}
	if errs.CodeOf(err) != errs.CodeInvalidQuery {
		t.Fatalf("code = %v, want INVALID_QUERY", errs.CodeOf(err))
	}
}

func TestSelectToolsComprehensiveDefault(t *testing.T) {
	res, err := Interpret("Analyze AAPL")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if !hasTool(res.Tools, types.ToolTechnical) || !hasTool(res.Tools, types.ToolSentiment) {
		t.Errorf("tools = %v, want both", res.Tools)
	}
}

func TestSelectToolsTechnicalOnly(t *testing.T) {
	for _, q := range []string{
		"What is the RSI for AAPL?",
		"Show me AAPL momentum",
		"Is IBM overbought?",
	} {
		res, err := Interpret(q)
		if err != nil {
			t.Fatalf("Interpret(%q): %v", q, err)
		}
		if len(res.Tools) != 1 || res.Tools[0] != types.ToolTechnical {
			t.Errorf("Interpret(%q).Tools = %v, want [technical]", q, res.Tools)
		}
	}
}

func TestSelectToolsSentimentOnly(t *testing.T) {
	for _, q := range []string{
		"What is the news saying about TSLA?",
		"Is the market bullish on NVDA?",
	} {
		res, err := Interpret(q)
		if err != nil {
			t.Fatalf("Interpret(%q): %v", q, err)
		}
		if len(res.Tools) != 1 || res.Tools[0] != types.ToolSentiment {
			t.Errorf("Interpret(%q).Tools = %v, want [sentiment]", q, res.Tools)
		}
	}
}

func TestSelectToolsBothKeywordSets(t *testing.T) {
	res, err := Interpret("Check AAPL momentum and the latest news")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(res.Tools) != 2 {
		t.Errorf("tools = %v, want both when both keyword sets appear", res.Tools)
	}
}
