package news

import (
	"strings"
	"unicode"
)

// Lexicon scores headline text using financial sentiment word lists
// (Loughran-McDonald style). Used when the news API is unavailable and
// only scraped headlines are on hand.
type Lexicon struct {
	positiveWords map[string]bool
	negativeWords map[string]bool
}

// scrapedRelevance is the relevance assigned to scraped headlines. Headlines
// come from a ticker-scoped search page, so they are moderately relevant but
// carry no per-article relevance signal the way the API does.
const scrapedRelevance = 0.5

// NewLexicon creates a headline sentiment lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{
		positiveWords: loadPositiveWords(),
		negativeWords: loadNegativeWords(),
	}
}

// Score rates a headline in [-1, 1]: the net balance of positive vs negative
// words over all sentiment-bearing words. A headline with no sentiment words
// scores 0.
func (l *Lexicon) Score(headline string) float64 {
	words := tokenize(strings.ToLower(headline))

	positive, negative := 0, 0
	for _, word := range words {
		if l.positiveWords[word] {
			positive++
		}
		if l.negativeWords[word] {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func loadPositiveWords() map[string]bool {
	words := []string{
		"achieve", "attain", "beat", "beats", "benefit", "better", "boost",
		"bullish", "competitive", "delight", "enhance", "excellent",
		"exceptional", "extraordinary", "favorable", "gain", "gains", "good",
		"great", "grew", "growth", "improve", "improved", "improvement",
		"increasing", "innovation", "innovative", "jump", "jumps", "leader",
		"leading", "opportunity", "optimal", "optimistic", "outperform",
		"positive", "profit", "profitable", "progress", "prosper", "rally",
		"rallies", "record", "remarkable", "rise", "rises", "robust", "soar",
		"soars", "solid", "strength", "strong", "succeed", "success",
		"successful", "superior", "surge", "surges", "surpass", "tremendous",
		"upbeat", "upgrade", "upgraded", "valuable", "winning",
	}
	m := make(map[string]bool)
	for _, w := range words {
		m[w] = true
	}
	return m
}

func loadNegativeWords() map[string]bool {
	words := []string{
		"abandon", "adverse", "bearish", "challenge", "challenging", "concern",
		"concerns", "crash", "crashes", "crisis", "damage", "debt", "decline",
		"declines", "decrease", "deficit", "deteriorate", "difficult",
		"difficulty", "disappoint", "disappointing", "disadvantage",
		"downgrade", "downgraded", "downturn", "drop", "drops", "erode",
		"fail", "failure", "fall", "falling", "falls", "fear", "headwind",
		"impair", "impairment", "inability", "inadequate", "ineffective",
		"lawsuit", "loss", "losses", "miss", "misses", "negative", "obstacle",
		"plunge", "plunges", "poor", "probe", "problem", "recall", "recession",
		"restructuring", "risk", "risks", "sink", "sinks", "slow", "slowdown",
		"slump", "slumps", "tumble", "tumbles", "uncertain", "uncertainty",
		"underperform", "unfavorable", "unprofitable", "volatile",
		"volatility", "warn", "warning", "warns", "weak", "weakness", "worse",
		"worsen", "worst",
	}
	m := make(map[string]bool)
	for _, w := range words {
		m[w] = true
	}
	return m
}
