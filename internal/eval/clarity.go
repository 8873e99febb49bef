package eval

import (
	"strings"
	"unicode"
)

// ClarityScorer rates structural readability on [0,10]. It repeats a
// lightweight nonsense check so it stays safe to call standalone,
// independent of the validity gate.
type ClarityScorer struct{}

// NewClarityScorer constructs a ClarityScorer.
func NewClarityScorer() ClarityScorer { return ClarityScorer{} }

// Score computes the clarity sub-score from average word length and
// punctuation density.
func (ClarityScorer) Score(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 5 {
		return 1
	}
	tokens := strings.Fields(trimmed)
	if mostTokensUnreadable(tokens) {
		return 1
	}

	var letterTokens, letterTotal int
	for _, tok := range tokens {
		if n := letterCount(tok); n > 0 {
			letterTokens++
			letterTotal += n
		}
	}
	if letterTokens == 0 {
		return 1
	}
	avgWordLength := float64(letterTotal) / float64(letterTokens)

	punctuationBonus := 0.0
	if countPunctuation(trimmed) > 2 {
		punctuationBonus = 1
	}
	return clampScore(avgWordLength/4 + punctuationBonus + 5)
}

// mostTokensUnreadable reports whether over half of the multi-character
// tokens contain no letter at all.
func mostTokensUnreadable(tokens []string) bool {
	var considered, unreadable int
	for _, tok := range tokens {
		if len(tok) <= 1 {
			continue
		}
		considered++
		if !hasLetter(tok) {
			unreadable++
		}
	}
	return considered > 0 && unreadable*2 > considered
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func countPunctuation(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case '.', ',', '!', '?', ';':
			n++
		}
	}
	return n
}
