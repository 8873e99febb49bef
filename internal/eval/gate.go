// Package eval implements the response evaluation engine: validity
// gating, heuristic sub-scoring, pairwise relevance, composite grading,
// modality fusion, and feedback generation. All services are pure and
// stateless; callers may run evaluations concurrently without
// coordination.
package eval

import (
	"strings"
	"unicode"
)

// Gate rejects degenerate input before any scoring runs. Both checks
// are pure predicates; when either fails the engine short-circuits to a
// zero composite and grade F without running the sub-scorers.
type Gate struct{}

// NewGate constructs a Gate.
func NewGate() Gate { return Gate{} }

// IsValid reports whether the text is worth scoring at all. Empty,
// whitespace-only, or sub-3-character input is invalid, as is input
// whose non-whitespace content is entirely non-alphanumeric.
func (Gate) IsValid(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsNonsensical flags text that passes the basic validity check but is
// still not evaluable: fewer than 3 whitespace-delimited tokens, no
// token that looks like a word, or word-like tokens missing from more
// than half of the input. A token counts as word-like when it contains
// a letter and at least one vowel, which catches consonant-mash
// gibberish such as "xqz fjp wrlm".
func (Gate) IsNonsensical(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) < 3 {
		return true
	}
	wordLike := 0
	for _, tok := range tokens {
		if isWordLike(tok) {
			wordLike++
		}
	}
	if wordLike == 0 {
		return true
	}
	nonWord := len(tokens) - wordLike
	return nonWord*2 > len(tokens)
}

func isWordLike(s string) bool {
	return hasLetter(s) && hasVowel(s)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasVowel(s string) bool {
	return strings.ContainsAny(strings.ToLower(s), "aeiouy")
}
