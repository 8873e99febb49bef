package eval

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Similarity measures semantic closeness between two texts on [0,1].
// It is an interface so the pairwise model can later be swapped for a
// corpus-wide one without touching the scorers.
type Similarity interface {
	Similarity(a, b string) float64
}

// PairwiseTFIDF scores closeness by building a TF-IDF vector model over
// a corpus of exactly the two input documents and taking the cosine of
// the resulting vectors.
//
// With a two-document corpus, inverse document frequency degenerates
// toward presence/absence weighting: a smoothed idf of
// ln(2/(1+df))+1 keeps shared terms at a positive weight so identical
// texts still score 1. This differs from corpus-wide IDF over a full
// question bank and is deliberate, keeping each answer's score
// independent of every other answer in the system.
type PairwiseTFIDF struct{}

// NewPairwiseTFIDF constructs the two-document similarity model.
func NewPairwiseTFIDF() PairwiseTFIDF { return PairwiseTFIDF{} }

// Similarity returns the cosine similarity of the two documents'
// TF-IDF vectors. Either document yielding zero extractable terms
// gives 0.
func (PairwiseTFIDF) Similarity(a, b string) float64 {
	ta := extractTerms(a)
	tb := extractTerms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	// Vector components are laid out in sorted term order so the float
	// summation order inside Dot/Norm is stable call to call.
	vocab := make([]string, 0, len(ta)+len(tb))
	for term := range ta {
		vocab = append(vocab, term)
	}
	for term := range tb {
		if _, ok := ta[term]; !ok {
			vocab = append(vocab, term)
		}
	}
	sort.Strings(vocab)

	totalA := termTotal(ta)
	totalB := termTotal(tb)
	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for idx, term := range vocab {
		df := 0.0
		if ta[term] > 0 {
			df++
		}
		if tb[term] > 0 {
			df++
		}
		idf := math.Log(2/(1+df)) + 1
		va[idx] = tf(ta, term, totalA) * idf
		vb[idx] = tf(tb, term, totalB) * idf
	}

	na := floats.Norm(va, 2)
	nb := floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := floats.Dot(va, vb) / (na * nb)
	return math.Max(0, math.Min(1, cos))
}

func termTotal(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func tf(counts map[string]int, term string, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(counts[term]) / float64(total)
}

// extractTerms lowercases and splits on non-alphanumeric runes,
// dropping single-character fragments.
func extractTerms(text string) map[string]int {
	counts := map[string]int{}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		counts[f]++
	}
	return counts
}

// RelevanceScorer scales pairwise similarity to the [0,10] sub-score
// range.
type RelevanceScorer struct {
	sim  Similarity
	gate Gate
}

// NewRelevanceScorer constructs a RelevanceScorer over the given
// similarity model.
func NewRelevanceScorer(sim Similarity) RelevanceScorer {
	return RelevanceScorer{sim: sim, gate: NewGate()}
}

// Score returns similarity(answer, reference) * 10, or 0 when the
// answer is nonsensical (no similarity is computed in that case).
func (s RelevanceScorer) Score(answer, reference string) float64 {
	if s.gate.IsNonsensical(answer) {
		return 0
	}
	return clampScore(s.sim.Similarity(answer, reference) * 10)
}
