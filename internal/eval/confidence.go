package eval

import "math"

// ConfidenceScorer rates tone and assertiveness on [0,10].
type ConfidenceScorer struct {
	extractor *Extractor
}

// NewConfidenceScorer constructs a ConfidenceScorer sharing the given
// feature extractor.
func NewConfidenceScorer(e *Extractor) ConfidenceScorer {
	return ConfidenceScorer{extractor: e}
}

// Score computes the confidence sub-score. Answers under 5 words are
// capped at min(wordCount, 2) regardless of tone; longer answers blend
// a length score, half the shifted sentiment polarity, and a small
// bonus for structural connectives.
func (s ConfidenceScorer) Score(text string) float64 {
	f := s.extractor.Extract(text)
	return s.scoreFeatures(text, f)
}

func (s ConfidenceScorer) scoreFeatures(text string, f Features) float64 {
	if f.WordCount < 5 {
		return clampScore(math.Min(float64(f.WordCount), 2))
	}
	lengthScore := math.Min(float64(f.WordCount)/20, 10)
	sentimentScore := math.Max(f.Polarity+5, 0)
	structureScore := 0.0
	if HasStructuralConnective(text) {
		structureScore = 1.5
	}
	return clampScore(lengthScore + sentimentScore/2 + structureScore)
}

// clampScore bounds a sub-score to the [0,10] range.
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(10, v))
}
