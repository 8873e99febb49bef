package eval

import (
	"math"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Composite fuses the three sub-scores into one [0,10] value with
// relevance-dependent weighting: confident delivery cannot rescue an
// answer that misses the question, so low-relevance buckets cap the
// composite hard. Note the converse too: perfect relevance alone does
// not reach the top band, since confidence and clarity still carry 60%
// of the weight. An answer that merely echoes the reference text lands
// around 7.8-8.5 for typical references.
func Composite(s domain.SubScores) float64 {
	rel := clampScore(s.Relevance)
	conf := clampScore(s.Confidence)
	clar := clampScore(s.Clarity)

	switch {
	case rel < 1:
		return math.Min(rel*2+conf*0.1+clar*0.1, 2)
	case rel < 3:
		return math.Min(rel*2+conf*0.2+clar*0.2, 5)
	default:
		return math.Min(rel*0.4+conf*0.3+clar*0.3, 10)
	}
}

// CompositeScore computes the composite value and its grade band.
func CompositeScore(s domain.SubScores) domain.CompositeScore {
	v := Composite(s)
	return domain.CompositeScore{Value: v, Grade: GradeOf(v)}
}
