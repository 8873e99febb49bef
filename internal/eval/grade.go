package eval

import "github.com/fairyhunter13/interview-eval/internal/domain"

// GradeOf maps a composite value onto its grade band. Pure and total;
// bands have inclusive lower bounds, so the mapping is monotonically
// non-decreasing in the score.
func GradeOf(score float64) domain.GradeBand {
	switch {
	case score >= 9:
		return domain.GradeAPlus
	case score >= 8:
		return domain.GradeA
	case score >= 7:
		return domain.GradeBPlus
	case score >= 6:
		return domain.GradeB
	case score >= 5:
		return domain.GradeC
	case score >= 4:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}
