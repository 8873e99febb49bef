package eval

import (
	"math"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Fusion policy messages surfaced through the feedback generator.
const (
	NoteInvalidRecording    = "Provide a valid recording with speech content."
	NoteAnalysisUnavailable = "Media analysis was unavailable for this answer; scores reflect the text only."
)

// FusionResult is the outcome of blending text scores with modality
// signals. Relevance always passes through unchanged; only delivery
// scores are fused.
type FusionResult struct {
	SubScores domain.SubScores
	Fluency   float64
	Composite domain.CompositeScore
	Notes     []string
	// MediaInvalid marks the empty-or-invalid media path, where the
	// improvements list collapses to the single fixed recording note.
	MediaInvalid bool
}

// Fuser blends a text-only evaluation with externally supplied
// non-verbal/speech metrics using fixed weighted averages, degrading to
// the text-only scores whenever a signal is absent or out of range.
type Fuser struct {
	jitter Jitter
}

// NewFuser constructs a Fuser with the given jitter source; pass
// NoJitter{} for deterministic output.
func NewFuser(j Jitter) Fuser {
	if j == nil {
		j = NoJitter{}
	}
	return Fuser{jitter: j}
}

// Fuse combines the text sub-scores and composite with the optional
// modality record. Absent metrics return the text scores unchanged; a
// failed analysis behaves like absent metrics plus an "analysis
// unavailable" note; empty-or-invalid media is a data-quality failure
// that zeroes the delivery scores instead of blending.
func (f Fuser) Fuse(text domain.SubScores, composite domain.CompositeScore, m *domain.ModalityMetrics) FusionResult {
	if m == nil {
		return FusionResult{SubScores: text, Composite: composite}
	}
	if m.AnalysisFailed {
		return FusionResult{
			SubScores: text,
			Composite: composite,
			Notes:     []string{NoteAnalysisUnavailable},
		}
	}
	if m.IsEmptyOrInvalid {
		zeroed := domain.SubScores{Relevance: text.Relevance}
		return FusionResult{
			SubScores:    zeroed,
			Fluency:      0,
			Composite:    CompositeScore(zeroed),
			Notes:        []string{NoteInvalidRecording},
			MediaInvalid: true,
		}
	}

	fused := text
	presence, hasPresence := signal(m.NonVerbalPresence)
	speech, hasSpeech := signal(m.SpeechClarity)

	switch {
	case hasPresence:
		fused.Clarity = clampScore(0.6*text.Clarity + 0.4*presence + f.jitter.Offset(0.3))
	case hasSpeech:
		fused.Clarity = clampScore(0.7*text.Clarity + 0.3*speech + f.jitter.Offset(0.3))
	}
	if hasPresence {
		fused.Confidence = clampScore(0.6*text.Confidence + 0.4*presence + f.jitter.Offset(0.3))
	}

	res := FusionResult{
		SubScores: fused,
		Fluency:   fluencyOf(m),
	}

	base := Composite(fused)
	media, ok := mediaOnlyScore(m)
	if !ok {
		res.Composite = domain.CompositeScore{Value: base, Grade: GradeOf(base)}
		return res
	}
	overall := clampScore(0.7*base + 0.3*media + f.jitter.Offset(0.5))
	res.Composite = domain.CompositeScore{Value: overall, Grade: GradeOf(overall)}
	return res
}

// signal validates an optional 0-10 metric; out-of-range values count
// as missing rather than failing the evaluation.
func signal(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if math.IsNaN(*v) || *v < 0 || *v > 10 {
		return 0, false
	}
	return *v, true
}

// fluencyOf derives the fluency-equivalent sub-score from speech pace
// when available, falling back to speech clarity.
func fluencyOf(m *domain.ModalityMetrics) float64 {
	if m.SpeechPaceWPM != nil && *m.SpeechPaceWPM > 0 {
		return paceScore(*m.SpeechPaceWPM)
	}
	if v, ok := signal(m.SpeechClarity); ok {
		return v
	}
	return 0
}

// paceScore grades speaking pace: full marks inside the 120-150 WPM
// comfort band, linear falloff outside it.
func paceScore(wpm float64) float64 {
	const lo, hi = 120, 150
	switch {
	case wpm >= lo && wpm <= hi:
		return 10
	case wpm < lo:
		return clampScore(10 * wpm / lo)
	default:
		// 300 WPM and beyond bottoms out at zero.
		return clampScore(10 * (1 - (wpm-hi)/hi))
	}
}

// mediaOnlyScore averages whichever visual/speech signals are present.
func mediaOnlyScore(m *domain.ModalityMetrics) (float64, bool) {
	var sum float64
	var n int
	for _, v := range []*float64{m.NonVerbalPresence, m.EyeContactScore, m.PostureScore, m.SpeechClarity} {
		if s, ok := signal(v); ok {
			sum += s
			n++
		}
	}
	if m.SpeechPaceWPM != nil && *m.SpeechPaceWPM > 0 {
		sum += paceScore(*m.SpeechPaceWPM)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
