package eval

import (
	"fmt"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Feedback messages triggered by fixed thresholds. Rules are additive:
// every threshold that fires contributes its line.
const (
	msgConfidentDelivery  = "Confident delivery."
	msgClearCommunication = "Clear communication."
	msgOnTopic            = "Your answer directly addresses the question."
	msgReduceFillers      = "Reduce filler words such as \"um\" and \"like\" to sound more polished."
	msgOffTopic           = "Your answer doesn't address the question. Review the topic and try again."
	msgNeedsAlignment     = "Your answer needs more alignment with the expected concept."
	msgExpandDetails      = "Expand your response with more relevant details and examples."
	msgMoreAssertive      = "Use more assertive language to convey confidence."
	msgEyeContact         = "Maintain eye contact with the camera throughout your answer."
	msgPosture            = "Sit upright and keep an open posture."
	msgPaceRange          = "Adjust your speaking pace toward 120-150 words per minute."
	msgDefaultPositive    = "Solid answer. Keep practicing to sharpen delivery and depth."
)

// fillerRatioThreshold is the share of filler words above which the
// reduce-fillers improvement fires.
const fillerRatioThreshold = 0.08

// Feedback is an ordered set of strengths and improvement suggestions
// plus a natural-language summary, all derived deterministically from
// thresholds.
type Feedback struct {
	Strengths    []string
	Improvements []string
	Summary      string
}

// FeedbackGenerator turns sub-scores, lexical features, and optional
// modality signals into human-readable feedback. It never fails: an
// absent field simply omits that rule.
type FeedbackGenerator struct{}

// NewFeedbackGenerator constructs a FeedbackGenerator.
func NewFeedbackGenerator() FeedbackGenerator { return FeedbackGenerator{} }

// Generate produces feedback for one evaluation. fused carries the
// post-fusion scores and any fusion policy notes; features may be the
// zero value when the answer never reached the extractor.
func (FeedbackGenerator) Generate(fused FusionResult, features Features, m *domain.ModalityMetrics) Feedback {
	// Invalid media collapses the improvements list to the single
	// fixed recording note.
	if fused.MediaInvalid {
		return Feedback{
			Improvements: []string{NoteInvalidRecording},
			Summary:      summaryFor(fused.Composite),
		}
	}

	var fb Feedback
	s := fused.SubScores

	if s.Confidence >= 7 {
		fb.Strengths = append(fb.Strengths, msgConfidentDelivery)
	}
	if s.Clarity >= 7 {
		fb.Strengths = append(fb.Strengths, msgClearCommunication)
	}
	if s.Relevance >= 7 {
		fb.Strengths = append(fb.Strengths, msgOnTopic)
	}

	switch v := fused.Composite.Value; {
	case v < 2:
		fb.Improvements = append(fb.Improvements, msgOffTopic)
	case v < 4:
		fb.Improvements = append(fb.Improvements, msgNeedsAlignment)
	case v < 6:
		fb.Improvements = append(fb.Improvements, msgExpandDetails)
	}
	if features.FillerRatio() > fillerRatioThreshold {
		fb.Improvements = append(fb.Improvements, msgReduceFillers)
	}
	if s.Confidence < 4 && features.WordCount >= 5 {
		fb.Improvements = append(fb.Improvements, msgMoreAssertive)
	}

	if m != nil && !m.AnalysisFailed {
		if v, ok := signal(m.EyeContactScore); ok && v < 7 {
			fb.Improvements = append(fb.Improvements, msgEyeContact)
		}
		if v, ok := signal(m.PostureScore); ok && v < 7 {
			fb.Improvements = append(fb.Improvements, msgPosture)
		}
		if m.SpeechPaceWPM != nil {
			if wpm := *m.SpeechPaceWPM; wpm > 0 && (wpm < 120 || wpm > 150) {
				fb.Improvements = append(fb.Improvements, msgPaceRange)
			}
		}
	}

	fb.Improvements = append(fb.Improvements, fused.Notes...)

	if len(fb.Strengths) == 0 && len(fb.Improvements) == 0 {
		fb.Strengths = append(fb.Strengths, msgDefaultPositive)
	}
	fb.Summary = summaryFor(fused.Composite)
	return fb
}

// summaryFor renders the one-line natural-language summary from the
// composite band.
func summaryFor(c domain.CompositeScore) string {
	var quality string
	switch {
	case c.Value >= 8:
		quality = "an excellent answer"
	case c.Value >= 6:
		quality = "a good answer with room to grow"
	case c.Value >= 4:
		quality = "a fair answer that needs more depth"
	case c.Value >= 2:
		quality = "a weak answer that misses key concepts"
	default:
		quality = "an answer that does not address the question"
	}
	return fmt.Sprintf("Overall %.1f/10 (%s): %s.", c.Value, c.Grade, quality)
}
