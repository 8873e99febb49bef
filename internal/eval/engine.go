package eval

import (
	"strings"
	"time"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Fixed feedback lines for the short-circuit paths. These surface in
// the improvements list so clients always have something actionable.
const (
	msgMissingInput    = "Invalid question or empty response."
	msgDegenerateInput = "Your response was nonsensical or too short to evaluate."
)

// Engine runs the full evaluation pipeline: validity gate, lexical
// extraction, heuristic sub-scorers, composite grading, modality
// fusion, and feedback generation. Every code path yields a well-formed
// EvaluationResult; no error ever escapes.
//
// An Engine is stateless after construction and safe for concurrent
// use when built with the default NoJitter source. With BoundedJitter,
// construct one Engine per goroutine.
type Engine struct {
	gate       Gate
	extractor  *Extractor
	confidence ConfidenceScorer
	clarity    ClarityScorer
	relevance  RelevanceScorer
	fuser      Fuser
	feedback   FeedbackGenerator
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJitter installs a jitter source for fused scores. The default is
// NoJitter, which keeps evaluation fully deterministic.
func WithJitter(j Jitter) Option {
	return func(e *Engine) { e.fuser = NewFuser(j) }
}

// WithSimilarity swaps the relevance similarity model.
func WithSimilarity(s Similarity) Option {
	return func(e *Engine) { e.relevance = NewRelevanceScorer(s) }
}

// WithClock overrides the result timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an Engine with the pairwise TF-IDF relevance
// model and deterministic (jitter-free) fusion.
func NewEngine(opts ...Option) *Engine {
	ex := NewExtractor()
	e := &Engine{
		gate:       NewGate(),
		extractor:  ex,
		confidence: NewConfidenceScorer(ex),
		clarity:    NewClarityScorer(),
		relevance:  NewRelevanceScorer(NewPairwiseTFIDF()),
		fuser:      NewFuser(NoJitter{}),
		feedback:   NewFeedbackGenerator(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one answer against its reference. reference empty
// means the question had no expected-answer content; that is a
// missing-input condition, not a fault.
func (e *Engine) Evaluate(answer, reference string, m *domain.ModalityMetrics) domain.EvaluationResult {
	if strings.TrimSpace(reference) == "" {
		return e.zeroResult(msgMissingInput)
	}
	if !e.gate.IsValid(answer) || e.gate.IsNonsensical(answer) {
		return e.zeroResult(msgDegenerateInput)
	}

	features := e.extractor.Extract(answer)
	subs := domain.SubScores{
		Confidence: e.confidence.scoreFeatures(answer, features),
		Clarity:    e.clarity.Score(answer),
		Relevance:  e.relevance.Score(answer, reference),
	}
	composite := CompositeScore(subs)

	fused := e.fuser.Fuse(subs, composite, m)
	fb := e.feedback.Generate(fused, features, m)

	return domain.EvaluationResult{
		SubScores:    fused.SubScores,
		Composite:    fused.Composite,
		Strengths:    fb.Strengths,
		Improvements: fb.Improvements,
		Summary:      fb.Summary,
		Modality:     m,
		CreatedAt:    e.now().UTC(),
	}
}

// zeroResult is the short-circuit outcome for missing or degenerate
// input: zero composite, grade F, one fixed improvement line.
func (e *Engine) zeroResult(msg string) domain.EvaluationResult {
	return domain.EvaluationResult{
		SubScores:    domain.SubScores{},
		Composite:    domain.CompositeScore{Value: 0, Grade: domain.GradeF},
		Improvements: []string{msg},
		Summary:      summaryFor(domain.CompositeScore{Value: 0, Grade: domain.GradeF}),
		CreatedAt:    e.now().UTC(),
	}
}
