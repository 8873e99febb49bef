// Package domain holds the core entities and ports of the interview
// response evaluation service.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrInternal        = errors.New("internal error")
)

// GradeBand is the discrete letter category a composite score maps onto.
type GradeBand string

// Grade bands, best to worst.
const (
	GradeAPlus GradeBand = "A+"
	GradeA     GradeBand = "A"
	GradeBPlus GradeBand = "B+"
	GradeB     GradeBand = "B"
	GradeC     GradeBand = "C"
	GradeD     GradeBand = "D"
	GradeF     GradeBand = "F"
)

// Question is a catalog entry pairing the prompt shown to the candidate
// with the reference answer the relevance scorer compares against.
type Question struct {
	ID        string
	Prompt    string
	Reference string
	Category  string
	CreatedAt time.Time
}

// SubmissionStatus tracks the lifecycle of a submitted answer.
type SubmissionStatus string

const (
	SubmissionQueued     SubmissionStatus = "queued"
	SubmissionProcessing SubmissionStatus = "processing"
	SubmissionCompleted  SubmissionStatus = "completed"
	SubmissionFailed     SubmissionStatus = "failed"
)

// Submission is one answered question awaiting or holding an evaluation.
// Immutable once scored; a resubmission creates a new Submission whose
// result replaces the prior one.
type Submission struct {
	ID         string
	QuestionID string
	Status     SubmissionStatus
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IdemKey    *string
}

// ModalityMetrics carries externally computed non-verbal/speech signals.
// All sub-scores are on the 0-10 scale. A nil field means the signal was
// not measured; IsEmptyOrInvalid marks media that contained no usable
// speech content.
type ModalityMetrics struct {
	NonVerbalPresence *float64 `json:"non_verbal_presence,omitempty"`
	EyeContactScore   *float64 `json:"eye_contact_score,omitempty"`
	PostureScore      *float64 `json:"posture_score,omitempty"`
	SpeechClarity     *float64 `json:"speech_clarity,omitempty"`
	SpeechPaceWPM     *float64 `json:"speech_pace_wpm,omitempty"`
	IsEmptyOrInvalid  bool     `json:"is_empty_or_invalid,omitempty"`
	AnalysisFailed    bool     `json:"analysis_failed,omitempty"`
}

// SubScores are the three text-derived heuristic scores, each clamped
// to [0,10].
type SubScores struct {
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
	Relevance  float64 `json:"relevance"`
}

// CompositeScore pairs the fused 0-10 value with its grade band. Grade
// is always a pure function of Value and is never stored independently
// of a recomputation.
type CompositeScore struct {
	Value float64   `json:"value"`
	Grade GradeBand `json:"grade"`
}

// EvaluationResult is the complete outcome of one evaluation, attached
// verbatim to the answered question by the persistence layer.
type EvaluationResult struct {
	SubmissionID string           `json:"submission_id"`
	SubScores    SubScores        `json:"sub_scores"`
	Composite    CompositeScore   `json:"composite"`
	Strengths    []string         `json:"strengths"`
	Improvements []string         `json:"improvements"`
	Summary      string           `json:"summary"`
	Modality     *ModalityMetrics `json:"modality,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Repositories (ports)

type QuestionRepository interface {
	Create(ctx Context, q Question) (string, error)
	Get(ctx Context, id string) (Question, error)
}

type SubmissionRepository interface {
	Create(ctx Context, s Submission) (string, error)
	UpdateStatus(ctx Context, id string, status SubmissionStatus, errMsg *string) error
	Get(ctx Context, id string) (Submission, error)
	FindByIdempotencyKey(ctx Context, key string) (Submission, error)
}

type ResultRepository interface {
	Upsert(ctx Context, r EvaluationResult) error
	GetBySubmissionID(ctx Context, submissionID string) (EvaluationResult, error)
}

// Queue (port)

type Queue interface {
	EnqueueEvaluate(ctx Context, payload EvaluateTaskPayload) (string, error)
}

// EvaluateTaskPayload is the message handed to the evaluation worker.
// AnswerText and the optional modality record travel with the task so
// the worker needs only the question catalog to score.
type EvaluateTaskPayload struct {
	SubmissionID string           `json:"submission_id"`
	QuestionID   string           `json:"question_id"`
	AnswerText   string           `json:"answer_text"`
	Modality     *ModalityMetrics `json:"modality,omitempty"`
	RequestID    string           `json:"request_id,omitempty"`
}

// Context aliases context.Context so ports read cleanly without
// importing std context at every call site.
type Context = context.Context
