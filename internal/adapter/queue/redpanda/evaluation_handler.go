package redpanda

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/interview-eval/internal/adapter/observability"
	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Evaluator scores one answer against a reference answer. Satisfied by
// eval.Engine.
type Evaluator interface {
	Evaluate(answer, reference string, m *domain.ModalityMetrics) domain.EvaluationResult
}

// EvaluationHandler executes one evaluation task end to end: load the
// question, score the answer, persist the result, and flip the
// submission status. Persistence steps retry with exponential backoff
// so transient database hiccups do not fail the task.
type EvaluationHandler struct {
	Questions   domain.QuestionRepository
	Submissions domain.SubmissionRepository
	Results     domain.ResultRepository
	Engine      Evaluator

	// NewBackOff supplies the retry policy per attempt. Tests install a
	// fast policy here.
	NewBackOff func() backoff.BackOff
}

// NewEvaluationHandler wires an EvaluationHandler with a default retry
// policy of up to 30s of exponential backoff.
func NewEvaluationHandler(questions domain.QuestionRepository, submissions domain.SubmissionRepository, results domain.ResultRepository, engine Evaluator) *EvaluationHandler {
	return &EvaluationHandler{
		Questions:   questions,
		Submissions: submissions,
		Results:     results,
		Engine:      engine,
		NewBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxElapsedTime = 30 * time.Second
			return bo
		},
	}
}

// HandleEvaluate processes a single evaluation task.
func (h *EvaluationHandler) HandleEvaluate(ctx context.Context, payload domain.EvaluateTaskPayload) error {
	tracer := otel.Tracer("queue.handler")
	ctx, span := tracer.Start(ctx, "HandleEvaluate")
	defer span.End()

	if h.Questions == nil || h.Submissions == nil || h.Results == nil || h.Engine == nil {
		return fmt.Errorf("evaluation handler missing dependencies")
	}

	started := time.Now()
	observability.StartEvaluation("evaluate")

	if err := h.updateStatus(ctx, payload.SubmissionID, domain.SubmissionProcessing, nil); err != nil {
		observability.FailEvaluation("evaluate")
		return fmt.Errorf("update submission status: %w", err)
	}

	question, err := h.Questions.Get(ctx, payload.QuestionID)
	if err != nil {
		slog.Error("failed to load question",
			slog.String("submission_id", payload.SubmissionID),
			slog.String("question_id", payload.QuestionID),
			slog.Any("error", err))
		msg := "question lookup failed"
		_ = h.updateStatus(ctx, payload.SubmissionID, domain.SubmissionFailed, &msg)
		observability.FailEvaluation("evaluate")
		return fmt.Errorf("get question: %w", err)
	}

	// Scoring is pure and never fails; only persistence can.
	result := h.Engine.Evaluate(payload.AnswerText, question.Reference, payload.Modality)
	result.SubmissionID = payload.SubmissionID

	if err := h.retry(ctx, func() error { return h.Results.Upsert(ctx, result) }); err != nil {
		msg := "result persistence failed"
		_ = h.updateStatus(ctx, payload.SubmissionID, domain.SubmissionFailed, &msg)
		observability.FailEvaluation("evaluate")
		return fmt.Errorf("store result: %w", err)
	}

	// Completed status flips only after the result row is durable.
	if err := h.updateStatus(ctx, payload.SubmissionID, domain.SubmissionCompleted, nil); err != nil {
		observability.FailEvaluation("evaluate")
		return fmt.Errorf("update submission status: %w", err)
	}

	observability.CompleteEvaluation("evaluate")
	observability.ObserveScore(result.Composite.Value, string(result.Composite.Grade), time.Since(started))
	slog.Info("submission evaluated",
		slog.String("submission_id", payload.SubmissionID),
		slog.Float64("composite", result.Composite.Value),
		slog.String("grade", string(result.Composite.Grade)))
	return nil
}

func (h *EvaluationHandler) updateStatus(ctx context.Context, id string, status domain.SubmissionStatus, msg *string) error {
	return h.retry(ctx, func() error {
		return h.Submissions.UpdateStatus(ctx, id, status, msg)
	})
}

func (h *EvaluationHandler) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(h.NewBackOff(), ctx))
}
