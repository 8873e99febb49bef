// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"time"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// SubmitService orchestrates submission creation and queueing for
// evaluation.
type SubmitService struct {
	Questions   domain.QuestionRepository
	Submissions domain.SubmissionRepository
	Queue       domain.Queue
}

// ReadinessCheck represents a single readiness probe result used by handlers.
type ReadinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details"`
}

// NewSubmitService constructs a SubmitService with its dependencies.
func NewSubmitService(q domain.QuestionRepository, s domain.SubmissionRepository, queue domain.Queue) SubmitService {
	return SubmitService{Questions: q, Submissions: s, Queue: queue}
}

// Submit validates inputs, creates a submission, and enqueues the
// evaluation task. The answer text may be empty; the scoring pipeline
// grades degenerate answers rather than rejecting them.
func (s SubmitService) Submit(ctx domain.Context, questionID, answerText string, modality *domain.ModalityMetrics, idemKey, requestID string) (string, error) {
	if questionID == "" {
		return "", fmt.Errorf("%w: question_id required", domain.ErrInvalidArgument)
	}
	// The question must exist before anything is persisted.
	if _, err := s.Questions.Get(ctx, questionID); err != nil {
		return "", fmt.Errorf("lookup question: %w", err)
	}
	// Idempotency: if provided, return the existing submission.
	if idemKey != "" {
		if prior, err := s.Submissions.FindByIdempotencyKey(ctx, idemKey); err == nil && prior.ID != "" {
			return prior.ID, nil
		}
	}
	sub := domain.Submission{
		QuestionID: questionID,
		Status:     domain.SubmissionQueued,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if idemKey != "" {
		sub.IdemKey = &idemKey
	}
	subID, err := s.Submissions.Create(ctx, sub)
	if err != nil {
		return "", err
	}
	payload := domain.EvaluateTaskPayload{
		SubmissionID: subID,
		QuestionID:   questionID,
		AnswerText:   answerText,
		Modality:     modality,
		RequestID:    requestID,
	}
	if _, err := s.Queue.EnqueueEvaluate(ctx, payload); err != nil {
		_ = s.Submissions.UpdateStatus(ctx, subID, domain.SubmissionFailed, ptr("enqueue failed"))
		return "", err
	}
	return subID, nil
}

func ptr(s string) *string { return &s }
