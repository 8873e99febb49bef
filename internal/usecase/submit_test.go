package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-eval/internal/domain"
	"github.com/fairyhunter13/interview-eval/internal/usecase"
)

func TestSubmit_Success(t *testing.T) {
	questions := &stubQuestions{q: domain.Question{ID: "q1", Prompt: "p", Reference: "r"}}
	submissions := &stubSubmissions{}
	queue := &stubQueue{}
	svc := usecase.NewSubmitService(questions, submissions, queue)

	id, err := svc.Submit(context.Background(), "q1", "my answer", nil, "", "req-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", id)

	require.Len(t, queue.payloads, 1)
	assert.Equal(t, "q1", queue.payloads[0].QuestionID)
	assert.Equal(t, "my answer", queue.payloads[0].AnswerText)
	assert.Equal(t, "req-1", queue.payloads[0].RequestID)
	require.Len(t, submissions.created, 1)
	assert.Equal(t, domain.SubmissionQueued, submissions.created[0].Status)
}

func TestSubmit_MissingQuestionID(t *testing.T) {
	svc := usecase.NewSubmitService(&stubQuestions{}, &stubSubmissions{}, &stubQueue{})

	_, err := svc.Submit(context.Background(), "", "answer", nil, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSubmit_UnknownQuestion(t *testing.T) {
	questions := &stubQuestions{err: domain.ErrNotFound}
	svc := usecase.NewSubmitService(questions, &stubSubmissions{}, &stubQueue{})

	_, err := svc.Submit(context.Background(), "missing", "answer", nil, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_IdempotencyReturnsExisting(t *testing.T) {
	questions := &stubQuestions{q: domain.Question{ID: "q1"}}
	submissions := &stubSubmissions{byIdem: map[string]domain.Submission{
		"key-1": {ID: "existing-sub", QuestionID: "q1"},
	}}
	queue := &stubQueue{}
	svc := usecase.NewSubmitService(questions, submissions, queue)

	id, err := svc.Submit(context.Background(), "q1", "answer", nil, "key-1", "")
	require.NoError(t, err)
	assert.Equal(t, "existing-sub", id)
	assert.Empty(t, queue.payloads, "no new task should be enqueued")
	assert.Empty(t, submissions.created)
}

func TestSubmit_EnqueueFailureMarksFailed(t *testing.T) {
	questions := &stubQuestions{q: domain.Question{ID: "q1"}}
	submissions := &stubSubmissions{}
	queue := &stubQueue{err: assert.AnError}
	svc := usecase.NewSubmitService(questions, submissions, queue)

	_, err := svc.Submit(context.Background(), "q1", "answer", nil, "", "")
	require.Error(t, err)
	assert.Contains(t, submissions.statuses, domain.SubmissionFailed)
	assert.Contains(t, submissions.errMsgs, "enqueue failed")
}

func TestSubmit_ModalityTravelsWithPayload(t *testing.T) {
	questions := &stubQuestions{q: domain.Question{ID: "q1"}}
	queue := &stubQueue{}
	svc := usecase.NewSubmitService(questions, &stubSubmissions{}, queue)

	eye := 7.5
	_, err := svc.Submit(context.Background(), "q1", "answer", &domain.ModalityMetrics{EyeContactScore: &eye}, "", "")
	require.NoError(t, err)
	require.Len(t, queue.payloads, 1)
	require.NotNil(t, queue.payloads[0].Modality)
	assert.InDelta(t, 7.5, *queue.payloads[0].Modality.EyeContactScore, 1e-9)
}
