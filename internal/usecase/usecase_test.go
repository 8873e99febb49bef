package usecase_test

import (
	"errors"
	"time"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// Hand-rolled fakes shared by the usecase tests.

type stubQuestions struct {
	q   domain.Question
	err error
}

func (s *stubQuestions) Create(_ domain.Context, q domain.Question) (string, error) {
	return q.ID, nil
}

func (s *stubQuestions) Get(_ domain.Context, _ string) (domain.Question, error) {
	return s.q, s.err
}

type stubSubmissions struct {
	created   []domain.Submission
	createErr error
	byIdem    map[string]domain.Submission
	got       domain.Submission
	getErr    error
	statuses  []domain.SubmissionStatus
	errMsgs   []string
}

func (s *stubSubmissions) Create(_ domain.Context, sub domain.Submission) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	if sub.ID == "" {
		sub.ID = "sub-1"
	}
	s.created = append(s.created, sub)
	return sub.ID, nil
}

func (s *stubSubmissions) UpdateStatus(_ domain.Context, _ string, status domain.SubmissionStatus, msg *string) error {
	s.statuses = append(s.statuses, status)
	if msg != nil {
		s.errMsgs = append(s.errMsgs, *msg)
	}
	return nil
}

func (s *stubSubmissions) Get(_ domain.Context, _ string) (domain.Submission, error) {
	return s.got, s.getErr
}

func (s *stubSubmissions) FindByIdempotencyKey(_ domain.Context, key string) (domain.Submission, error) {
	if sub, ok := s.byIdem[key]; ok {
		return sub, nil
	}
	return domain.Submission{}, errors.New("not found")
}

type stubQueue struct {
	payloads []domain.EvaluateTaskPayload
	err      error
}

func (s *stubQueue) EnqueueEvaluate(_ domain.Context, p domain.EvaluateTaskPayload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.payloads = append(s.payloads, p)
	return p.SubmissionID, nil
}

type stubResults struct {
	res domain.EvaluationResult
	err error
}

func (s *stubResults) Upsert(_ domain.Context, _ domain.EvaluationResult) error { return nil }

func (s *stubResults) GetBySubmissionID(_ domain.Context, _ string) (domain.EvaluationResult, error) {
	return s.res, s.err
}

func completedResult() domain.EvaluationResult {
	return domain.EvaluationResult{
		SubmissionID: "sub-1",
		SubScores:    domain.SubScores{Confidence: 7, Clarity: 8, Relevance: 6},
		Composite:    domain.CompositeScore{Value: 6.9, Grade: domain.GradeB},
		Strengths:    []string{"You communicated your points clearly."},
		Improvements: []string{"Add more supporting detail or examples."},
		Summary:      "Overall 6.9/10 (B).",
		CreatedAt:    time.Now().UTC(),
	}
}
