package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/interview-eval/internal/adapter/httpserver"
	"github.com/fairyhunter13/interview-eval/internal/config"
	"github.com/fairyhunter13/interview-eval/internal/domain"
	"github.com/fairyhunter13/interview-eval/internal/usecase"
)

type fakeQuestions struct {
	byID map[string]domain.Question
}

func (f *fakeQuestions) Create(_ domain.Context, q domain.Question) (string, error) {
	return q.ID, nil
}

func (f *fakeQuestions) Get(_ domain.Context, id string) (domain.Question, error) {
	if q, ok := f.byID[id]; ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrNotFound
}

type fakeSubmissions struct {
	created []domain.Submission
	byIdem  map[string]domain.Submission
	byID    map[string]domain.Submission
}

func (f *fakeSubmissions) Create(_ domain.Context, s domain.Submission) (string, error) {
	if s.ID == "" {
		s.ID = "sub-1"
	}
	f.created = append(f.created, s)
	return s.ID, nil
}

func (f *fakeSubmissions) UpdateStatus(_ domain.Context, _ string, _ domain.SubmissionStatus, _ *string) error {
	return nil
}

func (f *fakeSubmissions) Get(_ domain.Context, id string) (domain.Submission, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return domain.Submission{}, domain.ErrNotFound
}

func (f *fakeSubmissions) FindByIdempotencyKey(_ domain.Context, key string) (domain.Submission, error) {
	if s, ok := f.byIdem[key]; ok {
		return s, nil
	}
	return domain.Submission{}, domain.ErrNotFound
}

type fakeQueue struct {
	payloads []domain.EvaluateTaskPayload
}

func (f *fakeQueue) EnqueueEvaluate(_ domain.Context, p domain.EvaluateTaskPayload) (string, error) {
	f.payloads = append(f.payloads, p)
	return "task-1", nil
}

func newTestServer() (*httpserver.Server, *fakeSubmissions, *fakeQueue) {
	qs := &fakeQuestions{byID: map[string]domain.Question{
		"q1": {ID: "q1", Prompt: "Describe a project you led.", Reference: "led a team project end to end", Category: "behavioral"},
	}}
	subs := &fakeSubmissions{
		byIdem: map[string]domain.Submission{},
		byID:   map[string]domain.Submission{},
	}
	queue := &fakeQueue{}
	cfg := config.Config{MaxAnswerBytes: 65536, MaxTranscriptMB: 2}
	submitSvc := usecase.NewSubmitService(qs, subs, queue)
	srv := httpserver.NewServer(cfg, submitSvc,
		usecase.NewTranscriptService(submitSvc, cfg.MaxAnswerBytes),
		usecase.NewResultService(subs, nil),
		usecase.NewQuestionService(qs),
		nil, nil, nil)
	return srv, subs, queue
}

func TestSubmitHandler_Success(t *testing.T) {
	srv, subs, queue := newTestServer()
	body, _ := json.Marshal(map[string]any{"question_id": "q1", "answer_text": "I led the migration"})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rw.Result().Body).Decode(&resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "queued", resp["status"])
	require.Len(t, subs.created, 1)
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, "q1", queue.payloads[0].QuestionID)
}

func TestSubmitHandler_MissingQuestionID(t *testing.T) {
	srv, _, _ := newTestServer()
	body, _ := json.Marshal(map[string]any{"answer_text": "answer without a question"})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	require.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rw.Result().Body).Decode(&resp))
	errObj := resp["error"].(map[string]any)
	assert.Equal(t, "INVALID_ARGUMENT", errObj["code"])
}

func TestSubmitHandler_UnknownQuestion(t *testing.T) {
	srv, _, _ := newTestServer()
	body, _ := json.Marshal(map[string]any{"question_id": "nope", "answer_text": "hello"})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	assert.Equal(t, http.StatusNotFound, rw.Result().StatusCode)
}

func TestSubmitHandler_BadJSON(t *testing.T) {
	srv, _, _ := newTestServer()
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader([]byte("{not json")))
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}

func TestSubmitHandler_NotAcceptable(t *testing.T) {
	srv, _, _ := newTestServer()
	body, _ := json.Marshal(map[string]any{"question_id": "q1", "answer_text": "hi"})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Accept", "text/html")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	assert.Equal(t, http.StatusNotAcceptable, rw.Result().StatusCode)
}

func TestSubmitHandler_AnswerTooLarge(t *testing.T) {
	srv, _, _ := newTestServer()
	big := bytes.Repeat([]byte("a"), 70000)
	body, _ := json.Marshal(map[string]any{"question_id": "q1", "answer_text": string(big)})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rw.Result().StatusCode)
}

func TestSubmitHandler_IdempotencyKeyReturnsExisting(t *testing.T) {
	srv, subs, queue := newTestServer()
	subs.byIdem["idem-1"] = domain.Submission{ID: "sub-existing", QuestionID: "q1", Status: domain.SubmissionQueued}

	body, _ := json.Marshal(map[string]any{"question_id": "q1", "answer_text": "again"})
	r := httptest.NewRequest(http.MethodPost, "/v1/submit", bytes.NewReader(body))
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Idempotency-Key", "idem-1")
	rw := httptest.NewRecorder()
	srv.SubmitHandler()(rw, r)

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rw.Result().Body).Decode(&resp))
	assert.Equal(t, "sub-existing", resp["id"])
	assert.Empty(t, queue.payloads)
}
