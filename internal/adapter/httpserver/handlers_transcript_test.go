package httpserver_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile("transcript", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestTranscriptHandler_Success(t *testing.T) {
	srv, _, queue := newTestServer()
	buf, ct := multipartBody(t, "answer.txt", "I designed and shipped the service myself.", map[string]string{"question_id": "q1"})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rw.Result().Body).Decode(&resp))
	assert.Equal(t, "queued", resp["status"])
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, "I designed and shipped the service myself.", queue.payloads[0].AnswerText)
}

func TestTranscriptHandler_WithModality(t *testing.T) {
	srv, _, queue := newTestServer()
	buf, ct := multipartBody(t, "answer.txt", "clear and steady delivery", map[string]string{
		"question_id": "q1",
		"modality":    `{"speech_pace_wpm":140,"speech_clarity":8.5}`,
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	require.Len(t, queue.payloads, 1)
	require.NotNil(t, queue.payloads[0].Modality)
	assert.InDelta(t, 140, *queue.payloads[0].Modality.SpeechPaceWPM, 0.001)
}

func TestTranscriptHandler_MissingFile(t *testing.T) {
	srv, _, _ := newTestServer()
	buf, ct := multipartBody(t, "", "", map[string]string{"question_id": "q1"})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}

func TestTranscriptHandler_MissingQuestionID(t *testing.T) {
	srv, _, _ := newTestServer()
	buf, ct := multipartBody(t, "answer.txt", "some text", nil)
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}

func TestTranscriptHandler_WrongExtension(t *testing.T) {
	srv, _, _ := newTestServer()
	buf, ct := multipartBody(t, "resume.pdf", "%PDF-1.4 fake", map[string]string{"question_id": "q1"})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, rw.Result().StatusCode)
}

func TestTranscriptHandler_BinaryContentRejected(t *testing.T) {
	srv, _, _ := newTestServer()
	buf, ct := multipartBody(t, "fake.txt", "%PDF-1.4 binary pretending to be text", map[string]string{"question_id": "q1"})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}

func TestTranscriptHandler_NotMultipart(t *testing.T) {
	srv, _, _ := newTestServer()
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", bytes.NewReader([]byte(`{"question_id":"q1"}`)))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}

func TestTranscriptHandler_InvalidModalityJSON(t *testing.T) {
	srv, _, _ := newTestServer()
	buf, ct := multipartBody(t, "answer.txt", "fine text", map[string]string{
		"question_id": "q1",
		"modality":    "{broken",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/transcript", buf)
	r.Header.Set("Content-Type", ct)
	r.Header.Set("Accept", "application/json")
	rw := httptest.NewRecorder()
	srv.TranscriptHandler()(rw, r)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
}
