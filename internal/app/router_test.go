package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	httpserver "github.com/fairyhunter13/interview-eval/internal/adapter/httpserver"
	"github.com/fairyhunter13/interview-eval/internal/app"
	"github.com/fairyhunter13/interview-eval/internal/config"
	"github.com/fairyhunter13/interview-eval/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, app.ParseOrigins(" https://a.example, https://b.example "))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , "))
}

func newRouter() http.Handler {
	cfg := config.Config{
		Port:            8080,
		MaxAnswerBytes:  65536,
		MaxTranscriptMB: 2,
		RateLimitPerMin: 100,
	}
	srv := httpserver.NewServer(cfg, usecase.SubmitService{}, usecase.TranscriptService{},
		usecase.ResultService{}, usecase.QuestionService{}, nil, nil, nil)
	return app.BuildRouter(cfg, srv, nil)
}

func TestRouter_Healthz(t *testing.T) {
	h := newRouter()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rw.Result().StatusCode)
	assert.Equal(t, "nosniff", rw.Result().Header.Get("X-Content-Type-Options"))
}

func TestRouter_Metrics(t *testing.T) {
	h := newRouter()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rw.Result().StatusCode)
}

func TestRouter_Readyz_NoChecksConfigured(t *testing.T) {
	h := newRouter()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rw.Result().StatusCode)
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newRouter()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rw.Result().StatusCode)
}
