package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/interview-eval/internal/config"
	"github.com/fairyhunter13/interview-eval/internal/domain"
	"github.com/fairyhunter13/interview-eval/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Submit      usecase.SubmitService
	Transcripts usecase.TranscriptService
	Results     usecase.ResultService
	Questions   usecase.QuestionService
	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
	KafkaCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, submit usecase.SubmitService, transcripts usecase.TranscriptService, results usecase.ResultService, questions usecase.QuestionService, dbCheck, redisCheck, kafkaCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:         cfg,
		Submit:      submit,
		Transcripts: transcripts,
		Results:     results,
		Questions:   questions,
		DBCheck:     dbCheck,
		RedisCheck:  redisCheck,
		KafkaCheck:  kafkaCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// acceptsJSON rejects requests whose Accept header excludes JSON.
func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || a == "*/*" || strings.Contains(a, "application/json") {
		return true
	}
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "not acceptable",
		Details: map[string]any{"accept": a},
	}})
	return false
}

// submitRequest is the POST /v1/submit body.
type submitRequest struct {
	QuestionID string                  `json:"question_id" validate:"required,max=100"`
	AnswerText string                  `json:"answer_text"`
	Modality   *domain.ModalityMetrics `json:"modality,omitempty"`
}

// SubmitHandler accepts a typed answer and enqueues its evaluation.
func (s *Server) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		maxBody := s.Cfg.MaxAnswerBytes + 16*1024 // answer plus envelope headroom
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code:    "INVALID_ARGUMENT",
					Message: "payload too large",
					Details: map[string]any{"max_bytes": s.Cfg.MaxAnswerBytes},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		if int64(len(req.AnswerText)) > s.Cfg.MaxAnswerBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code:    "INVALID_ARGUMENT",
				Message: "answer too large",
				Details: map[string]any{"max_bytes": s.Cfg.MaxAnswerBytes},
			}})
			return
		}
		ctx := r.Context()
		subID, err := s.Submit.Submit(ctx, req.QuestionID, req.AnswerText, req.Modality, r.Header.Get("Idempotency-Key"), r.Header.Get("X-Request-Id"))
		if err != nil {
			writeError(w, r, fmt.Errorf("submit: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": subID, "status": string(domain.SubmissionQueued)})
	}
}

// TranscriptHandler accepts a multipart transcript upload plus a
// question id and funnels it into the submission flow.
func (s *Server) TranscriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxTranscriptMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			lower := strings.ToLower(err.Error())
			if strings.Contains(lower, "too large") || strings.Contains(lower, "request body too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code:    "INVALID_ARGUMENT",
					Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxTranscriptMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		questionID := r.FormValue("question_id")
		if questionID == "" {
			writeError(w, r, fmt.Errorf("%w: question_id required", domain.ErrInvalidArgument), map[string]string{"field": "question_id"})
			return
		}
		file, header, err := r.FormFile("transcript")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: transcript file required", domain.ErrInvalidArgument), map[string]string{"field": "transcript"})
			return
		}
		defer func() { _ = file.Close() }()
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".txt") {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code:    "INVALID_ARGUMENT",
				Message: "unsupported media type for transcript (extension)",
				Details: map[string]any{"filename": header.Filename},
			}})
			return
		}
		raw, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: transcript read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		// Optional modality metrics ride along as a JSON form field.
		var modality *domain.ModalityMetrics
		if mv := r.FormValue("modality"); mv != "" {
			var m domain.ModalityMetrics
			if err := json.Unmarshal([]byte(mv), &m); err != nil {
				writeError(w, r, fmt.Errorf("%w: invalid modality json", domain.ErrInvalidArgument), nil)
				return
			}
			modality = &m
		}

		ctx := r.Context()
		subID, err := s.Transcripts.Ingest(ctx, questionID, raw, modality, r.Header.Get("Idempotency-Key"), r.Header.Get("X-Request-Id"))
		if err != nil {
			writeError(w, r, fmt.Errorf("transcript ingest: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": subID, "status": string(domain.SubmissionQueued)})
	}
}

// ResultHandler returns submission status and result when completed.
func (s *Server) ResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: id missing", domain.ErrInvalidArgument), nil)
			return
		}
		ctx := r.Context()
		status, res, etag, err := s.Results.Fetch(ctx, id, r.Header.Get("If-None-Match"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("ETag", etag)
		if status != http.StatusNotModified {
			writeJSON(w, status, res)
		} else {
			w.WriteHeader(status)
		}
	}
}

// QuestionHandler returns a catalog question without its reference answer.
func (s *Server) QuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: id missing", domain.ErrInvalidArgument), nil)
			return
		}
		q, err := s.Questions.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// ReadyzHandler returns a readiness handler that probes DB, Redis and Kafka.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]usecase.ReadinessCheck, 0, 3)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, usecase.ReadinessCheck{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, usecase.ReadinessCheck{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, usecase.ReadinessCheck{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, usecase.ReadinessCheck{Name: "redis", OK: true})
			}
		}
		if s.KafkaCheck != nil {
			if err := s.KafkaCheck(ctx); err != nil {
				checks = append(checks, usecase.ReadinessCheck{Name: "kafka", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, usecase.ReadinessCheck{Name: "kafka", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
