package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// staleAfter bounds how long a submission may sit queued or processing
// before readers see it as failed.
const staleAfter = 2 * time.Minute

// ResultService provides read access to evaluation results and assembles
// the API response envelope including ETag logic and error mapping.
type ResultService struct {
	Submissions domain.SubmissionRepository
	Results     domain.ResultRepository
}

// NewResultService constructs a ResultService with the given repositories.
func NewResultService(s domain.SubmissionRepository, r domain.ResultRepository) ResultService {
	return ResultService{Submissions: s, Results: r}
}

// Fetch returns the HTTP status code, response body, and ETag for the given
// submission id. It implements conditional responses (304 Not Modified)
// based on If-None-Match and returns proper shapes for queued/processing/
// failed states.
func (s ResultService) Fetch(ctx domain.Context, id, ifNoneMatch string) (int, map[string]any, string, error) {
	sub, err := s.Submissions.Get(ctx, id)
	if err != nil {
		slog.Error("failed to get submission", slog.String("submission_id", id), slog.Any("error", err))
		if errors.Is(err, domain.ErrNotFound) {
			return http.StatusNotFound, nil, "", fmt.Errorf("%w: submission not found", domain.ErrNotFound)
		}
		return http.StatusInternalServerError, nil, "", err
	}
	if sub.Status != domain.SubmissionCompleted {
		// Stale policy: queued/processing beyond the window flips to failed.
		now := time.Now().UTC()
		stale := false
		if sub.Status == domain.SubmissionQueued && now.Sub(sub.CreatedAt) > staleAfter {
			stale = true
		}
		if sub.Status == domain.SubmissionProcessing && now.Sub(sub.UpdatedAt) > staleAfter {
			stale = true
		}
		if stale {
			slog.Warn("submission marked as stale",
				slog.String("submission_id", id),
				slog.String("status", string(sub.Status)),
				slog.Duration("age", now.Sub(sub.CreatedAt)))
			msg := "timeout: evaluation exceeded 2 minutes"
			_ = s.Submissions.UpdateStatus(ctx, id, domain.SubmissionFailed, &msg)
			sub.Status = domain.SubmissionFailed
			sub.Error = msg
		}
		m := map[string]any{"id": id, "status": string(sub.Status)}
		if sub.Status == domain.SubmissionFailed {
			m["error"] = map[string]any{
				"code":    errorCodeFromSubmissionError(sub.Error),
				"message": sub.Error,
			}
		}
		etag := makeETag(m)
		if etag == ifNoneMatch {
			return http.StatusNotModified, nil, etag, nil
		}
		return http.StatusOK, m, etag, nil
	}
	res, err := s.Results.GetBySubmissionID(ctx, id)
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}
	m := map[string]any{
		"id": id, "status": string(domain.SubmissionCompleted),
		"result": map[string]any{
			"sub_scores": map[string]any{
				"confidence": res.SubScores.Confidence,
				"clarity":    res.SubScores.Clarity,
				"relevance":  res.SubScores.Relevance,
			},
			"composite":    res.Composite.Value,
			"grade":        string(res.Composite.Grade),
			"strengths":    res.Strengths,
			"improvements": res.Improvements,
			"summary":      res.Summary,
		},
	}
	if res.Modality != nil {
		m["result"].(map[string]any)["modality"] = res.Modality
	}
	etag := makeETag(m)
	if etag == ifNoneMatch {
		return http.StatusNotModified, nil, etag, nil
	}
	return http.StatusOK, m, etag, nil
}

func makeETag(v any) string {
	b, _ := json.Marshal(v)
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// errorCodeFromSubmissionError maps a stored error message to a stable code.
func errorCodeFromSubmissionError(msg string) string {
	s := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case strings.Contains(s, "timeout"), strings.Contains(s, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(s, "not found"), strings.Contains(s, "question lookup failed"):
		return "NOT_FOUND"
	case strings.Contains(s, "invalid argument"):
		return "INVALID_ARGUMENT"
	case strings.Contains(s, "rate limit"):
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
