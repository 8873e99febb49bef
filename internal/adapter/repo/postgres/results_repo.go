package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// ResultRepo persists and loads evaluation results from PostgreSQL.
type ResultRepo struct{ Pool PgxPool }

// NewResultRepo constructs a ResultRepo with the given pool.
func NewResultRepo(p PgxPool) *ResultRepo { return &ResultRepo{Pool: p} }

// Upsert inserts or updates a result by submission_id. Modality metrics
// are stored as jsonb since all of their fields are optional.
func (r *ResultRepo) Upsert(ctx domain.Context, res domain.EvaluationResult) error {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.Upsert")
	defer span.End()
	var modality []byte
	if res.Modality != nil {
		b, err := json.Marshal(res.Modality)
		if err != nil {
			return fmt.Errorf("op=result.upsert: %w", err)
		}
		modality = b
	}
	sql := `INSERT INTO results (submission_id, confidence, clarity, relevance, composite, grade, strengths, improvements, summary, modality, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (submission_id)
	DO UPDATE SET confidence=EXCLUDED.confidence, clarity=EXCLUDED.clarity, relevance=EXCLUDED.relevance, composite=EXCLUDED.composite, grade=EXCLUDED.grade, strengths=EXCLUDED.strengths, improvements=EXCLUDED.improvements, summary=EXCLUDED.summary, modality=EXCLUDED.modality`
	_, err := r.Pool.Exec(ctx, sql,
		res.SubmissionID,
		res.SubScores.Confidence, res.SubScores.Clarity, res.SubScores.Relevance,
		res.Composite.Value, string(res.Composite.Grade),
		res.Strengths, res.Improvements, res.Summary, modality, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=result.upsert: %w", err)
	}
	return nil
}

// GetBySubmissionID loads a result by its submission_id.
func (r *ResultRepo) GetBySubmissionID(ctx domain.Context, submissionID string) (domain.EvaluationResult, error) {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.GetBySubmissionID")
	defer span.End()
	sql := `SELECT submission_id, confidence, clarity, relevance, composite, grade, strengths, improvements, summary, modality, created_at FROM results WHERE submission_id=$1`
	row := r.Pool.QueryRow(ctx, sql, submissionID)
	var res domain.EvaluationResult
	var grade string
	var modality []byte
	if err := row.Scan(&res.SubmissionID,
		&res.SubScores.Confidence, &res.SubScores.Clarity, &res.SubScores.Relevance,
		&res.Composite.Value, &grade,
		&res.Strengths, &res.Improvements, &res.Summary, &modality, &res.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return domain.EvaluationResult{}, fmt.Errorf("op=result.get: %w", domain.ErrNotFound)
		}
		return domain.EvaluationResult{}, fmt.Errorf("op=result.get: %w", err)
	}
	res.Composite.Grade = domain.GradeBand(grade)
	if len(modality) > 0 {
		var m domain.ModalityMetrics
		if err := json.Unmarshal(modality, &m); err != nil {
			return domain.EvaluationResult{}, fmt.Errorf("op=result.get: %w", err)
		}
		res.Modality = &m
	}
	return res, nil
}
