package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// SubmissionRepo persists and loads submissions from PostgreSQL.
type SubmissionRepo struct{ Pool PgxPool }

// NewSubmissionRepo constructs a SubmissionRepo with the given pool.
func NewSubmissionRepo(p PgxPool) *SubmissionRepo { return &SubmissionRepo{Pool: p} }

// Create inserts a new submission and returns its id.
func (r *SubmissionRepo) Create(ctx domain.Context, s domain.Submission) (string, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.Create")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	sql := `INSERT INTO submissions (id, question_id, status, error, created_at, updated_at, idempotency_key) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.Pool.Exec(ctx, sql, id, s.QuestionID, s.Status, s.Error, time.Now().UTC(), time.Now().UTC(), s.IdemKey)
	if err != nil {
		return "", fmt.Errorf("op=submission.create: %w", err)
	}
	return id, nil
}

// UpdateStatus updates a submission's status and optional error message.
func (r *SubmissionRepo) UpdateStatus(ctx domain.Context, id string, status domain.SubmissionStatus, errMsg *string) error {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.UpdateStatus")
	defer span.End()
	sql := `UPDATE submissions SET status=$2, error=$3, updated_at=$4 WHERE id=$1`
	// Map nil errMsg to empty string to satisfy NOT NULL constraint on error column
	errVal := ""
	if errMsg != nil {
		errVal = *errMsg
	}
	_, err := r.Pool.Exec(ctx, sql, id, status, errVal, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=submission.update_status: %w", err)
	}
	return nil
}

// Get loads a submission by id.
func (r *SubmissionRepo) Get(ctx domain.Context, id string) (domain.Submission, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.Get")
	defer span.End()
	sql := `SELECT id, question_id, status, COALESCE(error,''), created_at, updated_at, idempotency_key FROM submissions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, sql, id)
	var s domain.Submission
	var idem *string
	if err := row.Scan(&s.ID, &s.QuestionID, &s.Status, &s.Error, &s.CreatedAt, &s.UpdatedAt, &idem); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Submission{}, fmt.Errorf("op=submission.get: %w", domain.ErrNotFound)
		}
		return domain.Submission{}, fmt.Errorf("op=submission.get: %w", err)
	}
	s.IdemKey = idem
	return s, nil
}

// FindByIdempotencyKey loads a submission by idempotency key.
func (r *SubmissionRepo) FindByIdempotencyKey(ctx domain.Context, key string) (domain.Submission, error) {
	tracer := otel.Tracer("repo.submissions")
	ctx, span := tracer.Start(ctx, "submissions.FindByIdempotencyKey")
	defer span.End()
	sql := `SELECT id, question_id, status, COALESCE(error,''), created_at, updated_at, idempotency_key FROM submissions WHERE idempotency_key=$1 LIMIT 1`
	row := r.Pool.QueryRow(ctx, sql, key)
	var s domain.Submission
	var idem *string
	if err := row.Scan(&s.ID, &s.QuestionID, &s.Status, &s.Error, &s.CreatedAt, &s.UpdatedAt, &idem); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Submission{}, fmt.Errorf("op=submission.find_idem: %w", domain.ErrNotFound)
		}
		return domain.Submission{}, fmt.Errorf("op=submission.find_idem: %w", err)
	}
	s.IdemKey = idem
	return s, nil
}
