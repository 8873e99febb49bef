package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// QuestionRepo persists and loads catalog questions using a minimal pgx pool.
type QuestionRepo struct{ Pool PgxPool }

// NewQuestionRepo constructs a QuestionRepo with the given pool.
func NewQuestionRepo(p PgxPool) *QuestionRepo { return &QuestionRepo{Pool: p} }

// Create stores a question and returns its id (generates one if empty).
// Existing rows with the same id are updated so catalog seeding stays
// idempotent.
func (r *QuestionRepo) Create(ctx domain.Context, q domain.Question) (string, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "questions"),
	)
	id := q.ID
	if id == "" {
		id = uuid.New().String()
	}
	sql := `INSERT INTO questions (id, prompt, reference, category, created_at) VALUES ($1,$2,$3,$4,$5)
	ON CONFLICT (id) DO UPDATE SET prompt=EXCLUDED.prompt, reference=EXCLUDED.reference, category=EXCLUDED.category`
	_, err := r.Pool.Exec(ctx, sql, id, q.Prompt, q.Reference, q.Category, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=question.create: %w", err)
	}
	return id, nil
}

// Get loads a question by id.
func (r *QuestionRepo) Get(ctx domain.Context, id string) (domain.Question, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "questions"),
	)
	sql := `SELECT id, prompt, reference, COALESCE(category,''), created_at FROM questions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, sql, id)
	var q domain.Question
	if err := row.Scan(&q.ID, &q.Prompt, &q.Reference, &q.Category, &q.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Question{}, fmt.Errorf("op=question.get: %w", domain.ErrNotFound)
		}
		return domain.Question{}, fmt.Errorf("op=question.get: %w", err)
	}
	return q, nil
}
