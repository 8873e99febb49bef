package usecase

import (
	"github.com/fairyhunter13/interview-eval/internal/domain"
)

// QuestionService provides read access to the question catalog.
type QuestionService struct {
	Repo domain.QuestionRepository
}

// NewQuestionService constructs a QuestionService with the given repo.
func NewQuestionService(r domain.QuestionRepository) QuestionService { return QuestionService{Repo: r} }

// QuestionView is the public shape of a catalog question. The reference
// answer is deliberately absent so clients cannot echo it back.
type QuestionView struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Category string `json:"category,omitempty"`
}

// Get loads a question by id and strips the reference answer.
func (s QuestionService) Get(ctx domain.Context, id string) (QuestionView, error) {
	q, err := s.Repo.Get(ctx, id)
	if err != nil {
		return QuestionView{}, err
	}
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Category: q.Category}, nil
}
