// Package catalog loads interview questions from YAML files and seeds
// them into the question repository. Seeding is idempotent so the same
// file can be applied on every deploy.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/interview-eval/internal/domain"
)

type catalogYAML struct {
	Questions []catalogQuestion `yaml:"questions"`
}

type catalogQuestion struct {
	ID        string `yaml:"id"`
	Prompt    string `yaml:"prompt"`
	Reference string `yaml:"reference"`
	Category  string `yaml:"category"`
}

// LoadFile parses a YAML catalog file into domain questions. Entries
// missing a prompt or reference answer are rejected.
func LoadFile(path string) ([]domain.Question, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	abs = filepath.Clean(abs)
	wd = filepath.Clean(wd)
	if os.Getenv("CATALOG_ALLOW_ABSPATHS") != "1" {
		if !strings.HasPrefix(abs, wd+string(os.PathSeparator)) && abs != wd {
			return nil, fmt.Errorf("disallowed path: %s", abs)
		}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog file not found: %s", path)
		}
		return nil, err
	}
	return Parse(b)
}

// Parse decodes catalog YAML bytes into validated domain questions.
func Parse(b []byte) ([]domain.Question, error) {
	var doc catalogYAML
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("no questions in catalog")
	}
	out := make([]domain.Question, 0, len(doc.Questions))
	seen := make(map[string]struct{}, len(doc.Questions))
	for i, q := range doc.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		ref := strings.TrimSpace(q.Reference)
		if prompt == "" || ref == "" {
			return nil, fmt.Errorf("question %d: prompt and reference are required", i)
		}
		id := strings.TrimSpace(q.ID)
		if id != "" {
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("question %d: duplicate id %q", i, id)
			}
			seen[id] = struct{}{}
		}
		out = append(out, domain.Question{
			ID:        id,
			Prompt:    prompt,
			Reference: ref,
			Category:  strings.TrimSpace(q.Category),
		})
	}
	return out, nil
}

// Seed upserts all questions into the repository. Questions with an id
// keep it so re-seeding updates in place.
func Seed(ctx domain.Context, repo domain.QuestionRepository, questions []domain.Question) error {
	for _, q := range questions {
		id, err := repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("seed question %q: %w", q.Prompt, err)
		}
		slog.Info("question seeded", slog.String("question_id", id), slog.String("category", q.Category))
	}
	return nil
}

// SeedFile loads a catalog file and upserts its questions.
func SeedFile(ctx domain.Context, repo domain.QuestionRepository, path string) (int, error) {
	qs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := Seed(ctx, repo, qs); err != nil {
		return 0, err
	}
	return len(qs), nil
}
