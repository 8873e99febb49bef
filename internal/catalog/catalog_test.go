package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-eval/internal/catalog"
	"github.com/fairyhunter13/interview-eval/internal/domain"
)

const sampleYAML = `
questions:
  - id: q-behavioral-1
    prompt: "Tell me about a time you disagreed with a teammate."
    reference: "described the disagreement, listened to the other side, found a shared outcome"
    category: behavioral
  - prompt: "Explain how a hash map works."
    reference: "array of buckets indexed by hash of the key, collisions resolved by chaining or probing"
    category: technical
`

type recordingRepo struct {
	created []domain.Question
	err     error
}

func (r *recordingRepo) Create(_ domain.Context, q domain.Question) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.created = append(r.created, q)
	if q.ID == "" {
		return "generated-id", nil
	}
	return q.ID, nil
}

func (r *recordingRepo) Get(_ domain.Context, _ string) (domain.Question, error) {
	return domain.Question{}, domain.ErrNotFound
}

func TestParse_Valid(t *testing.T) {
	qs, err := catalog.Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "q-behavioral-1", qs[0].ID)
	assert.Equal(t, "behavioral", qs[0].Category)
	assert.Empty(t, qs[1].ID)
	assert.Equal(t, "technical", qs[1].Category)
}

func TestParse_MissingReference(t *testing.T) {
	_, err := catalog.Parse([]byte("questions:\n  - prompt: \"only a prompt\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")
}

func TestParse_Empty(t *testing.T) {
	_, err := catalog.Parse([]byte("questions: []\n"))
	assert.Error(t, err)
}

func TestParse_DuplicateID(t *testing.T) {
	y := `
questions:
  - id: dup
    prompt: "p1"
    reference: "r1"
  - id: dup
    prompt: "p2"
    reference: "r2"
`
	_, err := catalog.Parse([]byte(y))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParse_BadYAML(t *testing.T) {
	_, err := catalog.Parse([]byte("questions: [unterminated"))
	assert.Error(t, err)
}

func TestSeed_UpsertsAll(t *testing.T) {
	qs, err := catalog.Parse([]byte(sampleYAML))
	require.NoError(t, err)
	repo := &recordingRepo{}
	require.NoError(t, catalog.Seed(context.Background(), repo, qs))
	assert.Len(t, repo.created, 2)
}

func TestSeed_RepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db down")}
	err := catalog.Seed(context.Background(), repo, []domain.Question{{Prompt: "p", Reference: "r"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	t.Setenv("CATALOG_ALLOW_ABSPATHS", "1")

	repo := &recordingRepo{}
	n, err := catalog.SeedFile(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv("CATALOG_ALLOW_ABSPATHS", "1")
	_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadFile_OutsideWorkingDir(t *testing.T) {
	_, err := catalog.LoadFile("/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disallowed")
}
