package eval

import (
	"math/rand"
	"sync"
)

// Jitter produces a small signed offset added to fused scores so that
// repeated evaluations of identical input do not render visibly
// identical numbers. It is cosmetic noise, not a scoring signal, and is
// injectable so tests can disable it for exact reproducibility.
type Jitter interface {
	// Offset returns a value in [-bound, bound].
	Offset(bound float64) float64
}

// NoJitter is the default source: always zero, fully deterministic.
type NoJitter struct{}

// Offset implements Jitter.
func (NoJitter) Offset(float64) float64 { return 0 }

// BoundedJitter draws uniform offsets from a seeded generator. A mutex
// guards the generator so one instance can serve an engine shared by a
// worker pool.
type BoundedJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBoundedJitter constructs a seeded jitter source.
func NewBoundedJitter(seed int64) *BoundedJitter {
	return &BoundedJitter{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // cosmetic noise, not security sensitive
}

// Offset implements Jitter.
func (j *BoundedJitter) Offset(bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return (j.rng.Float64()*2 - 1) * bound
}
