// Package augment samples randomized augmentation plans for training
// batches: separable Gaussian blur kernels, mixup mixing weights, and
// randomly composed pipelines of layers.
//
// Sampling is split from application. Layers draw their parameters from an
// explicit Source and return transform values describing what to apply;
// running the pixel math belongs to the training pipeline that consumes the
// plans.
package augment

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source supplies the randomness augmentation sampling consumes. Passing it
// explicitly keeps plans reproducible: the same seed yields the same stream
// of transforms.
type Source interface {
	// Float32 returns a uniform draw from [0, 1).
	Float32() float32
	// Uniform returns a uniform draw from [min, max). Equal bounds return min.
	Uniform(min, max float32) float32
	// Gamma returns a draw from the gamma distribution with the given shape
	// (alpha) and rate parameters.
	Gamma(alpha, rate float64) float64
	// Perm returns a random permutation of [0, n).
	Perm(n int) []int
}

type randSource struct {
	rng *rand.Rand
}

// NewSource returns a deterministic Source seeded with seed.
func NewSource(seed uint64) Source {
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Float32() float32 { return s.rng.Float32() }

func (s *randSource) Uniform(min, max float32) float32 {
	return min + s.rng.Float32()*(max-min)
}

func (s *randSource) Gamma(alpha, rate float64) float64 {
	return distuv.Gamma{Alpha: alpha, Beta: rate, Src: s.rng}.Rand()
}

func (s *randSource) Perm(n int) []int { return s.rng.Perm(n) }
