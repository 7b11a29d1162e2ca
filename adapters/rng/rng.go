// Package rng provides the seeded random source adapter. One seeded
// instance makes an entire session reproducible: timeline shuffles,
// direction draws and pair selections all replay identically.
package rng

import "math/rand"

// Seeded wraps math/rand behind the engine's random port.
type Seeded struct {
	r *rand.Rand
}

// New creates a deterministic random source for the given seed.
func New(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0, 1).
func (s *Seeded) Float64() float64 { return s.r.Float64() }

// IntN returns a uniform value in [0, n).
func (s *Seeded) IntN(n int) int { return s.r.Intn(n) }

// Shuffle applies a uniform permutation over n elements.
func (s *Seeded) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }
