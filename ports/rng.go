package ports

// RNGPort provides the uniform random primitives the engine consumes:
// timeline shuffles, motion-direction draws, distractor reseeds and
// coherence-pair selection. Adapters seed it so sessions are reproducible.
type RNGPort interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64

	// IntN returns a uniform value in [0, n). Panics if n <= 0.
	IntN(n int) int

	// Shuffle applies a uniform permutation over n elements.
	Shuffle(n int, swap func(i, j int))
}
