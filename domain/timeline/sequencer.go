package timeline

import "vrtask/domain/condition"

// Shuffler is the slice of the random port the sequencer needs.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Sequencer builds the randomized order of condition assignments for a
// phase. Training and main sequences are built by independent calls with
// independent shuffles.
type Sequencer struct {
	rng Shuffler
}

// NewSequencer creates a sequencer drawing from the given random source.
func NewSequencer(rng Shuffler) *Sequencer {
	return &Sequencer{rng: rng}
}

// Build returns a flat sequence containing exactly count entries per
// presentation mode, uniformly shuffled. A positive override replaces
// every per-mode count (the debug-sized run). count <= 0 for a mode
// contributes nothing.
func (s *Sequencer) Build(counts map[condition.Mode]int, override int) []condition.Mode {
	var seq []condition.Mode
	for _, m := range condition.Modes() {
		n, ok := counts[m]
		if !ok {
			continue
		}
		if override > 0 {
			n = override
		}
		for i := 0; i < n; i++ {
			seq = append(seq, m)
		}
	}
	s.rng.Shuffle(len(seq), func(i, j int) {
		seq[i], seq[j] = seq[j], seq[i]
	})
	return seq
}
