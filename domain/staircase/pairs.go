package staircase

import (
	"github.com/montanaflynn/stats"

	"vrtask/domain/condition"
	"vrtask/domain/trial"
	"vrtask/internal/errors"
)

// Pair derivation parameters: the median is taken over the most recent
// window of training trials, clamped before the low/high split.
const (
	PairWindow   = 20
	PairClampMin = 0.12
	PairClampMax = 0.5
)

// Pair is the fixed (low, high) coherence pair a main-phase condition runs
// at. Immutable once derived.
type Pair struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Chooser is the slice of the random port pair selection needs.
type Chooser interface {
	Float64() float64
}

// Choose picks low or high uniformly at random for one main-phase trial and
// reports which was taken.
func (p Pair) Choose(rng Chooser) (float64, trial.CoherenceSource) {
	if rng.Float64() < 0.5 {
		return p.Low, trial.SourcePairLow
	}
	return p.High, trial.SourcePairHigh
}

// DerivePair computes the main-phase coherence pair for a condition from
// its training history: the most recent PairWindow matching trials (fewer
// if the history is shorter), median, clamp to [PairClampMin, PairClampMax],
// then (0.5×median, 2×median). An empty matching history is a
// data-insufficiency condition reported to the caller; it is the caller's
// job to degrade gracefully.
func DerivePair(history trial.History, mode condition.Mode, field condition.VisualField) (Pair, error) {
	matched := history.Matching(mode, field)
	if len(matched) == 0 {
		return Pair{}, errors.DataInsufficient("no training trials for " + string(mode))
	}

	values := matched.Coherences()
	// Most-recent-first, then keep the window.
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	if len(values) > PairWindow {
		values = values[:PairWindow]
	}

	m, err := stats.Median(values)
	if err != nil {
		return Pair{}, errors.Wrap(err, "median over training coherences")
	}
	m = clamp(m, PairClampMin, PairClampMax)
	return Pair{Low: 0.5 * m, High: 2 * m}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
