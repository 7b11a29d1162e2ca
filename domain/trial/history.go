package trial

import "vrtask/domain/condition"

// History is the ordered trial record of a block, oldest first. The
// orchestrator owns it; consumers only scan it.
type History []*Record

// LastMatching scans backward and returns the closest trial with the same
// presentation mode and visual field, or nil if none exists in the block.
func (h History) LastMatching(mode condition.Mode, field condition.VisualField) *Record {
	for i := len(h) - 1; i >= 0; i-- {
		r := h[i]
		if r.Condition.Mode == mode && r.Field == field {
			return r
		}
	}
	return nil
}

// Matching returns every trial with the given mode and field, preserving
// chronological order.
func (h History) Matching(mode condition.Mode, field condition.VisualField) History {
	var out History
	for _, r := range h {
		if r.Condition.Mode == mode && r.Field == field {
			out = append(out, r)
		}
	}
	return out
}

// Coherences extracts the coherence value of each trial in order.
func (h History) Coherences() []float64 {
	out := make([]float64, len(h))
	for i, r := range h {
		out[i] = r.Coherence
	}
	return out
}
