package staircase

import (
	"vrtask/domain/condition"
	"vrtask/domain/trial"
	"vrtask/internal/errors"
)

// Step is the fixed staircase increment.
const Step = 0.01

// State is the mutable difficulty of one training condition. The value is
// deliberately unclamped: the raw staircase may drift outside [0,1]; only
// the derived coherence pair is bounded (see pairs.go).
type State struct {
	Coherence float64 `json:"coherence"`
}

// Controller holds one independent staircase per training condition and
// applies the 1-up/1-down rule with a two-in-a-row confirmation for
// decreases:
//
//   - incorrect response: coherence += Step, always
//   - correct response: coherence -= Step only when the closest preceding
//     trial of the same mode and visual field in the current block was also
//     correct and used the same coherence; otherwise unchanged
type Controller struct {
	states map[condition.Mode]*State
}

// NewController creates one staircase per presentation mode, all starting
// at the given coherence.
func NewController(initial float64) *Controller {
	states := make(map[condition.Mode]*State, len(condition.Modes()))
	for _, m := range condition.Modes() {
		states[m] = &State{Coherence: initial}
	}
	return &Controller{states: states}
}

// GetCoherence returns the current staircase value for a mode.
func (c *Controller) GetCoherence(mode condition.Mode) float64 {
	return c.states[mode].Coherence
}

// SetCoherence overrides a staircase value. Values outside [0,1] are
// rejected with no state change: external setters must stay in range even
// though the staircase itself may drift out of it.
func (c *Controller) SetCoherence(mode condition.Mode, v float64) error {
	if v < 0 || v > 1 {
		return errors.InvalidInput("coherence must be in [0,1]")
	}
	if !mode.Valid() {
		return errors.InvalidInput("unknown presentation mode")
	}
	c.states[mode].Coherence = v
	return nil
}

// Update applies the staircase rule after a training trial's outcome is
// known. coherence is the value the just-finished trial used; history is
// the ordered trial record of the active block, not yet including the
// current trial.
func (c *Controller) Update(mode condition.Mode, field condition.VisualField, correct bool, coherence float64, history trial.History) {
	st := c.states[mode]
	if !correct {
		st.Coherence += Step
		return
	}
	prev := history.LastMatching(mode, field)
	if prev == nil {
		// No earlier trial of this condition in the block; skip the
		// decrease rule.
		return
	}
	if prev.Correct && prev.Coherence == coherence {
		st.Coherence -= Step
	}
}
