package condition

import "fmt"

// Mode identifies how the stimulus is presented to the participant's eyes.
type Mode string

const (
	ModeBinocular        Mode = "binocular"
	ModeMonocularLeft    Mode = "monocular_left"
	ModeMonocularRight   Mode = "monocular_right"
	ModeLateralizedLeft  Mode = "lateralized_left"
	ModeLateralizedRight Mode = "lateralized_right"
)

// Phase distinguishes training trials (staircase-driven) from main trials
// (fixed low/high coherence pair).
type Phase string

const (
	PhaseTraining Phase = "training"
	PhaseMain     Phase = "main"
	PhaseDemo     Phase = "demo"
)

// VisualField names the hemifield (or both) a stimulus occupies.
type VisualField string

const (
	FieldLeft  VisualField = "left"
	FieldRight VisualField = "right"
	FieldBoth  VisualField = "both"
)

// Condition pairs a presentation mode with the experiment phase it runs in.
type Condition struct {
	Mode  Mode  `json:"mode"`
	Phase Phase `json:"phase"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s/%s", c.Phase, c.Mode)
}

// Modes returns every presentation mode in its canonical order. Training
// timelines, staircase initialization and pair derivation all iterate this
// order so that seeded runs are reproducible.
func Modes() []Mode {
	return []Mode{
		ModeBinocular,
		ModeMonocularLeft,
		ModeMonocularRight,
		ModeLateralizedLeft,
		ModeLateralizedRight,
	}
}

// Field returns the visual field a mode presents in.
func (m Mode) Field() VisualField {
	switch m {
	case ModeMonocularLeft, ModeLateralizedLeft:
		return FieldLeft
	case ModeMonocularRight, ModeLateralizedRight:
		return FieldRight
	default:
		return FieldBoth
	}
}

// Lateralized reports whether the mode shifts the stimulus into the
// peripheral visual field rather than presenting it centrally.
func (m Mode) Lateralized() bool {
	return m == ModeLateralizedLeft || m == ModeLateralizedRight
}

// Valid reports whether m is one of the five presentation modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeBinocular, ModeMonocularLeft, ModeMonocularRight,
		ModeLateralizedLeft, ModeLateralizedRight:
		return true
	}
	return false
}
