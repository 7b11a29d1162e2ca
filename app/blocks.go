package app

import "vrtask/domain/condition"

// Block names one phase of the session. Block order is fixed; trial indices
// within a block are 1-based and contiguous.
type Block string

const (
	BlockFit          Block = "calibration_fit"
	BlockSetup        Block = "setup"
	BlockInstructions Block = "instructions"
	BlockDemo         Block = "demo"
	BlockTraining     Block = "training"
	BlockBreak        Block = "break"
	BlockMain         Block = "main"
	BlockEnd          Block = "end"
)

// blockOrder is the fixed session structure. Boundaries are never
// reordered.
var blockOrder = []Block{
	BlockFit,
	BlockSetup,
	BlockInstructions,
	BlockDemo,
	BlockTraining,
	BlockBreak,
	BlockMain,
	BlockEnd,
}

// phaseFor maps a stimulus-bearing block to the condition phase its trials
// record.
func phaseFor(b Block) condition.Phase {
	switch b {
	case BlockTraining:
		return condition.PhaseTraining
	case BlockMain:
		return condition.PhaseMain
	default:
		return condition.PhaseDemo
	}
}

// stimulusBearing reports whether a block runs dot-motion trials.
func stimulusBearing(b Block) bool {
	return b == BlockDemo || b == BlockTraining || b == BlockMain
}
