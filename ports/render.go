package ports

import (
	"github.com/goki/mat32"

	"vrtask/domain/geometry"
)

// StimulusID names a visual element the engine can show or hide. Rendering
// itself is a collaborator concern; the engine only issues commands and
// never reads display state back.
type StimulusID string

const (
	StimulusDots        StimulusID = "dots"
	StimulusFixation    StimulusID = "fixation"
	StimulusResponse    StimulusID = "response"
	StimulusInstruction StimulusID = "instruction"
	StimulusCalTarget   StimulusID = "calibration_target"
)

// MotionParams describes one random-dot presentation. DistractorSeed
// reseeds the non-coherent dot headings so every presentation re-randomizes
// them independently.
type MotionParams struct {
	DirectionDeg   float32
	Coherence      float64
	DistractorSeed int64
}

// RenderPort is the command sink for everything visual. Calls are fire and
// forget; the renderer owns all actual drawing.
type RenderPort interface {
	SetVisible(id StimulusID, visible bool)
	MoveFixation(pos mat32.Vec3)
	MoveStimulus(pos mat32.Vec3)
	SetEyeMask(mask geometry.Mask)
	SetMotion(params MotionParams)

	// SetCursorIndex highlights one of the four response options, or
	// clears the highlight with -1.
	SetCursorIndex(i int)

	// SetInstructionPage asks the renderer to display a given page of the
	// active instruction set.
	SetInstructionPage(page int)

	// Calibration target commands.
	MoveCalTarget(pos mat32.Vec3)
	SignalHold()
	FlashCue()
	ReleaseCalibration()
}
