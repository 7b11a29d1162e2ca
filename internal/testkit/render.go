package testkit

import (
	"github.com/goki/mat32"

	"vrtask/domain/geometry"
	"vrtask/ports"
)

// RecordingRender captures every render command so tests can assert on the
// presentation the engine requested.
type RecordingRender struct {
	Visible  map[ports.StimulusID]bool
	Fixation mat32.Vec3
	Stimulus mat32.Vec3
	CalPos   mat32.Vec3
	Mask     geometry.Mask
	Motion   ports.MotionParams
	Cursor   int
	Page     int

	HoldSignals int
	Flashes     int
	Releases    int
	MotionSets  int
}

// NewRecordingRender creates an empty recorder.
func NewRecordingRender() *RecordingRender {
	return &RecordingRender{
		Visible: make(map[ports.StimulusID]bool),
		Cursor:  -1,
	}
}

func (r *RecordingRender) SetVisible(id ports.StimulusID, visible bool) { r.Visible[id] = visible }
func (r *RecordingRender) MoveFixation(pos mat32.Vec3) { r.Fixation = pos }
func (r *RecordingRender) MoveStimulus(pos mat32.Vec3) { r.Stimulus = pos }
func (r *RecordingRender) SetEyeMask(mask geometry.Mask) { r.Mask = mask }
func (r *RecordingRender) SetCursorIndex(i int) { r.Cursor = i }
func (r *RecordingRender) SetInstructionPage(page int) { r.Page = page }
func (r *RecordingRender) MoveCalTarget(pos mat32.Vec3) { r.CalPos = pos }
func (r *RecordingRender) SignalHold() { r.HoldSignals++ }
func (r *RecordingRender) FlashCue() { r.Flashes++ }

func (r *RecordingRender) ReleaseCalibration() {
	r.Releases++
	r.Visible[ports.StimulusCalTarget] = false
}

func (r *RecordingRender) SetMotion(params ports.MotionParams) {
	r.Motion = params
	r.MotionSets++
}
