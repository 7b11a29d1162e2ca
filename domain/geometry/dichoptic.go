package geometry

import (
	"github.com/goki/mat32"

	"vrtask/domain/condition"
)

// Mask selects which per-eye rendering surfaces stay active. Applying it is
// the renderer's job; the engine only computes which mask a presentation
// needs.
type Mask string

const (
	MaskBoth     Mask = "both"
	MaskLeftEye  Mask = "left_eye"
	MaskRightEye Mask = "right_eye"
)

// Placement is the result of activating a visual field: where the fixation
// target and the stimulus anchor go, and which eyes see the stimulus.
type Placement struct {
	Fixation mat32.Vec3
	Anchor   mat32.Vec3
	Mask     Mask
}

// Dichoptic converts an angular eccentricity into the world-space lateral
// displacement used for lateralized presentation, accounting for the
// stimulus-plane distance, the stimulus width and the inter-eye separation.
type Dichoptic struct {
	Distance       float32 // stimulus plane distance from the head
	InterEye       float32 // inter-eye separation
	AngleDeg       float32 // lateral eccentricity
	VerticalOffset float32 // fixed vertical placement of fixation and stimulus

	stimulusWidth float32
	offset        float32
}

// NewDichoptic computes the initial lateral offset from the given geometry.
func NewDichoptic(distance, interEye, angleDeg, verticalOffset, stimulusWidth float32) *Dichoptic {
	d := &Dichoptic{
		Distance:       distance,
		InterEye:       interEye,
		AngleDeg:       angleDeg,
		VerticalOffset: verticalOffset,
		stimulusWidth:  stimulusWidth,
	}
	d.recompute()
	return d
}

// Offset returns the current lateral displacement.
func (d *Dichoptic) Offset() float32 { return d.offset }

// StimulusWidth returns the width the offset was computed against.
func (d *Dichoptic) StimulusWidth() float32 { return d.stimulusWidth }

// SetStimulusWidth updates the stimulus width and recomputes the offset.
// Recomputation is caller-triggered only; nothing watches the width.
func (d *Dichoptic) SetStimulusWidth(w float32) {
	d.stimulusWidth = w
	d.recompute()
}

func (d *Dichoptic) recompute() {
	d.offset = d.Distance*mat32.Tan(mat32.DegToRad(d.AngleDeg)) +
		d.stimulusWidth/2 + d.InterEye/2
}

// SetActiveField resolves where a presentation goes. The fixation target
// always sits at the vertical offset with horizontal zero. The stimulus
// anchor shifts by -offset for the left field and +offset for the right,
// but only under lateralized presentation; monocular-central and binocular
// presentations keep it horizontally centered.
func (d *Dichoptic) SetActiveField(field condition.VisualField, lateralized bool) Placement {
	p := Placement{
		Fixation: mat32.Vec3{X: 0, Y: d.VerticalOffset, Z: d.Distance},
		Anchor:   mat32.Vec3{X: 0, Y: d.VerticalOffset, Z: d.Distance},
		Mask:     MaskBoth,
	}
	switch field {
	case condition.FieldLeft:
		p.Mask = MaskLeftEye
		if lateralized {
			p.Anchor.X = -d.offset
		}
	case condition.FieldRight:
		p.Mask = MaskRightEye
		if lateralized {
			p.Anchor.X = d.offset
		}
	}
	return p
}
