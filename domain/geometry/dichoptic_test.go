package geometry

import (
	"math"
	"testing"

	"vrtask/domain/condition"
)

const (
	testDistance = 10.0
	testInterEye = 0.064
	testAngle    = 15.0
	testVertical = 1.5
	testWidth    = 2.0
)

func newTestGeometry() *Dichoptic {
	return NewDichoptic(testDistance, testInterEye, testAngle, testVertical, testWidth)
}

func expectedOffset(width float64) float32 {
	return float32(testDistance*math.Tan(testAngle*math.Pi/180) + width/2 + testInterEye/2)
}

func TestOffsetFormula(t *testing.T) {
	d := newTestGeometry()
	want := expectedOffset(testWidth)
	if diff := d.Offset() - want; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("offset: expected %v, got %v", want, d.Offset())
	}
}

func TestSetStimulusWidth_Recomputes(t *testing.T) {
	d := newTestGeometry()
	before := d.Offset()
	d.SetStimulusWidth(4)
	if d.Offset() == before {
		t.Fatal("offset must change with stimulus width")
	}
	// Width enters as width/2.
	if diff := d.Offset() - (before + 1); diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("expected offset to grow by 1, got delta %v", d.Offset()-before)
	}
}

func TestSetActiveField_AnchorOffsets(t *testing.T) {
	d := newTestGeometry()
	offset := d.Offset()
	tests := []struct {
		name        string
		field       condition.VisualField
		lateralized bool
		wantX       float32
		wantMask    Mask
	}{
		{name: "left lateralized", field: condition.FieldLeft, lateralized: true, wantX: -offset, wantMask: MaskLeftEye},
		{name: "right lateralized", field: condition.FieldRight, lateralized: true, wantX: offset, wantMask: MaskRightEye},
		{name: "left central", field: condition.FieldLeft, lateralized: false, wantX: 0, wantMask: MaskLeftEye},
		{name: "right central", field: condition.FieldRight, lateralized: false, wantX: 0, wantMask: MaskRightEye},
		{name: "both lateralized flag ignored", field: condition.FieldBoth, lateralized: true, wantX: 0, wantMask: MaskBoth},
		{name: "both central", field: condition.FieldBoth, lateralized: false, wantX: 0, wantMask: MaskBoth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := d.SetActiveField(tt.field, tt.lateralized)
			if p.Anchor.X != tt.wantX {
				t.Errorf("anchor X: expected %v, got %v", tt.wantX, p.Anchor.X)
			}
			if p.Mask != tt.wantMask {
				t.Errorf("mask: expected %v, got %v", tt.wantMask, p.Mask)
			}
			if p.Fixation.X != 0 {
				t.Errorf("fixation must stay horizontally centered, got X=%v", p.Fixation.X)
			}
			if p.Fixation.Y != testVertical || p.Anchor.Y != testVertical {
				t.Errorf("vertical placement: fixation Y=%v anchor Y=%v", p.Fixation.Y, p.Anchor.Y)
			}
		})
	}
}
