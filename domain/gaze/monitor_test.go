package gaze

import (
	"testing"
	"time"

	"github.com/goki/mat32"

	"vrtask/internal/errors"
	"vrtask/internal/testkit"
)

func TestNewMonitor_RequiresSampler(t *testing.T) {
	_, err := NewMonitor(nil, 0.5)
	if err == nil {
		t.Fatal("expected configuration error for missing gaze source")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Fatalf("expected CONFIG_INVALID, got %s", errors.GetCode(err))
	}
}

func TestIsFixatedStatic_OrAcrossEyes(t *testing.T) {
	target := Target{Position: mat32.Vec3{X: 0, Y: 0, Z: 1}}
	tests := []struct {
		name  string
		left  mat32.Vec3
		right mat32.Vec3
		want  bool
	}{
		{name: "both eyes on target", left: mat32.Vec3{}, right: mat32.Vec3{}, want: true},
		{name: "left only", left: mat32.Vec3{X: 0.1, Y: 0.1}, right: mat32.Vec3{X: 5, Y: 5}, want: true},
		{name: "right only", left: mat32.Vec3{X: 5, Y: 5}, right: mat32.Vec3{X: -0.1, Y: 0.1}, want: true},
		{name: "neither eye", left: mat32.Vec3{X: 5, Y: 5}, right: mat32.Vec3{X: -5, Y: -5}, want: false},
		{name: "x within but y outside", left: mat32.Vec3{X: 0.1, Y: 2}, right: mat32.Vec3{X: 0, Y: -2}, want: false},
		{name: "y within but x outside", left: mat32.Vec3{X: 2, Y: 0.1}, right: mat32.Vec3{X: -2, Y: 0}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &testkit.ScriptedGaze{Left: tt.left, Right: tt.right}
			m, err := NewMonitor(src, 0.5)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.IsFixatedStatic(target); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSetThreshold(t *testing.T) {
	src := &testkit.ScriptedGaze{Left: mat32.Vec3{X: 0.3, Y: 0}, Right: mat32.Vec3{X: 5, Y: 5}}
	m, err := NewMonitor(src, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	target := Target{}

	if !m.IsFixatedStatic(target) {
		t.Fatal("expected fixation under coarse threshold")
	}
	if err := m.SetThreshold(0.1); err != nil {
		t.Fatal(err)
	}
	if m.IsFixatedStatic(target) {
		t.Fatal("expected no fixation under tight threshold")
	}

	if err := m.SetThreshold(-1); err == nil {
		t.Fatal("expected rejection of negative threshold")
	}
	if m.Threshold() != 0.1 {
		t.Fatalf("rejected setter must not change threshold, got %v", m.Threshold())
	}
}

func TestDurationGate_ExactDuration(t *testing.T) {
	g := NewDurationGate(500 * time.Millisecond)
	dt := 100 * time.Millisecond
	for i := 0; i < 4; i++ {
		if g.Observe(true, dt) {
			t.Fatalf("gate opened early at tick %d", i)
		}
	}
	if !g.Observe(true, dt) {
		t.Fatal("gate should open after exactly 500ms of contiguous fixation")
	}
}

// One failed sample, even one tick before completion, resets progress to
// zero rather than pausing it.
func TestDurationGate_ResetOnSingleMiss(t *testing.T) {
	g := NewDurationGate(500 * time.Millisecond)
	dt := 100 * time.Millisecond
	for i := 0; i < 4; i++ {
		g.Observe(true, dt)
	}
	if g.Observe(false, dt) {
		t.Fatal("failed sample must not open the gate")
	}
	if g.Elapsed() != 0 {
		t.Fatalf("expected progress reset to zero, got %v", g.Elapsed())
	}
	// A full contiguous run is required again.
	for i := 0; i < 4; i++ {
		if g.Observe(true, dt) {
			t.Fatalf("gate reopened early at tick %d after reset", i)
		}
	}
	if !g.Observe(true, dt) {
		t.Fatal("gate should open after a fresh contiguous run")
	}
}

func TestDurationGate_FixatedFlagTracksSamples(t *testing.T) {
	g := NewDurationGate(time.Second)
	g.Observe(true, 100*time.Millisecond)
	if !g.Fixated() {
		t.Fatal("expected fixated flag after success")
	}
	g.Observe(false, 100*time.Millisecond)
	if g.Fixated() {
		t.Fatal("expected fixated flag cleared after miss")
	}
}
