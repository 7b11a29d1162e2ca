// Package testkit provides scripted collaborators for engine tests: a fake
// clock, a positionable gaze source, a settable input state and a
// deterministic random source. Suspension points can be stepped tick by
// tick without a real clock or device.
package testkit

import (
	"time"

	"github.com/goki/mat32"

	"vrtask/ports"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	now time.Time
}

// NewFakeClock starts at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the clock forward.
func (c *FakeClock) Advance(dt time.Duration) { c.now = c.now.Add(dt) }

// ScriptedGaze returns whatever eye positions the test sets.
type ScriptedGaze struct {
	Left  mat32.Vec3
	Right mat32.Vec3
}

// LookAt points both eyes at a position.
func (g *ScriptedGaze) LookAt(pos mat32.Vec3) {
	g.Left = pos
	g.Right = pos
}

// LookAway points both eyes far off every plausible target.
func (g *ScriptedGaze) LookAway() {
	g.LookAt(mat32.Vec3{X: 100, Y: 100, Z: 1})
}

func (g *ScriptedGaze) Sample() (left, right mat32.Vec3) {
	return g.Left, g.Right
}

// ScriptedInput is a settable controller state.
type ScriptedInput struct {
	Held  bool
	Stick mat32.Vec2
}

func (i *ScriptedInput) TriggerHeld(side ports.Side) bool { return i.Held }
func (i *ScriptedInput) Thumbstick() mat32.Vec2           { return i.Stick }

// Release clears all input.
func (i *ScriptedInput) Release() {
	i.Held = false
	i.Stick = mat32.Vec2{}
}

// SelectOption deflects the stick onto one of the four response options in
// cursor order and holds the trigger.
func (i *ScriptedInput) SelectOption(option int) {
	switch option {
	case 0:
		i.Stick = mat32.Vec2{X: 0.5, Y: 1}
	case 1:
		i.Stick = mat32.Vec2{X: -0.5, Y: 1}
	case 2:
		i.Stick = mat32.Vec2{X: -0.5, Y: -1}
	case 3:
		i.Stick = mat32.Vec2{X: 0.5, Y: -1}
	default:
		i.Stick = mat32.Vec2{}
	}
	i.Held = option >= 0
}

// FixedRNG replays a scripted float sequence and applies the identity
// permutation, keeping timelines in build order.
type FixedRNG struct {
	Values []float64
	pos    int
}

func (r *FixedRNG) Float64() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	v := r.Values[r.pos%len(r.Values)]
	r.pos++
	return v
}

func (r *FixedRNG) IntN(n int) int { return 0 }

func (r *FixedRNG) Shuffle(n int, swap func(i, j int)) {}
