// Package sim provides a scripted participant for headless runs: it plays
// the render, gaze and input ports at once, fixating whatever target the
// engine shows and answering with a configurable accuracy. Useful for
// piloting timelines and staircase settings without a headset.
package sim

import (
	"math/rand"
	"time"

	"github.com/goki/mat32"

	"vrtask/domain/geometry"
	"vrtask/domain/trial"
	"vrtask/ports"
)

// Participant simulates one observer. Not safe for concurrent use; the
// engine is single-threaded and the driver calls Advance between ticks.
type Participant struct {
	rng *rand.Rand

	// Accuracy is the probability of a correct answer.
	Accuracy float64
	// GazeNoise is the per-axis jitter around the fixated target.
	GazeNoise float32
	// DecideAfter is how long the participant looks at the response
	// affordance before committing.
	DecideAfter time.Duration

	fixation  mat32.Vec3
	calTarget mat32.Vec3
	visible   map[ports.StimulusID]bool

	motion       ports.MotionParams
	sinceRespond time.Duration
	answer       int
	pulsePhase   time.Duration
}

// NewParticipant creates a simulated observer with its own random stream.
func NewParticipant(seed int64, accuracy float64) *Participant {
	return &Participant{
		rng:         rand.New(rand.NewSource(seed)),
		Accuracy:    accuracy,
		GazeNoise:   0.02,
		DecideAfter: 400 * time.Millisecond,
		visible:     make(map[ports.StimulusID]bool),
		answer:      -1,
	}
}

// pulseCycle paces the idle trigger pulse that drives confirm gestures on
// instruction-style blocks.
const pulseCycle = 600 * time.Millisecond

// Advance moves the participant's internal behavior forward one tick.
func (p *Participant) Advance(dt time.Duration) {
	p.pulsePhase += dt
	if p.pulsePhase >= pulseCycle {
		p.pulsePhase -= pulseCycle
	}
	if !p.visible[ports.StimulusResponse] {
		p.sinceRespond = 0
		p.answer = -1
		return
	}
	p.sinceRespond += dt
	if p.answer < 0 && p.sinceRespond >= p.DecideAfter {
		p.decide()
	}
}

func (p *Participant) decide() {
	correctUp := p.motion.DirectionDeg == trial.DirectionUp
	answerUp := correctUp
	if p.rng.Float64() >= p.Accuracy {
		answerUp = !answerUp
	}
	sure := p.rng.Float64() < 0.7
	switch {
	case answerUp && sure:
		p.answer = 0
	case answerUp:
		p.answer = 1
	case !sure:
		p.answer = 2
	default:
		p.answer = 3
	}
}

// --- ports.GazePort ---

// Sample returns both eyes resting on the active target with a little
// jitter. The calibration target wins while it is visible.
func (p *Participant) Sample() (left, right mat32.Vec3) {
	target := p.fixation
	if p.visible[ports.StimulusCalTarget] {
		target = p.calTarget
	}
	return p.jitter(target), p.jitter(target)
}

func (p *Participant) jitter(v mat32.Vec3) mat32.Vec3 {
	return mat32.Vec3{
		X: v.X + (float32(p.rng.Float64())-0.5)*2*p.GazeNoise,
		Y: v.Y + (float32(p.rng.Float64())-0.5)*2*p.GazeNoise,
		Z: v.Z,
	}
}

// --- ports.InputPort ---

func (p *Participant) TriggerHeld(side ports.Side) bool {
	if p.visible[ports.StimulusResponse] {
		return p.answer >= 0
	}
	// Idle pulse: a short press at the top of each cycle, so confirm
	// gestures see a fresh released-to-held edge.
	return p.pulsePhase < 100*time.Millisecond
}

func (p *Participant) Thumbstick() mat32.Vec2 {
	switch p.answer {
	case 0:
		return mat32.Vec2{X: 0.5, Y: 1}
	case 1:
		return mat32.Vec2{X: -0.5, Y: 1}
	case 2:
		return mat32.Vec2{X: -0.5, Y: -1}
	case 3:
		return mat32.Vec2{X: 0.5, Y: -1}
	default:
		return mat32.Vec2{}
	}
}

// --- ports.RenderPort ---

func (p *Participant) SetVisible(id ports.StimulusID, visible bool) { p.visible[id] = visible }
func (p *Participant) MoveFixation(pos mat32.Vec3) { p.fixation = pos }
func (p *Participant) MoveStimulus(pos mat32.Vec3) {}
func (p *Participant) SetEyeMask(mask geometry.Mask) {}
func (p *Participant) SetMotion(params ports.MotionParams) { p.motion = params }
func (p *Participant) SetCursorIndex(i int) {}
func (p *Participant) SetInstructionPage(page int) {}
func (p *Participant) MoveCalTarget(pos mat32.Vec3) { p.calTarget = pos }
func (p *Participant) SignalHold() {}
func (p *Participant) FlashCue() {}
func (p *Participant) ReleaseCalibration() { p.visible[ports.StimulusCalTarget] = false }
