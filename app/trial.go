package app

import (
	"context"
	"math"
	"time"

	"github.com/goki/mat32"

	"vrtask/domain/condition"
	"vrtask/domain/gaze"
	"vrtask/domain/staircase"
	"vrtask/domain/trial"
	"vrtask/internal/errors"
	"vrtask/ports"
)

// trialStep enumerates the suspension points of one trial. Each step is
// advanced by ticks; the next step only begins when the current wait
// completes.
type trialStep int

const (
	stepGate     trialStep = iota // fixation (or fixed delay) before onset
	stepDisplay                   // stimulus visible for its display duration
	stepResponse                  // four-option held-response collection
)

// activeTrial is the in-flight trial state. Exactly one exists at a time.
type activeTrial struct {
	rec  *trial.Record
	mode condition.Mode
	step trialStep

	// stepGate
	gate   *gaze.DurationGate // nil when fixation gating is disabled
	delay  time.Duration
	target gaze.Target

	// stepDisplay
	displayFor time.Duration

	// stepResponse
	latency     time.Duration
	selection   int
	holdElapsed time.Duration
}

// The four response options in cursor order: direction crossed with
// confidence.
var responseOptions = [4]trial.Response{
	{Direction: trial.DirectionUp, Confidence: trial.ConfidenceSure},
	{Direction: trial.DirectionUp, Confidence: trial.ConfidenceGuess},
	{Direction: trial.DirectionDown, Confidence: trial.ConfidenceGuess},
	{Direction: trial.DirectionDown, Confidence: trial.ConfidenceSure},
}

// stickDeadzone is the minimum vertical deflection that counts as a
// selection.
const stickDeadzone = 0.3

// handleTrials drives the demo, training and main blocks: start the next
// trial when none is in flight, otherwise advance the active one.
func (e *Engine) handleTrials(dt time.Duration) {
	if e.trial == nil {
		if e.timelineExhausted() {
			e.finishTrialBlock()
			return
		}
		if err := e.RunTrial(); err != nil {
			e.log.Error("trial start failed: %v", err)
			e.finishTrialBlock()
		}
		return
	}
	e.tickTrial(dt)
}

func (e *Engine) timelineExhausted() bool {
	switch e.session.ActiveBlock {
	case BlockDemo:
		return e.session.DemoRemaining <= 0
	case BlockTraining:
		return e.session.TrainingPos >= len(e.session.TrainingTimeline)
	case BlockMain:
		return e.session.MainPos >= len(e.session.MainTimeline)
	}
	return true
}

// RunTrial opens the next trial of the active block: response input is
// ignored, the fixation target is shown, and the stimulus waits on
// sustained fixation (or a fixed pre-display interval).
func (e *Engine) RunTrial() error {
	if e.session == nil || e.session.Status != StatusRunning {
		return errors.InvalidInput("no running session")
	}
	if !stimulusBearing(e.session.ActiveBlock) {
		return errors.InvalidInput("active block has no trials")
	}
	if e.trial != nil {
		return errors.InvalidInput("a trial is already in flight")
	}

	var mode condition.Mode
	var ordinal int
	switch e.session.ActiveBlock {
	case BlockDemo:
		mode = condition.ModeBinocular
		ordinal = e.cfg.Session.DemoTrials - e.session.DemoRemaining + 1
	case BlockTraining:
		mode = e.session.TrainingTimeline[e.session.TrainingPos]
		ordinal = e.session.TrainingPos + 1
	case BlockMain:
		mode = e.session.MainTimeline[e.session.MainPos]
		ordinal = e.session.MainPos + 1
	}

	cond := condition.Condition{Mode: mode, Phase: phaseFor(e.session.ActiveBlock)}
	rec := trial.NewRecord(cond, ordinal, e.clock.Now())

	placement := e.geom.SetActiveField(mode.Field(), mode.Lateralized())
	e.render.MoveFixation(placement.Fixation)
	e.render.MoveStimulus(placement.Anchor)
	e.render.SetEyeMask(placement.Mask)
	e.render.SetVisible(ports.StimulusResponse, false)
	e.render.SetCursorIndex(-1)
	e.render.SetVisible(ports.StimulusDots, false)
	e.render.SetVisible(ports.StimulusFixation, true)

	at := &activeTrial{
		rec:       rec,
		mode:      mode,
		step:      stepGate,
		target:    gaze.Target{Position: placement.Fixation},
		selection: -1,
	}
	if e.cfg.Fixation.Require {
		if err := e.monitor.SetThreshold(float32(e.cfg.Fixation.TrialThreshold)); err != nil {
			e.log.Warn("fixation threshold rejected: %v", err)
		}
		at.gate = gaze.NewDurationGate(e.cfg.Fixation.Hold)
	} else {
		at.delay = e.cfg.Stimulus.PreDisplayDelay
	}
	e.trial = at
	e.log.Debug("trial %d (%s) opened", ordinal, cond)
	return nil
}

func (e *Engine) tickTrial(dt time.Duration) {
	at := e.trial
	switch at.step {
	case stepGate:
		var done bool
		if at.gate != nil {
			done = at.gate.Observe(e.monitor.IsFixatedStatic(at.target), dt)
		} else {
			at.delay -= dt
			done = at.delay <= 0
		}
		if done {
			e.beginDisplay()
		}
	case stepDisplay:
		at.displayFor -= dt
		if at.displayFor <= 0 {
			e.beginResponse()
		}
	case stepResponse:
		at.latency += dt
		e.sampleResponse(dt)
	}
}

// beginDisplay selects the trial's motion direction and coherence, then
// shows the stimulus for the configured display duration.
func (e *Engine) beginDisplay() {
	at := e.trial
	rec := at.rec

	if e.rng.Float64() < 0.5 {
		rec.Direction = trial.DirectionUp
	} else {
		rec.Direction = trial.DirectionDown
	}

	switch e.session.ActiveBlock {
	case BlockTraining:
		rec.Coherence = e.stair.GetCoherence(at.mode)
		rec.CoherenceSource = trial.SourceStaircase
	case BlockMain:
		rec.Coherence, rec.CoherenceSource = e.session.Pairs[at.mode].Choose(e.rng)
	default:
		rec.Coherence = e.cfg.Session.DemoCoherence
		rec.CoherenceSource = trial.SourceFixed
	}

	e.render.SetMotion(ports.MotionParams{
		DirectionDeg:   rec.Direction,
		Coherence:      rec.Coherence,
		DistractorSeed: int64(e.rng.IntN(math.MaxInt32)),
	})
	e.render.SetVisible(ports.StimulusDots, true)
	at.displayFor = e.cfg.Stimulus.DisplayDuration
	at.step = stepDisplay
}

// beginResponse hides the stimulus and presents the four-option response
// affordance. Latency counts from here.
func (e *Engine) beginResponse() {
	at := e.trial
	e.render.SetVisible(ports.StimulusDots, false)
	e.render.SetVisible(ports.StimulusResponse, true)
	at.latency = 0
	at.selection = -1
	at.holdElapsed = 0
	at.step = stepResponse
}

// sampleResponse reads the thumbstick and triggers once per tick. Changing
// the selection or releasing the trigger resets hold progress; a selection
// held past the threshold confirms the answer.
func (e *Engine) sampleResponse(dt time.Duration) {
	at := e.trial
	sel := optionFromStick(e.input.Thumbstick())
	if sel != at.selection {
		at.selection = sel
		at.holdElapsed = 0
		e.render.SetCursorIndex(sel)
	}
	held := e.input.TriggerHeld(ports.SideLeft) || e.input.TriggerHeld(ports.SideRight)
	if sel < 0 || !held {
		at.holdElapsed = 0
		return
	}
	at.holdElapsed += dt
	if at.holdElapsed >= e.cfg.Stimulus.ResponseHold {
		e.scoreTrial(responseOptions[sel])
	}
}

// optionFromStick maps the two-axis signal onto the four options: vertical
// deflection picks the direction, horizontal sign picks the confidence.
// Returns -1 inside the deadzone.
func optionFromStick(stick mat32.Vec2) int {
	if stick.Y > -stickDeadzone && stick.Y < stickDeadzone {
		return -1
	}
	up := stick.Y > 0
	sure := stick.X >= 0
	switch {
	case up && sure:
		return 0
	case up:
		return 1
	case !up && !sure:
		return 2
	default:
		return 3
	}
}

// scoreTrial resolves correctness, applies the staircase on training
// trials, and closes the record.
func (e *Engine) scoreTrial(resp trial.Response) {
	at := e.trial
	rec := at.rec
	rec.Response = resp
	rec.Correct = resp.Direction == rec.Direction
	rec.Latency = at.latency

	if e.session.ActiveBlock == BlockTraining {
		// History still excludes the current trial; the lookback rule
		// depends on that ordering.
		e.stair.Update(at.mode, rec.Field, rec.Correct, rec.Coherence, e.session.History)
	}
	e.EndTrial()
}

// EndTrial closes the active trial record, persists it, and advances the
// timeline. Trial N+1 can only begin after this runs.
func (e *Engine) EndTrial() {
	at := e.trial
	if at == nil {
		return
	}
	rec := at.rec
	rec.Close(e.clock.Now())
	e.session.History = append(e.session.History, rec)

	switch e.session.ActiveBlock {
	case BlockDemo:
		e.session.DemoRemaining--
	case BlockTraining:
		e.session.TrainingPos++
	case BlockMain:
		e.session.MainPos++
	}

	// Demo trials are practice, not experiment data.
	if e.session.ActiveBlock != BlockDemo {
		if err := e.store.WriteTrial(context.Background(), string(e.session.ID), rec); err != nil {
			e.log.Error("trial persist failed: %v", err)
		}
	}

	e.render.SetVisible(ports.StimulusResponse, false)
	e.render.SetCursorIndex(-1)
	e.trial = nil
	e.log.Debug("trial %d closed: correct=%v coherence=%.3f", rec.Ordinal, rec.Correct, rec.Coherence)
}

// finishTrialBlock runs when a block's timeline is exhausted. Exhaustion is
// the normal termination signal, not an error.
func (e *Engine) finishTrialBlock() {
	switch e.session.ActiveBlock {
	case BlockTraining:
		e.session.TrainingHistory = e.session.History
		e.derivePairs()
	case BlockMain:
		e.session.MainHistory = e.session.History
	}
	e.render.SetVisible(ports.StimulusFixation, false)
	e.advanceBlock()
}

// derivePairs computes the (low, high) pair for every condition once
// training ends. A condition with no usable history degrades to a pair
// split from its final staircase value.
func (e *Engine) derivePairs() {
	for _, m := range condition.Modes() {
		pair, err := staircase.DerivePair(e.session.TrainingHistory, m, m.Field())
		if err != nil {
			fallback := clampPair(e.stair.GetCoherence(m))
			e.log.Warn("pair derivation for %s degraded (%v); using staircase value", m, err)
			pair = fallback
		}
		e.session.Pairs[m] = pair
		e.log.Info("condition %s pair: low=%.3f high=%.3f", m, pair.Low, pair.High)
	}
}

func clampPair(m float64) staircase.Pair {
	if m < staircase.PairClampMin {
		m = staircase.PairClampMin
	}
	if m > staircase.PairClampMax {
		m = staircase.PairClampMax
	}
	return staircase.Pair{Low: 0.5 * m, High: 2 * m}
}
