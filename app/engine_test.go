package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrtask/domain/condition"
	"vrtask/domain/staircase"
	"vrtask/domain/trial"
	"vrtask/internal"
	"vrtask/internal/config"
	"vrtask/internal/errors"
	"vrtask/internal/testkit"
	"vrtask/ports"
)

// testConfig is a debug-sized session tuned for tick-by-tick driving.
func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Seed:                       1,
			TrainingTrialsPerCondition: 4,
			MainTrialsPerCondition:     2,
			InitialCoherence:           0.5,
			DemoTrials:                 1,
			DemoCoherence:              0.8,
			InstructionPages:           2,
		},
		Stimulus: config.StimulusConfig{
			DisplayDuration:  100 * time.Millisecond,
			PreDisplayDelay:  50 * time.Millisecond,
			ResponseHold:     50 * time.Millisecond,
			InputDelay:       50 * time.Millisecond,
			OffsetAngleDeg:   15,
			StimulusDistance: 10,
			InterEyeDistance: 0.064,
			StimulusWidth:    2,
			VerticalOffset:   1.5,
		},
		Fixation: config.FixationConfig{
			Require:        true,
			Hold:           100 * time.Millisecond,
			TrialThreshold: 0.5,
		},
		Calibration: config.CalibrationConfig{
			SamplesPerWaypoint:  2,
			HoldInterval:        20 * time.Millisecond,
			SetupThreshold:      0.5,
			ValidationThreshold: 0.25,
		},
	}
}

// harness wires the engine to scripted collaborators and automates the
// participant: gaze follows the active target, confirm blocks get pulsed
// trigger edges, and responses follow the supplied option script.
type harness struct {
	t      *testing.T
	engine *Engine
	render *testkit.RecordingRender
	gaze   *testkit.ScriptedGaze
	input  *testkit.ScriptedInput
	clock  *testkit.FakeClock
	store  *testkit.MemoryStore

	dt       time.Duration
	script   func(answered int) int
	answered int
	pulse    bool
}

func newHarness(t *testing.T, cfg *config.Config, rng ports.RNGPort) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		render: testkit.NewRecordingRender(),
		gaze:   &testkit.ScriptedGaze{},
		input:  &testkit.ScriptedInput{},
		clock:  testkit.NewFakeClock(),
		store:  &testkit.MemoryStore{},
		dt:     50 * time.Millisecond,
		script: func(int) int { return 0 },
	}
	engine, err := NewEngine(Deps{
		RNG:    rng,
		Gaze:   h.gaze,
		Input:  h.input,
		Clock:  h.clock,
		Render: h.render,
		Store:  h.store,
		Log:    internal.NewLogger(internal.LogLevelError),
	})
	require.NoError(t, err)
	require.NoError(t, engine.GenerateExperiment(cfg))
	h.engine = engine
	return h
}

func (h *harness) tick() {
	// Gaze follows whatever the engine is currently presenting.
	if h.render.Visible[ports.StimulusCalTarget] {
		h.gaze.LookAt(h.render.CalPos)
	} else {
		h.gaze.LookAt(h.render.Fixation)
	}

	respVisible := h.render.Visible[ports.StimulusResponse]
	if respVisible {
		h.input.SelectOption(h.script(h.answered))
	} else {
		// Pulse the trigger so confirm gestures see fresh edges.
		h.pulse = !h.pulse
		h.input.Release()
		h.input.Held = h.pulse
	}

	h.engine.Tick(h.dt)
	h.clock.Advance(h.dt)

	if respVisible && !h.render.Visible[ports.StimulusResponse] {
		h.answered++
	}
}

func (h *harness) runUntil(cond func() bool, maxTicks int) {
	h.t.Helper()
	for i := 0; i < maxTicks; i++ {
		if cond() {
			return
		}
		h.tick()
	}
	if !cond() {
		h.t.Fatalf("condition not reached within %d ticks (block=%s)", maxTicks, h.engine.GetActiveBlock())
	}
}

func (h *harness) runUntilBlock(b Block, maxTicks int) {
	h.t.Helper()
	h.runUntil(func() bool { return h.engine.GetActiveBlock() == b }, maxTicks)
}

func TestNewEngine_RequiresAllPorts(t *testing.T) {
	deps := Deps{
		RNG:    &testkit.FixedRNG{},
		Gaze:   &testkit.ScriptedGaze{},
		Input:  &testkit.ScriptedInput{},
		Clock:  testkit.NewFakeClock(),
		Render: testkit.NewRecordingRender(),
		Store:  &testkit.MemoryStore{},
	}
	tests := []struct {
		name  string
		strip func(*Deps)
	}{
		{"missing rng", func(d *Deps) { d.RNG = nil }},
		{"missing gaze", func(d *Deps) { d.Gaze = nil }},
		{"missing input", func(d *Deps) { d.Input = nil }},
		{"missing clock", func(d *Deps) { d.Clock = nil }},
		{"missing render", func(d *Deps) { d.Render = nil }},
		{"missing store", func(d *Deps) { d.Store = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := deps
			tt.strip(&d)
			_, err := NewEngine(d)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestBeginExperiment_RequiresGeneration(t *testing.T) {
	h := newHarness(t, testConfig(), &testkit.FixedRNG{Values: []float64{0}})
	// Fresh engine without generation.
	e, err := NewEngine(Deps{
		RNG:    &testkit.FixedRNG{},
		Gaze:   h.gaze,
		Input:  h.input,
		Clock:  h.clock,
		Render: h.render,
		Store:  h.store,
		Log:    internal.NewLogger(internal.LogLevelError),
	})
	require.NoError(t, err)
	require.Error(t, e.BeginExperiment())
}

// replayStaircase recomputes the expected per-trial coherence for one
// condition with the staircase rule, from a script of correctness flags.
func replayStaircase(initial float64, correct []bool) []float64 {
	value := initial
	out := make([]float64, len(correct))
	prevCorrect := false
	prevCoherence := -1.0
	for i, c := range correct {
		out[i] = value
		if !c {
			value += staircase.Step
		} else if prevCorrect && prevCoherence == value {
			value -= staircase.Step
		}
		prevCorrect = c
		prevCoherence = out[i]
	}
	return out
}

// The full scripted session: calibration, setup, instructions, demo,
// training with a deterministic response script, pair derivation, main
// phase, end. Coherence values must reproduce the staircase rule
// bit-for-bit and the derived pairs must be deterministic.
func TestEngine_EndToEndScriptedSession(t *testing.T) {
	cfg := testConfig()
	// Identity shuffle: training timeline is 4 contiguous trials per mode
	// in canonical order; Float64 always 0 picks direction Up and the low
	// pair value.
	h := newHarness(t, cfg, &testkit.FixedRNG{Values: []float64{0}})

	// Response script: demo trial answers correct; each mode's 4 training
	// trials run correct, correct, incorrect, correct; main trials all
	// correct. Option 0 is up/sure (correct, direction is always Up),
	// option 3 is down/sure (incorrect).
	trainingPattern := []bool{true, true, false, true}
	h.script = func(answered int) int {
		if answered == 0 {
			return 0 // demo
		}
		trainingIdx := answered - 1
		if trainingIdx < 20 {
			if trainingPattern[trainingIdx%4] {
				return 0
			}
			return 3
		}
		return 0 // main
	}

	require.NoError(t, h.engine.BeginExperiment())
	assert.Equal(t, BlockFit, h.engine.GetActiveBlock())
	assert.True(t, h.engine.GetCalibrationActive())

	h.runUntilBlock(BlockSetup, 2000)
	assert.True(t, h.engine.GetCalibrationComplete())

	h.runUntilBlock(BlockTraining, 2000)
	h.runUntilBlock(BlockBreak, 20000)

	// Training produced 4 trials per mode; per-mode coherences follow the
	// staircase replay exactly.
	session := h.engine.GetSession()
	require.Len(t, session.TrainingHistory, 20)
	expected := replayStaircase(cfg.Session.InitialCoherence, trainingPattern)
	for _, mode := range condition.Modes() {
		matched := session.TrainingHistory.Matching(mode, mode.Field())
		require.Len(t, matched, 4, "mode %s", mode)
		for i, rec := range matched {
			assert.Equal(t, expected[i], rec.Coherence, "mode %s trial %d", mode, i)
			assert.Equal(t, trial.SourceStaircase, rec.CoherenceSource)
			assert.Equal(t, trainingPattern[i], rec.Correct, "mode %s trial %d", mode, i)
		}
	}

	// Derived pairs are deterministic and match a direct derivation over
	// the same history.
	for _, mode := range condition.Modes() {
		pair, err := staircase.DerivePair(session.TrainingHistory, mode, mode.Field())
		require.NoError(t, err)
		assert.Equal(t, pair, session.Pairs[mode], "mode %s", mode)
	}

	h.runUntilBlock(BlockMain, 2000)
	h.runUntil(func() bool {
		return h.engine.GetExperimentStatus().Status == StatusComplete
	}, 20000)

	// Main trials all took the low pair value.
	require.Len(t, session.MainHistory, 10)
	for _, rec := range session.MainHistory {
		assert.Equal(t, trial.SourcePairLow, rec.CoherenceSource)
		assert.Equal(t, session.Pairs[rec.Condition.Mode].Low, rec.Coherence)
		assert.True(t, rec.Closed())
	}

	// Demo trials are not persisted: 20 training + 10 main records.
	assert.Len(t, h.store.Records, 30)
	for _, rec := range h.store.Records {
		assert.NotEqual(t, condition.PhaseDemo, rec.Condition.Phase)
	}
}

func TestEngine_ForceEndLeavesPartialTrial(t *testing.T) {
	cfg := testConfig()
	h := newHarness(t, cfg, &testkit.FixedRNG{Values: []float64{0}})
	require.NoError(t, h.engine.BeginExperiment())

	h.runUntilBlock(BlockTraining, 20000)
	// Let a trial open, then pull the plug mid-flight.
	h.runUntil(func() bool { return h.render.Visible[ports.StimulusDots] }, 2000)
	h.engine.ForceEnd()
	h.tick()

	assert.Equal(t, StatusAborted, h.engine.GetExperimentStatus().Status)
	// The in-flight record was never closed or persisted.
	for _, rec := range h.store.Records {
		assert.True(t, rec.Closed())
	}
	// Further ticks are inert once the session is gone.
	before := len(h.store.Records)
	h.tick()
	h.tick()
	assert.Len(t, h.store.Records, before)
}

func TestEngine_FixationGatesStimulusOnset(t *testing.T) {
	cfg := testConfig()
	h := newHarness(t, cfg, &testkit.FixedRNG{Values: []float64{0}})
	require.NoError(t, h.engine.BeginExperiment())
	h.runUntilBlock(BlockTraining, 20000)

	// Open the first trial, then look away: the stimulus must never come
	// up while fixation is broken.
	h.tick()
	for i := 0; i < 50; i++ {
		h.gaze.LookAway()
		h.input.Release()
		h.engine.Tick(h.dt)
		h.clock.Advance(h.dt)
		assert.False(t, h.render.Visible[ports.StimulusDots], "stimulus shown without fixation")
	}

	// Restore fixation: the stimulus appears after the hold duration.
	shown := false
	for i := 0; i < 10; i++ {
		h.gaze.LookAt(h.render.Fixation)
		h.engine.Tick(h.dt)
		h.clock.Advance(h.dt)
		if h.render.Visible[ports.StimulusDots] {
			shown = true
			break
		}
	}
	assert.True(t, shown, "stimulus should appear once fixation is sustained")
}

func TestEngine_RunTrialGuards(t *testing.T) {
	h := newHarness(t, testConfig(), &testkit.FixedRNG{Values: []float64{0}})
	// No running session yet.
	require.Error(t, h.engine.RunTrial())

	require.NoError(t, h.engine.BeginExperiment())
	// Fit block bears no trials.
	err := h.engine.RunTrial()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
