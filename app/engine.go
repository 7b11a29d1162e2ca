package app

import (
	"time"

	"github.com/goki/mat32"

	"vrtask/domain/calibration"
	"vrtask/domain/condition"
	"vrtask/domain/gaze"
	"vrtask/domain/geometry"
	"vrtask/domain/staircase"
	"vrtask/domain/timeline"
	"vrtask/internal"
	"vrtask/internal/config"
	"vrtask/internal/errors"
	"vrtask/ports"
)

// Deps are the collaborator ports the engine consumes. Every reference is
// required; a missing one is a configuration error at construction.
type Deps struct {
	RNG    ports.RNGPort
	Gaze   ports.GazePort
	Input  ports.InputPort
	Clock  ports.ClockPort
	Render ports.RenderPort
	Store  ports.TrialStorePort
	Log    *internal.Logger
}

// Engine is the top-level trial state machine. It owns the session state,
// sequences blocks, gates stimuli on fixation, drives the staircases and
// calibration sweep, and issues presentation commands to the render port.
//
// The engine is single-threaded and cooperative: the external driver calls
// Tick once per display refresh; every wait is a resumable step advanced by
// ticks, never a blocking call.
type Engine struct {
	cfg *config.Config
	log *internal.Logger

	rng    ports.RNGPort
	gaze   ports.GazePort
	input  ports.InputPort
	clock  ports.ClockPort
	render ports.RenderPort
	store  ports.TrialStorePort

	monitor *gaze.Monitor
	geom    *geometry.Dichoptic
	stair   *staircase.Controller
	calib   *calibration.Machine
	seq     *timeline.Sequencer

	session  *Session
	handlers map[Block]func(dt time.Duration)
	trial    *activeTrial

	// Instruction/confirm block state.
	page      int
	pageDelay time.Duration
	prevHeld  bool

	forceEnd bool
}

// NewEngine validates the collaborator set and builds an idle engine.
func NewEngine(deps Deps) (*Engine, error) {
	switch {
	case deps.RNG == nil:
		return nil, errors.ConfigInvalid("random source is required")
	case deps.Gaze == nil:
		return nil, errors.ConfigInvalid("gaze source is required")
	case deps.Input == nil:
		return nil, errors.ConfigInvalid("response input is required")
	case deps.Clock == nil:
		return nil, errors.ConfigInvalid("clock is required")
	case deps.Render == nil:
		return nil, errors.ConfigInvalid("render sink is required")
	case deps.Store == nil:
		return nil, errors.ConfigInvalid("trial store is required")
	}
	log := deps.Log
	if log == nil {
		log = internal.DefaultLogger
	}
	e := &Engine{
		log:    log.With("engine"),
		rng:    deps.RNG,
		gaze:   deps.Gaze,
		input:  deps.Input,
		clock:  deps.Clock,
		render: deps.Render,
		store:  deps.Store,
		seq:    timeline.NewSequencer(deps.RNG),
	}
	e.handlers = map[Block]func(time.Duration){
		BlockFit:          e.handleFit,
		BlockSetup:        e.handleConfirm,
		BlockInstructions: e.handleInstructions,
		BlockDemo:         e.handleTrials,
		BlockTraining:     e.handleTrials,
		BlockBreak:        e.handleConfirm,
		BlockMain:         e.handleTrials,
		BlockEnd:          e.handleEnd,
	}
	return e, nil
}

// GenerateExperiment builds the randomized session: timelines for training
// and main, one staircase per training condition, the dichoptic geometry
// and the calibration sweep. Must be called before BeginExperiment.
func (e *Engine) GenerateExperiment(cfg *config.Config) error {
	if cfg == nil {
		return errors.ConfigInvalid("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	monitor, err := gaze.NewMonitor(e.gaze, float32(cfg.Fixation.TrialThreshold))
	if err != nil {
		return err
	}
	e.monitor = monitor

	e.geom = geometry.NewDichoptic(
		float32(cfg.Stimulus.StimulusDistance),
		float32(cfg.Stimulus.InterEyeDistance),
		float32(cfg.Stimulus.OffsetAngleDeg),
		float32(cfg.Stimulus.VerticalOffset),
		float32(cfg.Stimulus.StimulusWidth),
	)

	calCfg := calibration.Config{
		SamplesPerWaypoint:  cfg.Calibration.SamplesPerWaypoint,
		HoldInterval:        cfg.Calibration.HoldInterval,
		SetupThreshold:      float32(cfg.Calibration.SetupThreshold),
		ValidationThreshold: float32(cfg.Calibration.ValidationThreshold),
	}
	calib, err := calibration.NewMachine(calCfg, calibration.DefaultPath(), e.monitor, e.gaze, calDisplay{render: e.render})
	if err != nil {
		return err
	}
	e.calib = calib

	e.stair = staircase.NewController(cfg.Session.InitialCoherence)

	trainCounts := make(map[condition.Mode]int, len(condition.Modes()))
	mainCounts := make(map[condition.Mode]int, len(condition.Modes()))
	for _, m := range condition.Modes() {
		trainCounts[m] = cfg.Session.TrainingTrialsPerCondition
		mainCounts[m] = cfg.Session.MainTrialsPerCondition
	}
	override := cfg.Session.DebugTrialCount

	e.session = &Session{
		ID:               NewSessionID(),
		Status:           StatusGenerated,
		ActiveBlock:      blockOrder[0],
		TrainingTimeline: e.seq.Build(trainCounts, override),
		MainTimeline:     e.seq.Build(mainCounts, override),
		DemoRemaining:    cfg.Session.DemoTrials,
		Pairs:            make(map[condition.Mode]staircase.Pair),
	}
	e.trial = nil
	e.forceEnd = false

	e.log.Info("experiment generated: session=%s training=%d main=%d",
		e.session.ID, len(e.session.TrainingTimeline), len(e.session.MainTimeline))
	return nil
}

// BeginExperiment starts the session at the first block.
func (e *Engine) BeginExperiment() error {
	if e.session == nil || e.session.Status != StatusGenerated {
		return errors.InvalidInput("experiment must be generated before it begins")
	}
	e.session.Status = StatusRunning
	e.session.blockIndex = 0
	e.enterBlock(blockOrder[0])
	return nil
}

// Tick advances the session by one scheduling tick. It is the only driver
// entry point; everything the engine does happens inside it.
func (e *Engine) Tick(dt time.Duration) {
	if e.session == nil || e.session.Status != StatusRunning {
		return
	}
	if e.forceEnd {
		e.abort()
		return
	}
	e.handlers[e.session.ActiveBlock](dt)
}

// ForceEnd requests immediate termination. The flag is polled once per
// tick; the in-flight trial record is left in its partial state.
func (e *Engine) ForceEnd() {
	e.forceEnd = true
}

// GetActiveBlock returns the block currently running.
func (e *Engine) GetActiveBlock() Block {
	if e.session == nil {
		return ""
	}
	return e.session.ActiveBlock
}

// GetExperimentStatus returns a snapshot of session progress.
func (e *Engine) GetExperimentStatus() StatusReport {
	if e.session == nil {
		return StatusReport{Status: StatusIdle}
	}
	return StatusReport{
		Session:     e.session.ID,
		Status:      e.session.Status,
		ActiveBlock: e.session.ActiveBlock,
		TrainingPos: e.session.TrainingPos,
		TrainingLen: len(e.session.TrainingTimeline),
		MainPos:     e.session.MainPos,
		MainLen:     len(e.session.MainTimeline),
	}
}

// GetSession exposes the session state for reporting. Read-only by
// convention; external layers must not mutate it.
func (e *Engine) GetSession() *Session { return e.session }

// Calibration returns the calibration machine, for external analysis of
// its sample stores.
func (e *Engine) Calibration() *calibration.Machine { return e.calib }

// RunCalibration starts the two-phase calibration sweep. onComplete fires
// from the tick in which validation finishes.
func (e *Engine) RunCalibration(onComplete func()) error {
	if e.calib == nil {
		return errors.InvalidInput("experiment must be generated before calibration")
	}
	e.calib.Start(onComplete)
	return nil
}

// GetCalibrationActive reports whether a sweep is in progress.
func (e *Engine) GetCalibrationActive() bool {
	return e.calib != nil && e.calib.Active()
}

// GetCalibrationComplete reports whether the sweep has finished.
func (e *Engine) GetCalibrationComplete() bool {
	return e.calib != nil && e.calib.Complete()
}

// --- block sequencing ---

func (e *Engine) enterBlock(b Block) {
	e.session.ActiveBlock = b
	e.page = 0
	e.pageDelay = e.cfg.Stimulus.InputDelay
	e.prevHeld = true // swallow a gesture still held from the previous block
	if stimulusBearing(b) {
		e.session.History = nil
	}
	e.log.Info("entering block %s", b)

	switch b {
	case BlockFit:
		if err := e.RunCalibration(func() { e.advanceBlock() }); err != nil {
			e.log.Error("calibration start failed: %v", err)
			e.advanceBlock()
		}
	case BlockInstructions:
		e.render.SetVisible(ports.StimulusInstruction, true)
		e.render.SetInstructionPage(0)
	case BlockEnd:
		e.finishSession()
	}
}

func (e *Engine) advanceBlock() {
	prev := e.session.ActiveBlock
	if prev == BlockInstructions {
		e.render.SetVisible(ports.StimulusInstruction, false)
	}
	e.session.blockIndex++
	if e.session.blockIndex >= len(blockOrder) {
		e.finishSession()
		return
	}
	e.enterBlock(blockOrder[e.session.blockIndex])
}

func (e *Engine) handleFit(dt time.Duration) {
	e.calib.Tick(dt)
}

// handleConfirm runs the setup and break blocks: a minimal input delay,
// then a fresh confirm gesture advances.
func (e *Engine) handleConfirm(dt time.Duration) {
	if e.pageDelay > 0 {
		e.pageDelay -= dt
		return
	}
	if e.confirmGesture() {
		e.advanceBlock()
	}
}

// handleInstructions pages through the instruction set. Navigation is
// forward-only; the last page's confirm ends the block.
func (e *Engine) handleInstructions(dt time.Duration) {
	if e.pageDelay > 0 {
		e.pageDelay -= dt
		return
	}
	if !e.confirmGesture() {
		return
	}
	if e.page >= e.cfg.Session.InstructionPages-1 {
		e.advanceBlock()
		return
	}
	e.goToPage(e.page + 1)
	e.pageDelay = e.cfg.Stimulus.InputDelay
}

// goToPage moves the instruction display. Out-of-range pages are rejected
// with no state change.
func (e *Engine) goToPage(page int) {
	if page < 0 || page >= e.cfg.Session.InstructionPages {
		e.log.Warn("instruction page %d out of range [0,%d)", page, e.cfg.Session.InstructionPages)
		return
	}
	e.page = page
	e.render.SetInstructionPage(page)
}

// confirmGesture detects a released-to-held trigger transition on either
// hand, so one long press cannot advance twice.
func (e *Engine) confirmGesture() bool {
	held := e.input.TriggerHeld(ports.SideLeft) || e.input.TriggerHeld(ports.SideRight)
	confirmed := held && !e.prevHeld
	e.prevHeld = held
	return confirmed
}

func (e *Engine) handleEnd(dt time.Duration) {
	// Terminal; finishSession already ran on entry.
}

func (e *Engine) finishSession() {
	e.session.Status = StatusComplete
	e.releaseVisuals()
	e.log.Info("session %s complete", e.session.ID)
}

func (e *Engine) abort() {
	e.session.Status = StatusAborted
	e.releaseVisuals()
	e.render.ReleaseCalibration()
	e.log.Warn("session %s force-ended in block %s", e.session.ID, e.session.ActiveBlock)
}

func (e *Engine) releaseVisuals() {
	e.render.SetVisible(ports.StimulusDots, false)
	e.render.SetVisible(ports.StimulusFixation, false)
	e.render.SetVisible(ports.StimulusResponse, false)
	e.render.SetVisible(ports.StimulusInstruction, false)
	e.render.SetCursorIndex(-1)
}

// calDisplay narrows the render port to the calibration display surface.
type calDisplay struct {
	render ports.RenderPort
}

func (d calDisplay) SetVisible(v bool) { d.render.SetVisible(ports.StimulusCalTarget, v) }
func (d calDisplay) MoveTarget(pos mat32.Vec3) { d.render.MoveCalTarget(pos) }
func (d calDisplay) SignalHold() { d.render.SignalHold() }
func (d calDisplay) FlashCue() { d.render.FlashCue() }
func (d calDisplay) Release() { d.render.ReleaseCalibration() }
