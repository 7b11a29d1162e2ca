package calibration

import (
	"time"

	"github.com/goki/mat32"

	"vrtask/domain/gaze"
	"vrtask/internal/errors"
)

// Phase is the calibration sweep phase.
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseValidation Phase = "validation"
	PhaseComplete   Phase = "complete"
)

// waypoint sub-states within a phase.
type state int

const (
	stateCapturing state = iota
	stateHolding
)

// SamplePair is one captured (left eye, right eye) gaze estimate.
type SamplePair struct {
	Left  mat32.Vec3 `json:"left"`
	Right mat32.Vec3 `json:"right"`
}

// Display is the slice of the render sink calibration drives.
type Display interface {
	SetVisible(visible bool)
	MoveTarget(pos mat32.Vec3)
	SignalHold()
	FlashCue()
	Release()
}

// Config holds the sweep parameters. Thresholds differ between phases:
// Setup accepts coarse fixation, Validation requires tight fixation.
type Config struct {
	SamplesPerWaypoint  int
	HoldInterval        time.Duration
	SetupThreshold      float32
	ValidationThreshold float32
}

// DefaultConfig returns the standard sweep parameters.
func DefaultConfig() Config {
	return Config{
		SamplesPerWaypoint:  100,
		HoldInterval:        750 * time.Millisecond,
		SetupThreshold:      0.5,
		ValidationThreshold: 0.25,
	}
}

// Machine runs the two-phase calibration sweep: every waypoint accumulates
// gaze samples while the participant fixates it, holds briefly once full,
// then the target moves on. Setup and Validation each walk the full path in
// order; their samples are kept in separate stores for later analysis.
type Machine struct {
	cfg     Config
	path    []Waypoint
	monitor *gaze.Monitor
	sampler gaze.Sampler
	display Display

	phase   Phase
	state   state
	index   int
	holdFor time.Duration

	setupSamples      [][]SamplePair
	validationSamples [][]SamplePair

	active     bool
	onComplete func()
}

// NewMachine builds a sweep over the given path. All collaborators are
// required; a missing one is a configuration error.
func NewMachine(cfg Config, path []Waypoint, monitor *gaze.Monitor, sampler gaze.Sampler, display Display) (*Machine, error) {
	if monitor == nil {
		return nil, errors.ConfigInvalid("calibration requires a gaze monitor")
	}
	if sampler == nil {
		return nil, errors.ConfigInvalid("calibration requires a gaze sampler")
	}
	if display == nil {
		return nil, errors.ConfigInvalid("calibration requires a display sink")
	}
	if len(path) == 0 {
		return nil, errors.ConfigInvalid("calibration path is empty")
	}
	if cfg.SamplesPerWaypoint <= 0 {
		return nil, errors.ConfigInvalid("samples per waypoint must be positive")
	}
	m := &Machine{
		cfg:               cfg,
		path:              path,
		monitor:           monitor,
		sampler:           sampler,
		display:           display,
		phase:             PhaseSetup,
		setupSamples:      make([][]SamplePair, len(path)),
		validationSamples: make([][]SamplePair, len(path)),
	}
	return m, nil
}

// Start begins (or restarts) the sweep from the first waypoint of Setup.
// onComplete fires once when Validation finishes; it may be nil.
func (m *Machine) Start(onComplete func()) {
	m.phase = PhaseSetup
	m.state = stateCapturing
	m.index = 0
	m.holdFor = 0
	m.setupSamples = make([][]SamplePair, len(m.path))
	m.validationSamples = make([][]SamplePair, len(m.path))
	m.onComplete = onComplete
	m.active = true

	m.monitor.SetThreshold(m.cfg.SetupThreshold)
	m.display.SetVisible(true)
	m.display.MoveTarget(m.path[0].Position)
}

// Active reports whether a sweep is in progress.
func (m *Machine) Active() bool { return m.active }

// Complete reports whether the sweep has finished both phases.
func (m *Machine) Complete() bool { return m.phase == PhaseComplete }

// CurrentPhase returns the active sweep phase.
func (m *Machine) CurrentPhase() Phase { return m.phase }

// CurrentWaypoint returns the index of the waypoint being sampled.
func (m *Machine) CurrentWaypoint() int { return m.index }

// Samples returns the per-waypoint sample store for a phase, parallel to
// the path. Retained for the life of the session; external analysis reads
// it, the machine itself never does.
func (m *Machine) Samples(p Phase) [][]SamplePair {
	if p == PhaseValidation {
		return m.validationSamples
	}
	return m.setupSamples
}

// Path returns the waypoint list in sweep order.
func (m *Machine) Path() []Waypoint { return m.path }

// Tick advances the sweep by one scheduling tick.
func (m *Machine) Tick(dt time.Duration) {
	if !m.active || m.phase == PhaseComplete {
		return
	}
	switch m.state {
	case stateCapturing:
		m.capture()
	case stateHolding:
		m.holdFor -= dt
		if m.holdFor <= 0 {
			m.advance()
		}
	}
}

func (m *Machine) capture() {
	wp := m.path[m.index]
	if !m.monitor.IsFixatedStatic(gaze.Target{Position: wp.Position}) {
		return
	}
	left, right := m.sampler.Sample()
	store := m.activeStore()
	store[m.index] = append(store[m.index], SamplePair{Left: left, Right: right})
	if len(store[m.index]) >= m.cfg.SamplesPerWaypoint {
		m.state = stateHolding
		m.holdFor = m.cfg.HoldInterval
		m.display.SignalHold()
	}
}

func (m *Machine) advance() {
	m.state = stateCapturing
	m.index++
	if m.index < len(m.path) {
		m.display.MoveTarget(m.path[m.index].Position)
		return
	}
	// Path exhausted: transition phases.
	switch m.phase {
	case PhaseSetup:
		m.phase = PhaseValidation
		m.index = 0
		m.monitor.SetThreshold(m.cfg.ValidationThreshold)
		m.display.FlashCue()
		m.display.MoveTarget(m.path[0].Position)
	case PhaseValidation:
		m.phase = PhaseComplete
		m.active = false
		m.display.Release()
		if m.onComplete != nil {
			m.onComplete()
		}
	}
}

func (m *Machine) activeStore() [][]SamplePair {
	if m.phase == PhaseValidation {
		return m.validationSamples
	}
	return m.setupSamples
}
