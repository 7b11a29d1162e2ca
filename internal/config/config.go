package config

import (
	"os"
	"strconv"
	"time"

	"vrtask/internal/errors"
)

// Config is the complete engine configuration.
type Config struct {
	Session     SessionConfig
	Stimulus    StimulusConfig
	Fixation    FixationConfig
	Calibration CalibrationConfig
	Store       StoreConfig
	Report      ReportConfig
}

// SessionConfig controls timeline sizes and difficulty seeds.
type SessionConfig struct {
	Seed                       int64
	TrainingTrialsPerCondition int
	MainTrialsPerCondition     int
	// DebugTrialCount, when positive, overrides every per-condition count
	// with a smaller number for quick runs.
	DebugTrialCount  int
	InitialCoherence float64
	DemoTrials       int
	DemoCoherence    float64
	InstructionPages int
}

// StimulusConfig controls presentation timing and dichoptic geometry.
type StimulusConfig struct {
	DisplayDuration time.Duration
	PreDisplayDelay time.Duration
	ResponseHold    time.Duration
	InputDelay      time.Duration

	OffsetAngleDeg   float64
	StimulusDistance float64
	InterEyeDistance float64
	StimulusWidth    float64
	VerticalOffset   float64
}

// FixationConfig controls gaze gating of stimulus onset.
type FixationConfig struct {
	// Require gates stimulus onset on sustained fixation; when false the
	// engine falls back to a fixed pre-display interval.
	Require        bool
	Hold           time.Duration
	TrialThreshold float64
}

// CalibrationConfig controls the two-phase calibration sweep.
type CalibrationConfig struct {
	SamplesPerWaypoint  int
	HoldInterval        time.Duration
	SetupThreshold      float64
	ValidationThreshold float64
}

// StoreConfig holds trial persistence settings.
type StoreConfig struct {
	Path     string
	InMemory bool
}

// ReportConfig holds post-session report settings.
type ReportConfig struct {
	Enabled    bool
	OutputPath string
}

// Load reads configuration from environment variables, applies defaults,
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Session: SessionConfig{
			Seed:                       envInt64("VRTASK_SEED", time.Now().UnixNano()),
			TrainingTrialsPerCondition: envInt("VRTASK_TRAINING_TRIALS", 20),
			MainTrialsPerCondition:     envInt("VRTASK_MAIN_TRIALS", 20),
			DebugTrialCount:            envInt("VRTASK_DEBUG_TRIALS", 0),
			InitialCoherence:           envFloat("VRTASK_INITIAL_COHERENCE", 0.5),
			DemoTrials:                 envInt("VRTASK_DEMO_TRIALS", 3),
			DemoCoherence:              envFloat("VRTASK_DEMO_COHERENCE", 0.8),
			InstructionPages:           envInt("VRTASK_INSTRUCTION_PAGES", 4),
		},
		Stimulus: StimulusConfig{
			DisplayDuration:  envDuration("VRTASK_DISPLAY_DURATION", 1500*time.Millisecond),
			PreDisplayDelay:  envDuration("VRTASK_PREDISPLAY_DELAY", 500*time.Millisecond),
			ResponseHold:     envDuration("VRTASK_RESPONSE_HOLD", 300*time.Millisecond),
			InputDelay:       envDuration("VRTASK_INPUT_DELAY", 250*time.Millisecond),
			OffsetAngleDeg:   envFloat("VRTASK_OFFSET_ANGLE", 15),
			StimulusDistance: envFloat("VRTASK_STIMULUS_DISTANCE", 10),
			InterEyeDistance: envFloat("VRTASK_INTER_EYE_DISTANCE", 0.064),
			StimulusWidth:    envFloat("VRTASK_STIMULUS_WIDTH", 2.0),
			VerticalOffset:   envFloat("VRTASK_VERTICAL_OFFSET", 1.5),
		},
		Fixation: FixationConfig{
			Require:        envBool("VRTASK_REQUIRE_FIXATION", true),
			Hold:           envDuration("VRTASK_FIXATION_HOLD", 500*time.Millisecond),
			TrialThreshold: envFloat("VRTASK_FIXATION_THRESHOLD", 0.5),
		},
		Calibration: CalibrationConfig{
			SamplesPerWaypoint:  envInt("VRTASK_CAL_SAMPLES", 100),
			HoldInterval:        envDuration("VRTASK_CAL_HOLD", 750*time.Millisecond),
			SetupThreshold:      envFloat("VRTASK_CAL_SETUP_THRESHOLD", 0.5),
			ValidationThreshold: envFloat("VRTASK_CAL_VALIDATION_THRESHOLD", 0.25),
		},
		Store: StoreConfig{
			Path:     envString("VRTASK_STORE_PATH", "vrtask-data"),
			InMemory: envBool("VRTASK_STORE_IN_MEMORY", false),
		},
		Report: ReportConfig{
			Enabled:    envBool("VRTASK_REPORT_ENABLED", true),
			OutputPath: envString("VRTASK_REPORT_PATH", "vrtask-session.xlsx"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	s := c.Session
	if s.TrainingTrialsPerCondition < 0 || s.MainTrialsPerCondition < 0 {
		return errors.ConfigInvalid("trial counts must be non-negative")
	}
	if s.InitialCoherence < 0 || s.InitialCoherence > 1 {
		return errors.ConfigInvalid("initial coherence must be in [0,1]")
	}
	if s.DemoCoherence < 0 || s.DemoCoherence > 1 {
		return errors.ConfigInvalid("demo coherence must be in [0,1]")
	}
	if s.InstructionPages < 1 {
		return errors.ConfigInvalid("instruction pages must be at least 1")
	}
	if c.Stimulus.DisplayDuration <= 0 {
		return errors.ConfigInvalid("display duration must be positive")
	}
	if c.Stimulus.StimulusDistance <= 0 {
		return errors.ConfigInvalid("stimulus distance must be positive")
	}
	if c.Fixation.TrialThreshold < 0 {
		return errors.ConfigInvalid("fixation threshold must be non-negative")
	}
	if c.Calibration.SamplesPerWaypoint <= 0 {
		return errors.ConfigInvalid("calibration samples per waypoint must be positive")
	}
	if c.Report.Enabled && c.Report.OutputPath == "" {
		return errors.ConfigInvalid("report output path is required when reporting is enabled")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
