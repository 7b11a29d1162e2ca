package gaze

import (
	"time"

	"github.com/goki/mat32"

	"vrtask/internal/errors"
)

// Sampler is the slice of the gaze port the monitor needs.
type Sampler interface {
	Sample() (left, right mat32.Vec3)
}

// Target is a fixation point. The active threshold lives on the Monitor,
// not the target, because it changes between calibration sub-phases and
// trial gating.
type Target struct {
	Position mat32.Vec3
}

// Monitor answers "is the participant fixating this target right now" and,
// through DurationGate, "have they fixated it continuously long enough".
type Monitor struct {
	sampler   Sampler
	threshold float32
}

// NewMonitor creates a monitor over a gaze source. A missing source is a
// configuration error: the session must not run degraded without gaze.
func NewMonitor(sampler Sampler, threshold float32) (*Monitor, error) {
	if sampler == nil {
		return nil, errors.ConfigInvalid("gaze source is required")
	}
	if threshold < 0 {
		return nil, errors.ConfigInvalid("fixation threshold must be non-negative")
	}
	return &Monitor{sampler: sampler, threshold: threshold}, nil
}

// Threshold returns the active fixation threshold.
func (m *Monitor) Threshold() float32 { return m.threshold }

// SetThreshold replaces the active threshold. Negative values are rejected
// with no state change.
func (m *Monitor) SetThreshold(r float32) error {
	if r < 0 {
		return errors.InvalidInput("fixation threshold must be non-negative")
	}
	m.threshold = r
	return nil
}

// IsFixatedStatic samples both eyes and reports whether either eye is
// within the active threshold of the target on both axes. OR across eyes:
// a single tracked eye is enough, tolerating per-eye dropout.
func (m *Monitor) IsFixatedStatic(t Target) bool {
	left, right := m.sampler.Sample()
	return m.within(left, t.Position) || m.within(right, t.Position)
}

func (m *Monitor) within(eye, target mat32.Vec3) bool {
	return mat32.Abs(eye.X-target.X) <= m.threshold &&
		mat32.Abs(eye.Y-target.Y) <= m.threshold
}

// DurationGate accumulates contiguous fixation time across scheduling
// ticks. Any single failed sample resets progress to zero; elapsed time
// only grows while consecutive samples succeed.
type DurationGate struct {
	need    time.Duration
	elapsed time.Duration
	fixated bool
}

// NewDurationGate creates a gate that opens after `need` of uninterrupted
// fixation.
func NewDurationGate(need time.Duration) *DurationGate {
	return &DurationGate{need: need}
}

// Observe feeds one tick's fixation sample and delta. It returns true once
// accumulated contiguous fixation reaches the required duration.
func (g *DurationGate) Observe(fixated bool, dt time.Duration) bool {
	if !fixated {
		g.elapsed = 0
		g.fixated = false
		return false
	}
	g.fixated = true
	g.elapsed += dt
	return g.elapsed >= g.need
}

// Fixated reports whether the most recent sample was within threshold.
func (g *DurationGate) Fixated() bool { return g.fixated }

// Elapsed returns the contiguous fixation time accumulated so far.
func (g *DurationGate) Elapsed() time.Duration { return g.elapsed }

// Reset clears accumulated progress, for reuse across suspension points.
func (g *DurationGate) Reset() {
	g.elapsed = 0
	g.fixated = false
}
