package ports

import "time"

// ClockPort supplies monotonic wall time for trial timestamps. Duration
// waits and hold timers run off the per-tick delta instead, so tests can
// drive the engine without a real clock.
type ClockPort interface {
	Now() time.Time
}
