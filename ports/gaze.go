package ports

import "github.com/goki/mat32"

// GazePort delivers per-tick gaze estimates for both eyes, in the same
// world coordinate space as fixation targets. Dropout of one eye is
// expected; the fixation rule tolerates it.
type GazePort interface {
	// Sample returns the instantaneous (left eye, right eye) gaze estimates.
	Sample() (left, right mat32.Vec3)
}
