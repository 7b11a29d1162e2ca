package calibration

import "github.com/goki/mat32"

// Waypoint is one named calibration target position, a unit direction
// vector from the head. The path is an ordered list, not a map: iteration
// order is the calibration order and must never depend on map semantics.
type Waypoint struct {
	Name     string
	Position mat32.Vec3
}

// DefaultPath is the fixed sweep: center, the four quadrant corners, then
// back to center. Never randomized.
func DefaultPath() []Waypoint {
	return []Waypoint{
		{Name: "center", Position: unit(0, 0)},
		{Name: "top_left", Position: unit(-0.5, 0.5)},
		{Name: "top_right", Position: unit(0.5, 0.5)},
		{Name: "bottom_right", Position: unit(0.5, -0.5)},
		{Name: "bottom_left", Position: unit(-0.5, -0.5)},
		{Name: "center_return", Position: unit(0, 0)},
	}
}

func unit(x, y float32) mat32.Vec3 {
	v := mat32.Vec3{X: x, Y: y, Z: 1}
	return v.Normal()
}
