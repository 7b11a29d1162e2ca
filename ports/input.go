package ports

import "github.com/goki/mat32"

// Side identifies a controller hand.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// InputPort exposes the controller state the engine samples once per tick:
// discrete trigger-held booleans per side plus a continuous two-axis
// thumbstick signal used for response selection.
type InputPort interface {
	TriggerHeld(side Side) bool
	Thumbstick() mat32.Vec2
}
