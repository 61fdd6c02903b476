package component

import "github.com/jakecoffman/cp"

// Transform is the world position of an entity's center, mirrored from its
// physics body every tick.
type Transform struct {
	Position cp.Vector
	Velocity cp.Vector
}

// Facing is the horizontal sign an entity looks toward: 1 right, -1 left.
type Facing struct {
	Sign int
}

var TransformComponent = NewComponent[Transform]()
var FacingComponent = NewComponent[Facing]()
