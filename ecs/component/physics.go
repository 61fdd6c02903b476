package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/physics"
)

// PhysicsBody links an entity to its Chipmunk body.
type PhysicsBody struct {
	Body     *cp.Body
	Width    float64
	Height   float64
	Layer    physics.Layer
	Collides physics.Layer
}

// Motor is the movement interface the AI drives. Actuators that need a
// per-tick advance also implement Update(dt).
type Motor struct {
	Actuator physics.Actuator
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
var MotorComponent = NewComponent[Motor]()
