// Package physics holds the collision-layer vocabulary shared by the agent
// core and the chipmunk-backed implementations of the world-query and motor
// collaborators.
package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Layer is a collision category bit. Queries take a mask of layers.
type Layer uint

const (
	LayerGround Layer = 1 << iota
	LayerPlayer
	LayerAgent
	LayerProjectile

	LayerNone Layer = 0
	LayerAll  Layer = LayerGround | LayerPlayer | LayerAgent | LayerProjectile
)

// Has reports whether any bit of other is set in l.
func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

// Collider identifies a shape returned by a world query.
type Collider struct {
	ID    uint64
	Layer Layer
	BB    cp.BB
}

// Hit is the first intersection of a raycast.
type Hit struct {
	Point    cp.Vector
	Normal   cp.Vector
	Distance float64
	Collider Collider
}

// Queryer answers non-mutating world queries. Implementations must be safe to
// call from any agent's tick while the physics world is between steps.
type Queryer interface {
	Raycast(origin, dir cp.Vector, maxDistance float64, mask Layer) (Hit, bool)
	OverlapBox(bb cp.BB, mask Layer) []Collider
}

// Actuator is the motor contract an agent drives. Long maneuvers report
// completion through ManeuverDone instead of blocking.
type Actuator interface {
	Move(direction, speed float64)
	Stop()
	Jump(strength float64)
	Flip()
	ApplyKnockback(direction cp.Vector, force float64)
	ClimbToPosition(target cp.Vector, crouchAtEnd bool)
	Vault(height float64)
	// CancelManeuver abandons a running climb or vault where the body is.
	CancelManeuver()
	ManeuverDone() bool

	Position() cp.Vector
	Velocity() cp.Vector
	Facing() int
}

// Cast runs a raycast through q. A nil queryer, a zero direction or a
// non-positive distance reports no hit.
func Cast(q Queryer, origin, dir cp.Vector, maxDistance float64, mask Layer) (Hit, bool) {
	if q == nil || maxDistance <= 0 || mask == LayerNone {
		return Hit{}, false
	}
	l := dir.Length()
	if l == 0 || math.IsNaN(l) {
		return Hit{}, false
	}
	return q.Raycast(origin, dir.Mult(1/l), maxDistance, mask)
}

// Overlap runs a box overlap through q; nil queryers see nothing.
func Overlap(q Queryer, bb cp.BB, mask Layer) []Collider {
	if q == nil || mask == LayerNone {
		return nil
	}
	return q.OverlapBox(bb, mask)
}

// BoxAround returns the axis-aligned box with the given center and size.
func BoxAround(center cp.Vector, w, h float64) cp.BB {
	return cp.BB{L: center.X - w/2, B: center.Y - h/2, R: center.X + w/2, T: center.Y + h/2}
}

// Direction returns the unit vector from a to b, or the zero vector when the
// points coincide.
func Direction(a, b cp.Vector) cp.Vector {
	d := b.Sub(a)
	l := d.Length()
	if l <= 1e-9 {
		return cp.Vector{}
	}
	return d.Mult(1 / l)
}
