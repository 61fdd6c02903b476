package combat

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/physics"
)

// Projectile flies in a straight line at a fixed velocity chosen at launch.
type Projectile struct {
	Owner     uint64
	Position  cp.Vector
	Velocity  cp.Vector
	Damage    float64
	Knockback float64
	Lifetime  float64
	Age       float64
	Radius    float64
	HitMask   physics.Layer
	BlockMask physics.Layer
}

// Impact is what a projectile ran into during a step.
type Impact struct {
	Hit     physics.Hit
	Blocked bool
}

// Step moves the projectile by dt, sweeping the segment it covers. It
// returns the first impact, if any, and whether the projectile is spent.
func (p *Projectile) Step(q physics.Queryer, dt float64) (Impact, bool, bool) {
	if p == nil {
		return Impact{}, false, true
	}
	travel := p.Velocity.Mult(dt)
	dist := travel.Length()

	if dist > 0 {
		hit, ok := physics.Cast(q, p.Position, travel, dist+p.Radius, p.HitMask|p.BlockMask)
		if ok && !(hit.Collider.ID != 0 && hit.Collider.ID == p.Owner) {
			p.Position = hit.Point
			blocked := !hit.Collider.Layer.Has(p.HitMask)
			return Impact{Hit: hit, Blocked: blocked}, true, true
		}
	}

	p.Position = p.Position.Add(travel)
	p.Age += dt
	return Impact{}, false, p.Age >= p.Lifetime
}

// Direction is the unit heading, fixed for the projectile's life.
func (p *Projectile) Direction() cp.Vector {
	return physics.Direction(cp.Vector{}, p.Velocity)
}
