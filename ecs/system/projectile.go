package system

import (
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/threat"
)

// ProjectileSystem flies projectiles and destroys them on impact or when
// their lifetime runs out.
type ProjectileSystem struct {
	q physics.Queryer
}

func NewProjectileSystem(q physics.Queryer) *ProjectileSystem {
	return &ProjectileSystem{q: q}
}

func (s *ProjectileSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Dt()
	ecs.ForEach(w, component.ProjectileComponent.Kind(), func(e ecs.Entity, p *combat.Projectile) {
		impact, hit, spent := p.Step(s.q, dt)
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Position = p.Position
		}

		if hit && !impact.Blocked {
			target := ecs.Entity(impact.Hit.Collider.ID)
			if ecs.IsAlive(w, target) {
				origin := impact.Hit.Point
				if pos, ok := positionOf(w, ecs.Entity(p.Owner)); ok && ecs.IsAlive(w, ecs.Entity(p.Owner)) {
					origin = pos
				}
				queueHit(w, target, component.Hit{
					Amount:    p.Damage,
					Knockback: p.Knockback,
					Direction: p.Direction(),
					Source:    p.Owner,
					Origin:    origin,
					Category:  threat.Ranged,
				})
			}
		}
		if spent {
			ecs.DestroyEntity(w, e)
		}
	})
}
