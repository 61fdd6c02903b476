package system

import (
	"log/slog"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/threat"
)

func categoryFor(k combat.Kind) threat.Category {
	if k == combat.Ranged {
		return threat.Ranged
	}
	return threat.Melee
}

// CombatSystem advances wind-ups and resolves the ones that finish: melee
// strikes become damage requests, ranged shots become projectile entities.
type CombatSystem struct {
	q physics.Queryer
}

func NewCombatSystem(q physics.Queryer) *CombatSystem {
	return &CombatSystem{q: q}
}

func (s *CombatSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt, now := w.Dt(), w.Now()
	ecs.ForEach3(w, component.AgentConfigComponent.Kind(), component.CombatComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, cfg *component.AgentConfig, cs *combat.State, t *component.Transform) {
		if isDisabled(w, e) || !cs.WindUp.Active {
			return
		}
		var aimAt *cp.Vector
		if _, tt, ok := liveTarget(w, e); ok {
			pos := tt.Position
			aimAt = &pos
		}
		res, ok := combat.Advance(cs, cfg.Attack, dt, now, s.q, t.Position, aimAt, e.ID())
		if !ok {
			return
		}

		ecs.Emit(w, ecs.EventAttack, e, map[string]any{
			"phase":   "resolve",
			"skill":   res.Skill,
			"kind":    res.Kind.String(),
			"strikes": len(res.Strikes),
		})

		if res.Projectile != nil {
			shot := ecs.CreateEntity(w)
			if err := ecs.Add(w, shot, component.ProjectileComponent.Kind(), res.Projectile); err != nil {
				slog.Warn("combat: spawn projectile", "entity", e, "err", err)
				return
			}
			_ = ecs.Add(w, shot, component.TransformComponent.Kind(), &component.Transform{
				Position: res.Projectile.Position,
				Velocity: res.Projectile.Velocity,
			})
			return
		}

		for _, strike := range res.Strikes {
			target := ecs.Entity(strike.Collider.ID)
			if !ecs.IsAlive(w, target) {
				continue
			}
			queueHit(w, target, component.Hit{
				Amount:    res.Damage,
				Knockback: res.Knockback,
				Direction: strike.Direction,
				Source:    e.ID(),
				Origin:    t.Position,
				Category:  categoryFor(res.Kind),
			})
		}
	})
}
