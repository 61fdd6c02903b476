package system

import (
	"log/slog"

	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
)

// DamageSystem applies queued hits: defense and knockback resistance first,
// then health and displacement. Any landed hit interrupts the agent's
// sub-action; only knockback staggers.
type DamageSystem struct{}

func NewDamageSystem() *DamageSystem {
	return &DamageSystem{}
}

func (s *DamageSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.DamageRequestComponent.Kind(), component.HealthComponent.Kind(), func(e ecs.Entity, req *component.DamageRequest, h *component.Health) {
		defer ecs.Remove(w, e, component.DamageRequestComponent.Kind())
		if h.Dead() {
			return
		}

		var vitals component.Vitals
		if v, ok := ecs.Get(w, e, component.VitalsComponent.Kind()); ok {
			vitals = *v
		}

		for _, hit := range req.Hits {
			amount := combat.AppliedDamage(hit.Amount, vitals.Defense)
			force := combat.AppliedKnockback(hit.Knockback, vitals.KnockbackResistance)
			h.Current -= amount
			if h.Current < 0 {
				h.Current = 0
			}

			if st, ok := ecs.Get(w, e, component.AIStateComponent.Kind()); ok && (amount > 0 || force > 0) {
				st.Interrupted = true
				st.Staggered = st.Staggered || force > 0
			}
			if force > 0 {
				if m, ok := ecs.Get(w, e, component.MotorComponent.Kind()); ok && m.Actuator != nil {
					m.Actuator.ApplyKnockback(hit.Direction, force)
				}
			}

			s.notice(w, e, hit)
			if prof, ok := ecs.Get(w, e, component.ThreatComponent.Kind()); ok {
				prof.Record(hit.Category)
			}

			slog.Debug("damage: hit", "entity", e, "amount", amount, "knockback", force, "health", h.Current)
			ecs.Emit(w, ecs.EventDamaged, e, map[string]any{
				"amount":    amount,
				"knockback": force,
				"health":    h.Current,
				"source":    hit.Source,
			})

			if h.Dead() {
				// agents report death from their own state change
				if !ecs.Has(w, e, component.AIStateComponent.Kind()) {
					ecs.Emit(w, ecs.EventDied, e, nil)
				}
				return
			}
		}
	})
}

// notice points an agent that did not see the attacker at where the hit
// came from.
func (s *DamageSystem) notice(w *ecs.World, e ecs.Entity, hit component.Hit) {
	mem, ok := ecs.Get(w, e, component.MemoryComponent.Kind())
	if !ok {
		return
	}
	if res, ok := ecs.Get(w, e, component.PerceptionComponent.Kind()); ok && res.Visible {
		return
	}
	cfg, ok := ecs.Get(w, e, component.AgentConfigComponent.Kind())
	if !ok {
		return
	}
	mem.Stimulus(hit.Origin, cfg.Perception)
}
