package system

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
)

func isDisabled(w *ecs.World, e ecs.Entity) bool {
	return ecs.Has(w, e, component.DisabledComponent.Kind())
}

func isDead(w *ecs.World, e ecs.Entity) bool {
	h, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	return ok && h.Dead()
}

func positionOf(w *ecs.World, e ecs.Entity) (cp.Vector, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return t.Position, true
}

// liveTarget resolves an agent's target reference. Destroyed, dead or
// position-less targets count as missing.
func liveTarget(w *ecs.World, e ecs.Entity) (ecs.Entity, *component.Transform, bool) {
	ref, ok := ecs.Get(w, e, component.TargetComponent.Kind())
	if !ok || ref.Entity == 0 {
		return 0, nil, false
	}
	target := ecs.Entity(ref.Entity)
	if !ecs.IsAlive(w, target) || isDead(w, target) {
		return 0, nil, false
	}
	t, ok := ecs.Get(w, target, component.TransformComponent.Kind())
	if !ok {
		return 0, nil, false
	}
	return target, t, true
}

func layerOf(w *ecs.World, e ecs.Entity, fallback physics.Layer) physics.Layer {
	if b, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && b.Layer != physics.LayerNone {
		return b.Layer
	}
	return fallback
}

// face turns the motor toward dir without moving it.
func face(m physics.Actuator, dir float64) {
	if dir == 0 || m == nil {
		return
	}
	want := 1
	if dir < 0 {
		want = -1
	}
	if m.Facing() != want {
		m.Flip()
	}
}

func signOr(v float64, fallback int) float64 {
	if math.Abs(v) < 1e-6 {
		if fallback < 0 {
			return -1
		}
		return 1
	}
	if v < 0 {
		return -1
	}
	return 1
}

// queueHit appends hit to target's pending damage.
func queueHit(w *ecs.World, target ecs.Entity, hit component.Hit) {
	if !ecs.Has(w, target, component.HealthComponent.Kind()) {
		return
	}
	req, ok := ecs.Get(w, target, component.DamageRequestComponent.Kind())
	if !ok {
		req = &component.DamageRequest{}
	}
	req.Hits = append(req.Hits, hit)
	if err := ecs.Add(w, target, component.DamageRequestComponent.Kind(), req); err != nil {
		slog.Warn("damage: queue hit", "target", target, "err", err)
	}
}
