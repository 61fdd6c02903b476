package system

import (
	"log/slog"
	"math"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/threat"
)

// PerceptionSystem refreshes each agent's sight check and memory, then
// delivers noises to listeners in range.
type PerceptionSystem struct {
	q physics.Queryer
}

func NewPerceptionSystem(q physics.Queryer) *PerceptionSystem {
	return &PerceptionSystem{q: q}
}

func (s *PerceptionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	noises := s.collectNoise(w)

	ecs.ForEach2(w, component.AgentConfigComponent.Kind(), component.MemoryComponent.Kind(), func(e ecs.Entity, cfg *component.AgentConfig, mem *perception.Memory) {
		if isDisabled(w, e) || isDead(w, e) {
			return
		}
		pos, ok := positionOf(w, e)
		if !ok {
			return
		}
		facing := 1
		if f, ok := ecs.Get(w, e, component.FacingComponent.Kind()); ok {
			facing = f.Sign
		}

		prev, _ := ecs.Get(w, e, component.PerceptionComponent.Kind())
		wasVisible := prev != nil && prev.Visible

		var res perception.Result
		var subject perception.Subject
		target, tt, hasTarget := liveTarget(w, e)
		if hasTarget {
			subject = perception.Subject{
				ID:       target.ID(),
				Position: tt.Position,
				Velocity: tt.Velocity,
				Layer:    layerOf(w, target, physics.LayerPlayer),
			}
			res = perception.CheckVisibility(s.q, perception.Observer{Position: pos, Facing: facing}, subject, cfg.Perception)
		}
		mem.Update(res.Visible, subject, w.Dt(), cfg.Perception)

		// losing sight inside vision range means the target broke line of sight
		if wasVisible && !res.Visible && hasTarget && pos.Distance(subject.Position) <= cfg.Perception.VisionRange {
			if prof, ok := ecs.Get(w, e, component.ThreatComponent.Kind()); ok {
				prof.Record(threat.Cover)
			}
		}

		if !res.Visible {
			for _, n := range noises {
				if n.Source == e.ID() || !perception.Hears(pos, n, cfg.Perception) {
					continue
				}
				if mem.Stimulus(n.Position, cfg.Perception) {
					slog.Debug("perception: heard noise", "entity", e, "at", n.Position)
				}
			}
		}

		if err := ecs.Add(w, e, component.PerceptionComponent.Kind(), &res); err != nil {
			slog.Warn("perception: store result", "entity", e, "err", err)
		}
	})
}

// collectNoise advances every emitter and returns the noises made this tick.
func (s *PerceptionSystem) collectNoise(w *ecs.World) []perception.Noise {
	var out []perception.Noise
	dt := w.Dt()
	ecs.ForEach2(w, component.NoiseEmitterComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, n *component.NoiseEmitter, t *component.Transform) {
		n.Emitted = false
		if n.Period <= 0 || math.Abs(t.Velocity.X) < n.MinSpeed || isDead(w, e) {
			n.Timer = 0
			return
		}
		n.Timer += dt
		if n.Timer < n.Period {
			return
		}
		n.Timer = 0
		n.Emitted = true
		out = append(out, perception.Noise{Position: t.Position, Source: e.ID()})
		ecs.Emit(w, ecs.EventNoise, e, map[string]any{"x": t.Position.X, "y": t.Position.Y})
	})
	return out
}
