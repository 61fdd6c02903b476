package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/navigation"
	"github.com/milk9111/sentinel/physics"
)

// NavigationSystem classifies the terrain ahead of every moving agent. The
// extended wall scan only runs when the quick probes report a wall.
type NavigationSystem struct {
	q physics.Queryer
}

func NewNavigationSystem(q physics.Queryer) *NavigationSystem {
	return &NavigationSystem{q: q}
}

func movingState(s decision.State) bool {
	switch s {
	case decision.Patrol, decision.Search, decision.Chase, decision.Reposition:
		return true
	}
	return false
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach3(w, component.AgentConfigComponent.Kind(), component.AIStateComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, cfg *component.AgentConfig, st *component.AIState, t *component.Transform) {
		if isDisabled(w, e) || !movingState(st.Current) {
			ecs.Remove(w, e, component.NavigationComponent.Kind())
			ecs.Remove(w, e, component.WallScanComponent.Kind())
			return
		}
		facing := 1
		if f, ok := ecs.Get(w, e, component.FacingComponent.Kind()); ok {
			facing = f.Sign
		}
		if st.Current == decision.Reposition {
			if _, tt, ok := liveTarget(w, e); ok {
				facing = -int(signOr(tt.Position.X-t.Position.X, facing))
			}
		}
		probe := navigation.Probe{
			Feet:      t.Position.Add(cp.Vector{Y: cfg.HalfHeight}),
			Facing:    facing,
			HalfWidth: cfg.HalfWidth,
		}

		rep := navigation.AnalyzePathAhead(s.q, probe, cfg.Navigation)
		_ = ecs.Add(w, e, component.NavigationComponent.Kind(), &rep)

		if rep.Kind != navigation.Wall {
			ecs.Remove(w, e, component.WallScanComponent.Kind())
			return
		}
		wall := navigation.AnalyzeWallInFront(s.q, probe, cfg.Navigation)
		_ = ecs.Add(w, e, component.WallScanComponent.Kind(), &wall)
	})
}
