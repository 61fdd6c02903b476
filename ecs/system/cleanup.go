package system

import (
	"log/slog"

	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
)

// CleanupSystem removes dead agents once their grace period has passed.
type CleanupSystem struct {
	space *physics.Space
	hooks *ScriptHooks
}

func NewCleanupSystem(space *physics.Space, hooks *ScriptHooks) *CleanupSystem {
	return &CleanupSystem{space: space, hooks: hooks}
}

func (s *CleanupSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.AIStateComponent.Kind(), component.AgentConfigComponent.Kind(), func(e ecs.Entity, st *component.AIState, cfg *component.AgentConfig) {
		if st.Current != decision.Dead || st.Elapsed < cfg.DeadGracePeriod {
			return
		}
		if s.space != nil {
			s.space.Remove(e.ID())
		}
		s.hooks.Forget(e)
		ecs.DestroyEntity(w, e)
		slog.Info("cleanup: removed agent", "entity", e, "name", cfg.Name)
	})
}
