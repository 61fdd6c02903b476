package system

import (
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/physics"
)

// NewPipeline returns the agent systems in tick order. space may be nil when
// q is a stand-in world and motors integrate themselves.
func NewPipeline(space *physics.Space, q physics.Queryer, hooks *ScriptHooks) *ecs.Scheduler {
	return ecs.NewScheduler(
		NewWaypointsSystem(),
		NewPhysicsSystem(space),
		NewThreatSystem(),
		NewPerceptionSystem(q),
		NewNavigationSystem(q),
		NewAISystem(hooks),
		NewCombatSystem(q),
		NewProjectileSystem(q),
		NewDamageSystem(),
		NewCleanupSystem(space, hooks),
	)
}
