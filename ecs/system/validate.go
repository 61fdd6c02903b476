package system

import (
	"log/slog"
	"strings"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
)

// missingAgentParts lists what an agent cannot run without.
func missingAgentParts(w *ecs.World, e ecs.Entity) []string {
	var missing []string
	if cfg, ok := ecs.Get(w, e, component.AgentConfigComponent.Kind()); !ok || cfg.Core == nil {
		missing = append(missing, "config")
	}
	if !ecs.Has(w, e, component.AIStateComponent.Kind()) {
		missing = append(missing, "state")
	}
	if m, ok := ecs.Get(w, e, component.MotorComponent.Kind()); !ok || m.Actuator == nil {
		missing = append(missing, "motor")
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		missing = append(missing, "transform")
	}
	if !ecs.Has(w, e, component.MemoryComponent.Kind()) {
		missing = append(missing, "memory")
	}
	if !ecs.Has(w, e, component.CombatComponent.Kind()) {
		missing = append(missing, "combat")
	}
	if !ecs.Has(w, e, component.HealthComponent.Kind()) {
		missing = append(missing, "health")
	}
	return missing
}

// ensureRunnable disables an incomplete agent the first time it is seen and
// reports whether the agent may tick.
func ensureRunnable(w *ecs.World, e ecs.Entity) bool {
	if isDisabled(w, e) {
		return false
	}
	missing := missingAgentParts(w, e)
	if len(missing) == 0 {
		return true
	}
	reason := "missing " + strings.Join(missing, ", ")
	slog.Warn("ai: agent disabled", "entity", e, "reason", reason)
	_ = ecs.Add(w, e, component.DisabledComponent.Kind(), &component.Disabled{Reason: reason})
	return false
}
