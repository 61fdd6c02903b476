package system

import (
	"log/slog"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/threat"
)

// ThreatSystem closes each agent's analysis window on its interval. Agents
// with adaptation turned off keep their starting profile.
type ThreatSystem struct{}

func NewThreatSystem() *ThreatSystem {
	return &ThreatSystem{}
}

func (s *ThreatSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Dt()
	ecs.ForEach2(w, component.AgentConfigComponent.Kind(), component.ThreatComponent.Kind(), func(e ecs.Entity, cfg *component.AgentConfig, prof *threat.Profile) {
		if !cfg.UseThreat || isDisabled(w, e) || isDead(w, e) {
			return
		}
		dominant, hasDominant := prof.Dominant()
		if !prof.Update(dt, cfg.Threat) {
			return
		}
		if !hasDominant {
			return
		}
		slog.Debug("threat: profile shifted", "entity", e, "dominant", dominant,
			"aggression", prof.Aggression, "cover", prof.CoverPreference)
		ecs.Emit(w, ecs.EventThreat, e, map[string]any{
			"dominant":   dominant.String(),
			"aggression": prof.Aggression,
			"cover":      prof.CoverPreference,
			"ideal":      prof.EffectiveIdealDistance(),
		})
	})
}
