package component

import (
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/navigation"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/threat"
)

// AgentConfig is the resolved, normalized tuning of one agent.
type AgentConfig struct {
	Name       string
	Core       *decision.Core
	Perception perception.Config
	Navigation navigation.Config
	Attack     combat.Config
	Planner    *pathfinding.Planner
	Threat     threat.Config
	UseThreat  bool

	PatrolSpeed     float64
	ChaseSpeed      float64
	RepositionSpeed float64
	JumpStrength    float64
	AnalyzeDuration float64
	ClimbTimeout    float64
	VaultHeight     float64
	DeadGracePeriod float64
	HalfWidth       float64
	HalfHeight      float64
}

var AgentConfigComponent = NewComponent[AgentConfig]()
