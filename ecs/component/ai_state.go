package component

import "github.com/milk9111/sentinel/decision"

// AIState holds exactly one top-level decision state per agent.
type AIState struct {
	Current  decision.State
	Previous decision.State
	// Elapsed is time spent in Current.
	Elapsed float64
	// Rule names the table row that produced Current.
	Rule string
	// Staggered is raised by knockback and consumed by the next decision.
	Staggered bool
	// Interrupted is raised by any landed hit; the next tick cancels the
	// running sub-action before deciding.
	Interrupted bool
}

var AIStateComponent = NewComponent[AIState]()

// SubActionComponent stores the agent's timed sub-action.
var SubActionComponent = NewComponent[decision.SubAction]()
