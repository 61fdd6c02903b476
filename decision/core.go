// Package decision selects an agent's top-level state from a fixed,
// ordered rule table. The first matching rule wins; when none match the
// agent stays where it is.
package decision

import "github.com/milk9111/sentinel/common"

// Params are the per-agent thresholds the rules compare against.
type Params struct {
	Ranged              bool
	PersonalSpaceRadius float64
	AttackRange         float64
	EngagementRange     float64
	// IdealDistance is the ranged engagement distance after threat bias.
	IdealDistance float64
	StunDuration  float64
}

func (p Params) Normalized() Params {
	p.PersonalSpaceRadius = common.NonNegative(p.PersonalSpaceRadius)
	p.AttackRange = common.NonNegative(p.AttackRange)
	p.EngagementRange = common.NonNegative(p.EngagementRange)
	if p.EngagementRange < p.AttackRange {
		p.EngagementRange = p.AttackRange
	}
	p.IdealDistance = common.NonNegative(p.IdealDistance)
	p.StunDuration = common.PositiveOr(p.StunDuration, 0.5)
	return p
}

// Inputs is everything a decision depends on for one tick.
type Inputs struct {
	State State
	// Elapsed is the time spent in State.
	Elapsed float64

	Dead      bool
	HasTarget bool
	// Staggered is set on the tick a hit with non-zero knockback landed.
	Staggered bool
	SubAction bool

	Visible bool
	// Distance is the true distance to the target, seen or not.
	Distance    float64
	Suspicious  bool
	MemoryGone  bool
	Unreachable bool
	AttackReady bool
}

// Outcome is the result of one evaluation.
type Outcome struct {
	Next    State
	Rule    string
	Changed bool
}

// Core evaluates a rule table. It holds no per-agent state, so one Core can
// serve any number of agents with the same Params.
type Core struct {
	Params Params
	Table  Table
}

func NewCore(p Params) *Core {
	return &Core{Params: p.Normalized(), Table: DefaultTable}
}

// Evaluate is a pure function of in and the core's params.
func (c *Core) Evaluate(in Inputs) Outcome {
	table := c.Table
	if len(table) == 0 {
		table = DefaultTable
	}
	for _, r := range table {
		if !r.When(in, c.Params) {
			continue
		}
		next := r.To(in, c.Params)
		return Outcome{Next: next, Rule: r.Name, Changed: next != in.State}
	}
	return Outcome{Next: in.State, Rule: "stay"}
}
