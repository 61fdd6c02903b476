package decision

// Rule is one row of the decision table.
type Rule struct {
	Name string
	When func(in Inputs, p Params) bool
	To   func(in Inputs, p Params) State
}

// Table is evaluated top to bottom.
type Table []Rule

func goTo(s State) func(Inputs, Params) State {
	return func(Inputs, Params) State { return s }
}

func stay(in Inputs, _ Params) State {
	return in.State
}

// panicState is the personal-space reaction: melee agents strike, ranged
// agents back away.
func panicState(_ Inputs, p Params) State {
	if p.Ranged {
		return Reposition
	}
	return Attack
}

// DefaultTable encodes the agent priorities. Death and a lost target are
// unconditional; a stagger cancels whatever was running; timed sub-actions
// hold the state until they finish.
var DefaultTable = Table{
	{
		Name: "dead",
		When: func(in Inputs, _ Params) bool { return in.Dead || in.State == Dead },
		To:   goTo(Dead),
	},
	{
		Name: "target_missing",
		When: func(in Inputs, _ Params) bool { return !in.HasTarget },
		To:   goTo(Patrol),
	},
	{
		Name: "staggered",
		When: func(in Inputs, _ Params) bool { return in.Staggered },
		To:   goTo(Stunned),
	},
	{
		Name: "stun_expired",
		When: func(in Inputs, p Params) bool { return in.State == Stunned && in.Elapsed >= p.StunDuration },
		To:   goTo(Search),
	},
	{
		Name: "stunned",
		When: func(in Inputs, _ Params) bool { return in.State == Stunned },
		To:   stay,
	},
	{
		Name: "sub_action",
		When: func(in Inputs, _ Params) bool { return in.SubAction },
		To:   stay,
	},
	{
		Name: "personal_space",
		When: func(in Inputs, p Params) bool { return in.Distance <= p.PersonalSpaceRadius },
		To:   panicState,
	},
	{
		Name: "unreachable",
		When: func(in Inputs, _ Params) bool { return in.Unreachable },
		To:   goTo(Patrol),
	},
	{
		Name: "attack",
		When: func(in Inputs, p Params) bool {
			return in.Visible && in.Distance <= p.AttackRange && in.AttackReady
		},
		To: goTo(Attack),
	},
	{
		Name: "kite",
		When: func(in Inputs, p Params) bool {
			return in.Visible && p.Ranged && in.Distance < p.IdealDistance
		},
		To: goTo(Reposition),
	},
	{
		Name: "chase",
		When: func(in Inputs, _ Params) bool { return in.Visible },
		To:   goTo(Chase),
	},
	{
		Name: "lost_target",
		When: func(in Inputs, _ Params) bool { return in.State.Engaged() },
		To:   goTo(Search),
	},
	{
		Name: "investigate",
		When: func(in Inputs, _ Params) bool { return in.State == Patrol && in.Suspicious },
		To:   goTo(Search),
	},
	{
		Name: "search_expired",
		When: func(in Inputs, _ Params) bool { return in.State == Search && in.MemoryGone },
		To:   goTo(Patrol),
	},
}
