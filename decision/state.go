package decision

import "strings"

// State is the single top-level behavior an agent is in.
type State int

const (
	Patrol State = iota
	Search
	Chase
	Attack
	Reposition
	Stunned
	Dead
)

var stateNames = [...]string{
	Patrol:     "patrol",
	Search:     "search",
	Chase:      "chase",
	Attack:     "attack",
	Reposition: "reposition",
	Stunned:    "stunned",
	Dead:       "dead",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ParseState maps a config name to a State. Unknown names fall back to
// Patrol.
func ParseState(name string) (State, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return Patrol, false
}

// Engaged reports states that mean the agent was fighting.
func (s State) Engaged() bool {
	return s == Chase || s == Attack || s == Reposition
}

// SubActionKind names a timed action that runs inside a state.
type SubActionKind int

const (
	NoSubAction SubActionKind = iota
	Analyze
	WindUp
	Climb
	Vault
)

func (k SubActionKind) String() string {
	switch k {
	case Analyze:
		return "analyze"
	case WindUp:
		return "wind_up"
	case Climb:
		return "climb"
	case Vault:
		return "vault"
	default:
		return "none"
	}
}

// SubAction is a timed action advanced once per tick. While active it holds
// the agent in its current state unless damage or death intervenes.
type SubAction struct {
	Kind     SubActionKind
	Elapsed  float64
	Duration float64
	// FlipOnDone turns the agent around when an Analyze pause completes.
	FlipOnDone bool
}

func (s SubAction) Active() bool {
	return s.Kind != NoSubAction
}

func (s *SubAction) Start(kind SubActionKind, duration float64, flip bool) {
	*s = SubAction{Kind: kind, Duration: duration, FlipOnDone: flip}
}

// Advance adds dt and reports whether the action just finished. The action
// is cleared on completion; the caller reads the returned copy.
func (s *SubAction) Advance(dt float64) (SubAction, bool) {
	if !s.Active() {
		return SubAction{}, false
	}
	s.Elapsed += dt
	if s.Elapsed < s.Duration {
		return *s, false
	}
	done := *s
	*s = SubAction{}
	return done, true
}

func (s *SubAction) Cancel() {
	*s = SubAction{}
}
