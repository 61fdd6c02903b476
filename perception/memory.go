package perception

import (
	"math"
	"strings"

	"github.com/jakecoffman/cp"
)

// Awareness is the agent's alertness toward its target.
type Awareness int

const (
	Dormant Awareness = iota
	Patrolling
	Suspicious
	Alert
	Hunting
)

func (a Awareness) String() string {
	switch a {
	case Dormant:
		return "dormant"
	case Patrolling:
		return "patrolling"
	case Suspicious:
		return "suspicious"
	case Alert:
		return "alert"
	case Hunting:
		return "hunting"
	default:
		return "unknown"
	}
}

// ParseAwareness maps a config name to a level; unknown names report false
// and Patrolling.
func ParseAwareness(name string) (Awareness, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a := Dormant; a <= Hunting; a++ {
		if a.String() == name {
			return a, true
		}
	}
	return Patrolling, false
}

// Memory is the last known position (LKP) record of one agent.
type Memory struct {
	Level        Awareness
	Timer        float64
	LastKnown    cp.Vector
	LastVelocity cp.Vector
	// Age is the time since LastKnown was recorded.
	Age    float64
	HasLKP bool
}

// NewMemory starts at the given resting level.
func NewMemory(level Awareness) Memory {
	if level > Patrolling {
		level = Patrolling
	}
	return Memory{Level: level}
}

// Observe records a sighting. Any level jumps straight to Hunting.
func (m *Memory) Observe(pos, vel cp.Vector, cfg Config) {
	m.Level = Hunting
	m.Timer = cfg.MemoryDuration
	m.LastKnown = pos
	m.LastVelocity = vel
	m.Age = 0
	m.HasLKP = true
}

// Update advances memory by one tick. Sightings win over any decay in
// progress.
func (m *Memory) Update(visible bool, target Subject, dt float64, cfg Config) {
	if visible {
		m.Observe(target.Position, target.Velocity, cfg)
		return
	}
	if m.HasLKP {
		m.Age += dt
	}

	switch m.Level {
	case Hunting:
		m.Level = Alert
		m.Timer = cfg.MemoryDuration - dt
	case Alert, Suspicious:
		m.Timer -= dt
	default:
		return
	}
	if m.Timer <= 0 {
		m.Level = Patrolling
		m.Timer = 0
	}
}

// Stimulus reacts to a noise or an unseen hit at source. It is ignored when
// the agent is already Alert or Hunting.
func (m *Memory) Stimulus(source cp.Vector, cfg Config) bool {
	if m.Level >= Alert {
		return false
	}
	m.Level = Suspicious
	m.Timer = cfg.MemoryDuration / 2
	m.LastKnown = source
	m.LastVelocity = cp.Vector{}
	m.Age = 0
	m.HasLKP = true
	return true
}

// Aware reports Alert or Hunting.
func (m Memory) Aware() bool {
	return m.Level >= Alert
}

// Expired reports that nothing is left to investigate.
func (m Memory) Expired() bool {
	return m.Level <= Patrolling
}

// Forget drops the LKP and returns to Patrolling.
func (m *Memory) Forget() {
	*m = Memory{Level: Patrolling}
}

// SearchMode tells how an Estimate was produced.
type SearchMode int

const (
	ModeNone SearchMode = iota
	ModeTracking
	ModeSweeping
)

func (s SearchMode) String() string {
	switch s {
	case ModeTracking:
		return "tracking"
	case ModeSweeping:
		return "sweeping"
	default:
		return "none"
	}
}

// Estimate is where the agent should look for an unseen target.
type Estimate struct {
	Position cp.Vector
	// LookAngle is a degree offset from facing, swept while searching.
	LookAngle float64
	Mode      SearchMode
}

// Predict extrapolates the LKP along the recorded velocity for up to
// InertiaDuration, then sweeps sinusoidally around the extrapolated point.
func Predict(m Memory, cfg Config) Estimate {
	if !m.HasLKP {
		return Estimate{Mode: ModeNone}
	}
	t := math.Min(m.Age, cfg.InertiaDuration)
	base := m.LastKnown.Add(m.LastVelocity.Mult(t))
	if m.Age <= cfg.InertiaDuration {
		return Estimate{Position: base, Mode: ModeTracking}
	}

	phase := 2 * math.Pi * cfg.SearchScanSpeed * (m.Age - cfg.InertiaDuration)
	wave := math.Sin(phase)
	return Estimate{
		Position:  base.Add(cp.Vector{X: cfg.SweepAmplitude * wave}),
		LookAngle: cfg.SearchScanAngle / 2 * wave,
		Mode:      ModeSweeping,
	}
}
