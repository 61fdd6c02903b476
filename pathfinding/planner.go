package pathfinding

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
)

// Path is one agent's cached route. A replan produces a new Path value; an
// existing one is never edited except for its Index.
type Path struct {
	Waypoints []cp.Vector
	Index     int
	// Goal is the target position the path was planned for.
	Goal cp.Vector
	// Failed marks an empty result. RetryAt holds back the next search.
	Failed  bool
	RetryAt float64
}

func (p Path) Empty() bool {
	return len(p.Waypoints) == 0
}

// Done reports that every waypoint has been reached.
func (p Path) Done() bool {
	return !p.Empty() && p.Index >= len(p.Waypoints)
}

// Current returns the waypoint being walked toward.
func (p Path) Current() (cp.Vector, bool) {
	if p.Index < 0 || p.Index >= len(p.Waypoints) {
		return cp.Vector{}, false
	}
	return p.Waypoints[p.Index], true
}

// Final returns the last waypoint.
func (p Path) Final() (cp.Vector, bool) {
	if p.Empty() {
		return cp.Vector{}, false
	}
	return p.Waypoints[len(p.Waypoints)-1], true
}

// Config holds planner tuning in world units and seconds.
type Config struct {
	ReplanThreshold   float64 `yaml:"replan_threshold"`
	WaypointTolerance float64 `yaml:"waypoint_tolerance"`
	MaxNodes          int     `yaml:"max_nodes"`
	RetryDelay        float64 `yaml:"retry_delay"`
}

func (c Config) Normalized(cellSize float64) Config {
	cellSize = common.PositiveOr(cellSize, common.TileSize)
	c.ReplanThreshold = common.PositiveOr(c.ReplanThreshold, cellSize*2)
	c.WaypointTolerance = common.PositiveOr(c.WaypointTolerance, cellSize*0.5)
	if c.MaxNodes < 0 {
		c.MaxNodes = 0
	}
	c.RetryDelay = common.NonNegative(c.RetryDelay)
	return c
}

// Planner plans over a shared read-only grid.
type Planner struct {
	Grid   *Grid
	Config Config
}

func NewPlanner(grid *Grid, cfg Config) *Planner {
	cell := common.TileSize
	if grid != nil {
		cell = grid.CellSize
	}
	return &Planner{Grid: grid, Config: cfg.Normalized(cell)}
}

// NeedsReplan reports whether cache is stale for target at time now.
func (p *Planner) NeedsReplan(cache Path, target cp.Vector, now float64) bool {
	if cache.Failed {
		return now >= cache.RetryAt
	}
	final, ok := cache.Final()
	if !ok {
		return true
	}
	return final.Distance(target) > p.Config.ReplanThreshold
}

// Plan returns cache unchanged unless it is empty or target has drifted more
// than ReplanThreshold from its final waypoint. The bool reports a replan.
// A failed search yields an empty Path marked Failed, never an error.
func (p *Planner) Plan(cache Path, from, target cp.Vector, now float64) (Path, bool) {
	if p == nil || !p.NeedsReplan(cache, target, now) {
		return cache, false
	}
	if p.Grid == nil {
		return p.failed(target, now), true
	}

	cells := p.Grid.Search(p.Grid.CellAt(from), p.Grid.CellAt(target), p.Config.MaxNodes)
	if len(cells) == 0 {
		return p.failed(target, now), true
	}

	waypoints := make([]cp.Vector, 0, len(cells))
	for _, c := range cells[1:] {
		waypoints = append(waypoints, p.Grid.Center(c))
	}
	if len(waypoints) == 0 {
		waypoints = append(waypoints, p.Grid.Center(cells[0]))
	}
	return Path{Waypoints: waypoints, Goal: target}, true
}

func (p *Planner) failed(target cp.Vector, now float64) Path {
	return Path{Goal: target, Failed: true, RetryAt: now + p.Config.RetryDelay}
}

// Follow advances the waypoint index past every waypoint within tolerance
// of pos. It returns the waypoint to steer toward and whether the path is
// complete; on completion the caller should stop the motor.
func (p *Planner) Follow(path *Path, pos cp.Vector) (cp.Vector, bool) {
	if path == nil || path.Empty() {
		return cp.Vector{}, false
	}
	tol := common.TileSize * 0.5
	if p != nil {
		tol = p.Config.WaypointTolerance
	}
	for path.Index < len(path.Waypoints) && path.Waypoints[path.Index].Distance(pos) <= tol {
		path.Index++
	}
	if path.Index >= len(path.Waypoints) {
		final, _ := path.Final()
		return final, true
	}
	return path.Waypoints[path.Index], false
}
