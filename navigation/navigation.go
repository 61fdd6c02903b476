// Package navigation classifies the terrain directly ahead of an agent from a
// handful of raycast probes.
package navigation

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/physics"
)

type Kind int

const (
	Clear Kind = iota
	JumpableObstacle
	Wall
	Ledge
	DroppableLedge
)

func (k Kind) String() string {
	switch k {
	case Clear:
		return "clear"
	case JumpableObstacle:
		return "jumpable"
	case Wall:
		return "wall"
	case Ledge:
		return "ledge"
	case DroppableLedge:
		return "droppable_ledge"
	default:
		return "unknown"
	}
}

// probeLift keeps downward probes from starting exactly on a floor surface.
const probeLift = 1.0

// Config holds the scanner distances in world units. Heights are measured
// upward from the agent's feet.
type Config struct {
	TileSize              float64       `yaml:"wall_scan_tile_size"`
	LedgeProbeDistance    float64       `yaml:"ledge_probe_distance"`
	GroundProbeDepth      float64       `yaml:"ground_probe_depth"`
	ObstacleProbeDistance float64       `yaml:"obstacle_probe_distance"`
	KneeHeight            float64       `yaml:"knee_height"`
	ChestHeight           float64       `yaml:"chest_height"`
	MaxJumpableHeight     float64       `yaml:"max_jumpable_height"`
	MaxDropDownHeight     float64       `yaml:"max_drop_down_height"`
	MaxScanHeight         float64       `yaml:"max_scan_height"`
	GapScanDistance       float64       `yaml:"gap_scan_distance"`
	StandingHeight        float64       `yaml:"standing_height"`
	GroundMask            physics.Layer `yaml:"-"`
}

// Normalized fills unset distances from the tile size.
func (c Config) Normalized() Config {
	c.TileSize = common.PositiveOr(c.TileSize, common.TileSize)
	c.LedgeProbeDistance = common.PositiveOr(c.LedgeProbeDistance, c.TileSize/4)
	c.GroundProbeDepth = common.PositiveOr(c.GroundProbeDepth, c.TileSize/4)
	c.ObstacleProbeDistance = common.PositiveOr(c.ObstacleProbeDistance, c.TileSize/2)
	c.KneeHeight = common.PositiveOr(c.KneeHeight, c.TileSize/3)
	c.ChestHeight = common.PositiveOr(c.ChestHeight, c.TileSize*1.25)
	c.MaxJumpableHeight = common.PositiveOr(c.MaxJumpableHeight, c.TileSize*1.25)
	c.MaxDropDownHeight = common.NonNegative(c.MaxDropDownHeight)
	c.MaxScanHeight = common.PositiveOr(c.MaxScanHeight, c.TileSize*4)
	c.GapScanDistance = common.PositiveOr(c.GapScanDistance, c.TileSize*4)
	c.StandingHeight = common.PositiveOr(c.StandingHeight, c.TileSize*1.5)
	if c.GroundMask == physics.LayerNone {
		c.GroundMask = physics.LayerGround
	}
	return c
}

// Probe describes the agent doing the scanning.
type Probe struct {
	// Feet is the bottom center of the agent's body.
	Feet      cp.Vector
	Facing    int
	HalfWidth float64
}

func (p Probe) dir() float64 {
	if p.Facing < 0 {
		return -1
	}
	return 1
}

func (p Probe) lead() float64 {
	return p.Feet.X + p.dir()*p.HalfWidth
}

// Report is the classification of the path ahead for one tick.
type Report struct {
	Kind           Kind
	ObstacleHeight float64
	// GapWidth and DropDepth are +Inf when the far side or the bottom was
	// not found within scan range.
	GapWidth  float64
	DropDepth float64
	Distance  float64
	// Entry is where a jump, drop or traversal should aim.
	Entry cp.Vector
}

var down = cp.Vector{X: 0, Y: 1}

// AnalyzePathAhead runs the ledge, knee and chest probes in that order and
// stops at the first one that finds something.
func AnalyzePathAhead(q physics.Queryer, p Probe, cfg Config) Report {
	if rep, ok := probeLedge(q, p, cfg); ok {
		return rep
	}
	if rep, ok := probeKnee(q, p, cfg); ok {
		return rep
	}
	if rep, ok := probeChest(q, p, cfg); ok {
		return rep
	}
	return Report{Kind: Clear}
}

func groundAt(q physics.Queryer, x, feetY float64, cfg Config) bool {
	_, ok := physics.Cast(q, cp.Vector{X: x, Y: feetY - probeLift}, down, cfg.GroundProbeDepth+probeLift, cfg.GroundMask)
	return ok
}

func probeLedge(q physics.Queryer, p Probe, cfg Config) (Report, bool) {
	if q == nil {
		return Report{}, false
	}
	x := p.lead() + p.dir()*cfg.LedgeProbeDistance
	if groundAt(q, x, p.Feet.Y, cfg) {
		return Report{}, false
	}

	rep := Report{
		Kind:     Ledge,
		GapWidth: gapWidth(q, p, cfg),
		Distance: cfg.LedgeProbeDistance,
	}

	maxDepth := cfg.MaxDropDownHeight + cfg.TileSize*2
	origin := cp.Vector{X: x, Y: p.Feet.Y - probeLift}
	hit, ok := physics.Cast(q, origin, down, maxDepth+probeLift, cfg.GroundMask)
	if !ok {
		rep.DropDepth = math.Inf(1)
		return rep, true
	}
	rep.DropDepth = hit.Distance - probeLift
	rep.Entry = hit.Point
	if rep.DropDepth <= cfg.MaxDropDownHeight {
		rep.Kind = DroppableLedge
	}
	return rep, true
}

// gapWidth walks forward from the leading edge in quarter tiles, finding
// where the floor stops and where it resumes.
func gapWidth(q physics.Queryer, p Probe, cfg Config) float64 {
	stride := cfg.TileSize / 4
	limit := cfg.LedgeProbeDistance + cfg.GapScanDistance
	start := math.NaN()
	for d := 0.0; d <= limit; d += stride {
		x := p.lead() + p.dir()*d
		ground := groundAt(q, x, p.Feet.Y, cfg)
		switch {
		case !ground && math.IsNaN(start):
			start = d
		case ground && !math.IsNaN(start):
			return d - start
		}
	}
	return math.Inf(1)
}

func probeKnee(q physics.Queryer, p Probe, cfg Config) (Report, bool) {
	origin := cp.Vector{X: p.lead(), Y: p.Feet.Y - cfg.KneeHeight}
	hit, ok := physics.Cast(q, origin, cp.Vector{X: p.dir()}, cfg.ObstacleProbeDistance, cfg.GroundMask)
	if !ok {
		return Report{}, false
	}

	// Probe down from above the obstacle to measure its top. A probe that
	// starts inside solid ground reports the full probe height.
	top := cfg.MaxJumpableHeight + cfg.TileSize
	x := hit.Point.X + p.dir()*2
	height := cfg.KneeHeight
	if h, ok := physics.Cast(q, cp.Vector{X: x, Y: p.Feet.Y - top}, down, top, cfg.GroundMask); ok {
		height = top - h.Distance
	}

	rep := Report{
		Kind:           Wall,
		ObstacleHeight: height,
		Distance:       hit.Distance,
		Entry:          cp.Vector{X: x, Y: p.Feet.Y - height},
	}
	if height <= cfg.MaxJumpableHeight {
		rep.Kind = JumpableObstacle
	}
	return rep, true
}

func probeChest(q physics.Queryer, p Probe, cfg Config) (Report, bool) {
	origin := cp.Vector{X: p.lead(), Y: p.Feet.Y - cfg.ChestHeight}
	hit, ok := physics.Cast(q, origin, cp.Vector{X: p.dir()}, cfg.ObstacleProbeDistance, cfg.GroundMask)
	if !ok {
		return Report{}, false
	}
	return Report{
		Kind:           Wall,
		ObstacleHeight: cfg.ChestHeight,
		Distance:       hit.Distance,
		Entry:          hit.Point,
	}, true
}
