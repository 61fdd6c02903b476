// Package perception answers whether an agent can see or hear its target and
// keeps the agent's short-term memory of where the target was last seen.
//
// Everything here is a pure function of its inputs except Memory, which is
// owned by exactly one agent and advanced once per tick.
package perception

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/physics"
)

// Config holds the perception tunables of one agent. Angles are degrees,
// durations are seconds, SearchScanSpeed is in sweeps per second.
type Config struct {
	VisionRange     float64       `yaml:"vision_range"`
	VisionAngle     float64       `yaml:"vision_angle"`
	HearingRange    float64       `yaml:"hearing_range"`
	MemoryDuration  float64       `yaml:"memory_duration"`
	InertiaDuration float64       `yaml:"inertia_duration"`
	SearchScanAngle float64       `yaml:"search_scan_angle"`
	SearchScanSpeed float64       `yaml:"search_scan_speed"`
	SweepAmplitude  float64       `yaml:"sweep_amplitude"`
	EyeHeight       float64       `yaml:"eye_height"`
	OccluderMask    physics.Layer `yaml:"-"`
}

// Normalized returns a copy with every divisor and timer made usable.
func (c Config) Normalized() Config {
	c.VisionRange = common.NonNegative(c.VisionRange)
	c.VisionAngle = common.Clamp(common.NonNegative(c.VisionAngle), 0, 360)
	c.HearingRange = common.NonNegative(c.HearingRange)
	c.MemoryDuration = common.PositiveOr(c.MemoryDuration, 3)
	c.InertiaDuration = common.NonNegative(c.InertiaDuration)
	c.SearchScanAngle = common.Clamp(common.NonNegative(c.SearchScanAngle), 0, 360)
	c.SearchScanSpeed = common.PositiveOr(c.SearchScanSpeed, 0.5)
	c.SweepAmplitude = common.NonNegative(c.SweepAmplitude)
	c.EyeHeight = common.NonNegative(c.EyeHeight)
	if c.OccluderMask == physics.LayerNone {
		c.OccluderMask = physics.LayerGround
	}
	return c
}

// Observer is the seeing agent. Position is the body center.
type Observer struct {
	Position cp.Vector
	Facing   int
}

// Eye returns the point sight lines start from.
func (o Observer) Eye(cfg Config) cp.Vector {
	return o.Position.Add(cp.Vector{X: 0, Y: -cfg.EyeHeight})
}

// Subject is a perceivable target.
type Subject struct {
	ID       uint64
	Position cp.Vector
	Velocity cp.Vector
	Layer    physics.Layer
}

// Result is recomputed every tick and never carried across ticks.
type Result struct {
	Visible  bool
	Distance float64
	// Angle is the unsigned offset in degrees between forward and the
	// direction to the target.
	Angle  float64
	Target uint64
}

// CheckVisibility tests range, cone and line of sight in that order. A nil
// queryer means no occlusion information, so the line is treated as clear.
func CheckVisibility(q physics.Queryer, obs Observer, target Subject, cfg Config) Result {
	eye := obs.Eye(cfg)
	toTarget := target.Position.Sub(eye)
	dist := toTarget.Length()

	res := Result{
		Distance: dist,
		Angle:    angleToForward(obs.Facing, toTarget),
		Target:   target.ID,
	}

	if dist > cfg.VisionRange {
		return res
	}
	if res.Angle > cfg.VisionAngle/2 {
		return res
	}
	if dist <= 1e-9 {
		res.Visible = true
		return res
	}

	mask := cfg.OccluderMask | target.Layer
	hit, ok := physics.Cast(q, eye, toTarget, dist, mask)
	if ok && hit.Distance < dist && !hit.Collider.Layer.Has(target.Layer) {
		return res
	}

	res.Visible = true
	return res
}

func angleToForward(facing int, dir cp.Vector) float64 {
	if dir.Length() <= 1e-9 {
		return 0
	}
	forward := cp.Vector{X: 1}
	if facing < 0 {
		forward.X = -1
	}
	cross := forward.X*dir.Y - forward.Y*dir.X
	return math.Abs(math.Atan2(cross, forward.Dot(dir))) * 180 / math.Pi
}

// Noise is an audible event such as a footstep, a shot or a hit.
type Noise struct {
	Position cp.Vector
	Source   uint64
}

// Hears reports whether a listener at listener picks up noise.
func Hears(listener cp.Vector, noise Noise, cfg Config) bool {
	if cfg.HearingRange <= 0 {
		return false
	}
	return listener.Distance(noise.Position) <= cfg.HearingRange
}
