// Package combat gates attacks behind cooldowns and wind-ups and resolves
// them into hits or projectiles.
package combat

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/physics"
)

type Kind int

const (
	Melee Kind = iota
	Ranged
)

func (k Kind) String() string {
	if k == Ranged {
		return "ranged"
	}
	return "melee"
}

// ParseKind maps a config string to a Kind. Unknown values are melee.
func ParseKind(s string) Kind {
	if s == "ranged" {
		return Ranged
	}
	return Melee
}

// Config describes one attack skill.
type Config struct {
	Skill              string
	Kind               Kind
	Damage             float64
	Knockback          float64
	Cooldown           float64
	WindUp             float64
	Range              float64
	FreezeDuringWindUp bool
	// HitboxOffset is measured from the attacker center with X mirrored by
	// facing.
	HitboxOffset       cp.Vector
	HitboxSize         cp.Vector
	ProjectileSpeed    float64
	ProjectileLifetime float64
	ProjectileRadius   float64
	TargetMask         physics.Layer
	BlockMask          physics.Layer
}

func (c Config) Normalized() Config {
	if c.Skill == "" {
		c.Skill = c.Kind.String()
	}
	c.Damage = common.NonNegative(c.Damage)
	c.Knockback = common.NonNegative(c.Knockback)
	c.Cooldown = common.NonNegative(c.Cooldown)
	c.WindUp = common.NonNegative(c.WindUp)
	c.Range = common.NonNegative(c.Range)
	c.HitboxSize.X = common.PositiveOr(c.HitboxSize.X, common.TileSize)
	c.HitboxSize.Y = common.PositiveOr(c.HitboxSize.Y, common.TileSize)
	c.ProjectileSpeed = common.PositiveOr(c.ProjectileSpeed, 300)
	c.ProjectileLifetime = common.PositiveOr(c.ProjectileLifetime, 2)
	c.ProjectileRadius = common.NonNegative(c.ProjectileRadius)
	if c.TargetMask == physics.LayerNone {
		c.TargetMask = physics.LayerPlayer
	}
	if c.BlockMask == physics.LayerNone {
		c.BlockMask = physics.LayerGround
	}
	return c
}

// AppliedDamage is max(0, incoming - defense).
func AppliedDamage(incoming, defense float64) float64 {
	return common.NonNegative(incoming - defense)
}

// AppliedKnockback is max(0, force - resistance).
func AppliedKnockback(force, resistance float64) float64 {
	return common.NonNegative(force - resistance)
}

// Cooldowns maps a skill name to the time it last resolved.
type Cooldowns map[string]float64

func (c Cooldowns) Ready(skill string, now, cooldown float64) bool {
	last, ok := c[skill]
	return !ok || now >= last+cooldown
}

// Remaining is the time left before skill is ready, never negative.
func (c Cooldowns) Remaining(skill string, now, cooldown float64) float64 {
	last, ok := c[skill]
	if !ok {
		return 0
	}
	return common.NonNegative(last + cooldown - now)
}

func (c Cooldowns) Arm(skill string, now float64) {
	c[skill] = now
}

// WindUp is an attack waiting to resolve.
type WindUp struct {
	Active   bool
	Skill    string
	Elapsed  float64
	Duration float64
	Aim      cp.Vector
	Facing   int
}

// State is the combat state of one agent.
type State struct {
	Cooldowns Cooldowns
	WindUp    WindUp
}

func NewState() State {
	return State{Cooldowns: Cooldowns{}}
}

// Ready reports that cfg's skill can start now.
func (s *State) Ready(cfg Config, now float64) bool {
	if s == nil || s.WindUp.Active {
		return false
	}
	if s.Cooldowns == nil {
		return true
	}
	return s.Cooldowns.Ready(cfg.Skill, now, cfg.Cooldown)
}

// TryAttack starts a wind-up toward target. It is a no-op returning false
// while the skill is cooling down or another wind-up is running.
func TryAttack(s *State, cfg Config, now float64, self, target cp.Vector, facing int) bool {
	if !s.Ready(cfg, now) {
		return false
	}
	if s.Cooldowns == nil {
		s.Cooldowns = Cooldowns{}
	}

	dx := target.X - self.X
	switch {
	case dx > 0:
		facing = 1
	case dx < 0:
		facing = -1
	case facing == 0:
		facing = 1
	}
	aim := physics.Direction(self, target)
	if aim.Length() == 0 {
		aim = cp.Vector{X: float64(facing)}
	}

	s.WindUp = WindUp{
		Active:   true,
		Skill:    cfg.Skill,
		Duration: cfg.WindUp,
		Aim:      aim,
		Facing:   facing,
	}
	return true
}

// Cancel drops a running wind-up without arming the cooldown.
func Cancel(s *State) bool {
	if s == nil || !s.WindUp.Active {
		return false
	}
	s.WindUp = WindUp{}
	return true
}

// Strike is one collider hit by a melee resolution.
type Strike struct {
	Collider  physics.Collider
	Direction cp.Vector
}

// Resolution is the outcome of a finished wind-up.
type Resolution struct {
	Kind       Kind
	Skill      string
	Damage     float64
	Knockback  float64
	Hitbox     cp.BB
	Strikes    []Strike
	Projectile *Projectile
}

// Advance moves a running wind-up forward by dt and resolves it exactly once
// when its duration is reached. The skill's cooldown is armed at resolution.
// target is where the target stands now; a ranged shot is aimed at it and
// falls back to the wind-up aim when target is nil or coincides with self.
func Advance(s *State, cfg Config, dt, now float64, q physics.Queryer, self cp.Vector, target *cp.Vector, owner uint64) (Resolution, bool) {
	if s == nil || !s.WindUp.Active {
		return Resolution{}, false
	}
	s.WindUp.Elapsed += dt
	if s.WindUp.Elapsed < s.WindUp.Duration {
		return Resolution{}, false
	}

	w := s.WindUp
	s.WindUp = WindUp{}
	if s.Cooldowns == nil {
		s.Cooldowns = Cooldowns{}
	}
	s.Cooldowns.Arm(w.Skill, now)

	res := Resolution{
		Kind:      cfg.Kind,
		Skill:     w.Skill,
		Damage:    cfg.Damage,
		Knockback: cfg.Knockback,
	}
	if cfg.Kind == Ranged {
		aim := w.Aim
		if target != nil {
			if d := physics.Direction(self, *target); d.Length() > 0 {
				aim = d
			}
		}
		if aim.Length() == 0 {
			aim = cp.Vector{X: float64(w.Facing)}
		}
		res.Projectile = &Projectile{
			Owner:     owner,
			Position:  self,
			Velocity:  aim.Mult(cfg.ProjectileSpeed),
			Damage:    cfg.Damage,
			Knockback: cfg.Knockback,
			Lifetime:  cfg.ProjectileLifetime,
			Radius:    cfg.ProjectileRadius,
			HitMask:   cfg.TargetMask,
			BlockMask: cfg.BlockMask,
		}
		return res, true
	}

	res.Hitbox = Hitbox(cfg, self, w.Facing)
	seen := make(map[uint64]bool)
	for _, c := range physics.Overlap(q, res.Hitbox, cfg.TargetMask) {
		if c.ID != 0 {
			if c.ID == owner || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
		}
		dir := physics.Direction(self, c.BB.Center())
		if dir.Length() == 0 {
			dir = cp.Vector{X: float64(w.Facing)}
		}
		res.Strikes = append(res.Strikes, Strike{Collider: c, Direction: dir})
	}
	return res, true
}

// Hitbox returns the melee overlap box for an attacker at self.
func Hitbox(cfg Config, self cp.Vector, facing int) cp.BB {
	f := 1.0
	if facing < 0 {
		f = -1
	}
	center := self.Add(cp.Vector{X: cfg.HitboxOffset.X * f, Y: cfg.HitboxOffset.Y})
	return physics.BoxAround(center, cfg.HitboxSize.X, cfg.HitboxSize.Y)
}
