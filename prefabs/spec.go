package prefabs

import (
	"math"
	"strings"

	"github.com/milk9111/sentinel/navigation"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/threat"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, err
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, errors.Wrapf(err, "prefabs: unmarshal %s", filename)
	}
	return spec, nil
}

type BodySpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type HealthSpec struct {
	Max                 float64 `yaml:"max"`
	Defense             float64 `yaml:"defense"`
	KnockbackResistance float64 `yaml:"knockback_resistance"`
}

type MovementSpec struct {
	PatrolSpeed     float64 `yaml:"patrol_speed"`
	ChaseSpeed      float64 `yaml:"chase_speed"`
	RepositionSpeed float64 `yaml:"reposition_speed"`
	JumpStrength    float64 `yaml:"jump_strength"`
	AnalyzeDuration float64 `yaml:"analyze_duration"`
	ClimbTimeout    float64 `yaml:"climb_timeout"`
	VaultHeight     float64 `yaml:"vault_height"`
}

type DecisionSpec struct {
	PersonalSpaceRadius     float64 `yaml:"personal_space_radius"`
	EngagementRange         float64 `yaml:"engagement_range"`
	AttackRange             float64 `yaml:"attack_range"`
	IdealEngagementDistance float64 `yaml:"ideal_engagement_distance"`
	StunDuration            float64 `yaml:"stun_duration"`
	DeadGracePeriod         float64 `yaml:"dead_grace_period"`
}

type AttackSpec struct {
	Damage             float64 `yaml:"damage"`
	Cooldown           float64 `yaml:"cooldown"`
	Knockback          float64 `yaml:"knockback"`
	WindUp             float64 `yaml:"wind_up"`
	Freeze             bool    `yaml:"freeze"`
	HitboxOffsetX      float64 `yaml:"hitbox_offset_x"`
	HitboxOffsetY      float64 `yaml:"hitbox_offset_y"`
	HitboxWidth        float64 `yaml:"hitbox_width"`
	HitboxHeight       float64 `yaml:"hitbox_height"`
	ProjectileSpeed    float64 `yaml:"projectile_speed"`
	ProjectileLifetime float64 `yaml:"projectile_lifetime"`
	ProjectileRadius   float64 `yaml:"projectile_radius"`
}

type ThreatSpec struct {
	Enabled         bool          `yaml:"enabled"`
	Aggression      float64       `yaml:"aggression"`
	CoverPreference float64       `yaml:"cover_preference"`
	Config          threat.Config `yaml:",inline"`
}

// AgentSpec is one agent prefab.
type AgentSpec struct {
	Name             string             `yaml:"name"`
	Kind             string             `yaml:"kind"`
	InitialState     string             `yaml:"initial_state"`
	InitialAwareness string             `yaml:"initial_awareness"`
	Script           string             `yaml:"script"`
	Body             BodySpec           `yaml:"body"`
	Health           HealthSpec         `yaml:"health"`
	Movement         MovementSpec       `yaml:"movement"`
	Perception       perception.Config  `yaml:"perception"`
	Navigation       navigation.Config  `yaml:"navigation"`
	Decision         DecisionSpec       `yaml:"decision"`
	Attack           AttackSpec         `yaml:"attack"`
	Pathfinding      pathfinding.Config `yaml:"pathfinding"`
	Threat           ThreatSpec         `yaml:"threat"`
}

func LoadAgentSpec(filename string) (AgentSpec, error) {
	spec, err := LoadSpec[AgentSpec](filename)
	if err != nil {
		return AgentSpec{}, err
	}
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return AgentSpec{}, errors.Wrapf(err, "prefabs: %s", filename)
	}
	return spec, nil
}

func positiveOr(v *float64, fallback float64) {
	if *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		*v = fallback
	}
}

func nonNegative(v *float64) {
	if !(*v > 0) {
		*v = 0
	}
}

// Normalize fills defaults and guards every timer, rate and divisor against
// zero or negative values.
func (s *AgentSpec) Normalize() {
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	if s.Kind == "" {
		s.Kind = "melee"
	}
	if s.InitialState == "" {
		s.InitialState = "patrol"
	}
	if s.InitialAwareness == "" {
		s.InitialAwareness = "patrolling"
	}

	positiveOr(&s.Body.Width, 20)
	positiveOr(&s.Body.Height, 44)

	nonNegative(&s.Health.Defense)
	nonNegative(&s.Health.KnockbackResistance)

	nonNegative(&s.Movement.PatrolSpeed)
	nonNegative(&s.Movement.ChaseSpeed)
	positiveOr(&s.Movement.RepositionSpeed, s.Movement.ChaseSpeed)
	nonNegative(&s.Movement.JumpStrength)
	positiveOr(&s.Movement.AnalyzeDuration, 0.75)
	positiveOr(&s.Movement.ClimbTimeout, 2)
	positiveOr(&s.Movement.VaultHeight, 64)

	nonNegative(&s.Decision.PersonalSpaceRadius)
	nonNegative(&s.Decision.AttackRange)
	if s.Decision.EngagementRange < s.Decision.AttackRange {
		s.Decision.EngagementRange = s.Decision.AttackRange
	}
	nonNegative(&s.Decision.IdealEngagementDistance)
	positiveOr(&s.Decision.StunDuration, 0.4)
	positiveOr(&s.Decision.DeadGracePeriod, 2)

	nonNegative(&s.Attack.Damage)
	nonNegative(&s.Attack.Cooldown)
	nonNegative(&s.Attack.Knockback)
	nonNegative(&s.Attack.WindUp)

	s.Threat.Config = s.Threat.Config.Normalized()

	s.Perception = s.Perception.Normalized()
	s.Navigation = s.Navigation.Normalized()
	if s.Navigation.StandingHeight < s.Body.Height {
		s.Navigation.StandingHeight = s.Body.Height
	}
	s.Pathfinding = s.Pathfinding.Normalized(s.Navigation.TileSize)
}

// Validate reports values Normalize cannot repair.
func (s AgentSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.Wrap(ErrInvalidSpec, "name is required")
	}
	if s.Kind != "melee" && s.Kind != "ranged" {
		return errors.Wrapf(ErrInvalidSpec, "kind %q must be melee or ranged", s.Kind)
	}
	if s.Health.Max <= 0 {
		return errors.Wrapf(ErrInvalidSpec, "health.max %v must be positive", s.Health.Max)
	}
	if s.Kind == "ranged" && s.Decision.IdealEngagementDistance <= 0 {
		return errors.Wrap(ErrInvalidSpec, "ranged agents need decision.ideal_engagement_distance")
	}
	return nil
}
