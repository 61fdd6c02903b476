package entity

import (
	"log/slog"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/combat"
	"github.com/milk9111/sentinel/decision"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/perception"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/milk9111/sentinel/threat"
	"github.com/pkg/errors"
)

// AgentOptions places one agent. When Motor is nil a body is created in
// Space and driven by a physics.BodyActuator.
type AgentOptions struct {
	Spec     prefabs.AgentSpec
	Position cp.Vector
	Facing   int
	Target   ecs.Entity
	Grid     *pathfinding.Grid
	Space    *physics.Space
	Motor    physics.Actuator
}

// AgentConfigFromSpec resolves a normalized prefab into runtime tuning.
func AgentConfigFromSpec(spec prefabs.AgentSpec, grid *pathfinding.Grid) component.AgentConfig {
	kind := combat.ParseKind(spec.Kind)

	core := decision.NewCore(decision.Params{
		Ranged:              kind == combat.Ranged,
		PersonalSpaceRadius: spec.Decision.PersonalSpaceRadius,
		AttackRange:         spec.Decision.AttackRange,
		EngagementRange:     spec.Decision.EngagementRange,
		IdealDistance:       spec.Decision.IdealEngagementDistance,
		StunDuration:        spec.Decision.StunDuration,
	})

	attack := combat.Config{
		Skill:              spec.Name + "_" + kind.String(),
		Kind:               kind,
		Damage:             spec.Attack.Damage,
		Knockback:          spec.Attack.Knockback,
		Cooldown:           spec.Attack.Cooldown,
		WindUp:             spec.Attack.WindUp,
		Range:              spec.Decision.AttackRange,
		FreezeDuringWindUp: spec.Attack.Freeze,
		HitboxOffset:       cp.Vector{X: spec.Attack.HitboxOffsetX, Y: spec.Attack.HitboxOffsetY},
		HitboxSize:         cp.Vector{X: spec.Attack.HitboxWidth, Y: spec.Attack.HitboxHeight},
		ProjectileSpeed:    spec.Attack.ProjectileSpeed,
		ProjectileLifetime: spec.Attack.ProjectileLifetime,
		ProjectileRadius:   spec.Attack.ProjectileRadius,
		TargetMask:         physics.LayerPlayer,
		BlockMask:          physics.LayerGround,
	}.Normalized()

	var planner *pathfinding.Planner
	if grid != nil {
		planner = pathfinding.NewPlanner(grid, spec.Pathfinding)
	}

	return component.AgentConfig{
		Name:            spec.Name,
		Core:            core,
		Perception:      spec.Perception.Normalized(),
		Navigation:      spec.Navigation.Normalized(),
		Attack:          attack,
		Planner:         planner,
		Threat:          spec.Threat.Config.Normalized(),
		UseThreat:       spec.Threat.Enabled,
		PatrolSpeed:     spec.Movement.PatrolSpeed,
		ChaseSpeed:      spec.Movement.ChaseSpeed,
		RepositionSpeed: spec.Movement.RepositionSpeed,
		JumpStrength:    spec.Movement.JumpStrength,
		AnalyzeDuration: spec.Movement.AnalyzeDuration,
		ClimbTimeout:    spec.Movement.ClimbTimeout,
		VaultHeight:     spec.Movement.VaultHeight,
		DeadGracePeriod: spec.Decision.DeadGracePeriod,
		HalfWidth:       spec.Body.Width / 2,
		HalfHeight:      spec.Body.Height / 2,
	}
}

func NewAgent(w *ecs.World, opts AgentOptions) (ecs.Entity, error) {
	spec := opts.Spec
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return 0, errors.Wrap(err, "agent: spec")
	}

	facing := 1
	if opts.Facing < 0 {
		facing = -1
	}

	e := ecs.CreateEntity(w)
	motor := opts.Motor
	var body *component.PhysicsBody
	if motor == nil {
		if opts.Space == nil {
			ecs.DestroyEntity(w, e)
			return 0, errors.New("agent: no motor and no physics space")
		}
		b := opts.Space.AddBody(e.ID(), opts.Position, spec.Body.Width, spec.Body.Height, physics.LayerAgent, physics.LayerGround)
		motor = physics.NewBodyActuator(b, facing)
		body = &component.PhysicsBody{
			Body:     b,
			Width:    spec.Body.Width,
			Height:   spec.Body.Height,
			Layer:    physics.LayerAgent,
			Collides: physics.LayerGround,
		}
	}

	state, ok := decision.ParseState(spec.InitialState)
	if !ok {
		slog.Warn("agent: unknown initial state", "name", spec.Name, "state", spec.InitialState)
	}
	awareness, ok := perception.ParseAwareness(spec.InitialAwareness)
	if !ok {
		slog.Warn("agent: unknown initial awareness", "name", spec.Name, "awareness", spec.InitialAwareness)
	}

	cfg := AgentConfigFromSpec(spec, opts.Grid)
	mem := perception.NewMemory(awareness)
	cs := combat.NewState()
	prof := threat.NewProfile(spec.Threat.Aggression, spec.Threat.CoverPreference, spec.Decision.IdealEngagementDistance, cfg.Threat)

	adds := []func() error{
		func() error { return ecs.Add(w, e, component.AgentTagComponent.Kind(), &component.AgentTag{}) },
		func() error { return ecs.Add(w, e, component.AgentConfigComponent.Kind(), &cfg) },
		func() error {
			return ecs.Add(w, e, component.AIStateComponent.Kind(), &component.AIState{Current: state, Previous: state})
		},
		func() error { return ecs.Add(w, e, component.SubActionComponent.Kind(), &decision.SubAction{}) },
		func() error { return ecs.Add(w, e, component.MemoryComponent.Kind(), &mem) },
		func() error { return ecs.Add(w, e, component.CombatComponent.Kind(), &cs) },
		func() error { return ecs.Add(w, e, component.ThreatComponent.Kind(), &prof) },
		func() error { return ecs.Add(w, e, component.PathComponent.Kind(), &pathfinding.Path{}) },
		func() error {
			return ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: spec.Health.Max, Max: spec.Health.Max})
		},
		func() error {
			return ecs.Add(w, e, component.VitalsComponent.Kind(), &component.Vitals{
				Defense:             spec.Health.Defense,
				KnockbackResistance: spec.Health.KnockbackResistance,
			})
		},
		func() error {
			return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: opts.Position})
		},
		func() error { return ecs.Add(w, e, component.FacingComponent.Kind(), &component.Facing{Sign: facing}) },
		func() error { return ecs.Add(w, e, component.MotorComponent.Kind(), &component.Motor{Actuator: motor}) },
		func() error {
			return ecs.Add(w, e, component.AnimationLinkComponent.Kind(), &component.AnimationLink{
				State:  state.String(),
				Speed:  1,
				Facing: facing,
			})
		},
	}
	if opts.Target.Valid() {
		adds = append(adds, func() error {
			return ecs.Add(w, e, component.TargetComponent.Kind(), &component.Target{Entity: opts.Target.ID()})
		})
	}
	if body != nil {
		adds = append(adds, func() error { return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body) })
	}
	if spec.Script != "" {
		adds = append(adds, func() error {
			return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Name: spec.Script})
		})
	}

	for _, add := range adds {
		if err := add(); err != nil {
			return 0, errors.Wrapf(err, "agent: build %s", spec.Name)
		}
	}

	slog.Info("agent: spawned", "entity", e, "name", spec.Name, "kind", cfg.Attack.Kind, "x", opts.Position.X, "y", opts.Position.Y)
	return e, nil
}
