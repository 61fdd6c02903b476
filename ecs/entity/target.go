package entity

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
	"github.com/pkg/errors"
)

// TargetOptions places the scripted stand-in agents hunt.
type TargetOptions struct {
	Position  cp.Vector
	Width     float64
	Height    float64
	Health    float64
	Speed     float64
	Pause     float64
	Waypoints []cp.Vector
	// NoisePeriod is how often the target is audible while walking.
	NoisePeriod float64
	Space       *physics.Space
	Motor       physics.Actuator
}

func NewTarget(w *ecs.World, opts TargetOptions) (ecs.Entity, error) {
	width := common.PositiveOr(opts.Width, 20)
	height := common.PositiveOr(opts.Height, 44)

	e := ecs.CreateEntity(w)
	motor := opts.Motor
	if motor == nil {
		if opts.Space == nil {
			ecs.DestroyEntity(w, e)
			return 0, errors.New("target: no motor and no physics space")
		}
		b := opts.Space.AddBody(e.ID(), opts.Position, width, height, physics.LayerPlayer, physics.LayerGround)
		motor = physics.NewBodyActuator(b, 1)
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Body:     b,
			Width:    width,
			Height:   height,
			Layer:    physics.LayerPlayer,
			Collides: physics.LayerGround,
		}); err != nil {
			return 0, errors.Wrap(err, "target: add body")
		}
	}

	hp := common.PositiveOr(opts.Health, 100)
	if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return 0, errors.Wrap(err, "target: add tag")
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: opts.Position}); err != nil {
		return 0, errors.Wrap(err, "target: add transform")
	}
	if err := ecs.Add(w, e, component.FacingComponent.Kind(), &component.Facing{Sign: motor.Facing()}); err != nil {
		return 0, errors.Wrap(err, "target: add facing")
	}
	if err := ecs.Add(w, e, component.MotorComponent.Kind(), &component.Motor{Actuator: motor}); err != nil {
		return 0, errors.Wrap(err, "target: add motor")
	}
	if err := ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: hp, Max: hp}); err != nil {
		return 0, errors.Wrap(err, "target: add health")
	}
	if err := ecs.Add(w, e, component.NoiseEmitterComponent.Kind(), &component.NoiseEmitter{
		Period:   common.PositiveOr(opts.NoisePeriod, 0.5),
		MinSpeed: 20,
	}); err != nil {
		return 0, errors.Wrap(err, "target: add noise")
	}
	if len(opts.Waypoints) > 0 {
		if err := ecs.Add(w, e, component.WaypointsComponent.Kind(), &component.Waypoints{
			Points: opts.Waypoints,
			Speed:  opts.Speed,
			Pause:  opts.Pause,
		}); err != nil {
			return 0, errors.Wrap(err, "target: add waypoints")
		}
	}
	return e, nil
}
