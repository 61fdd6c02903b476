package system

import (
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/physics"
)

type stepper interface {
	Update(dt float64)
}

// PhysicsSystem advances running maneuvers, steps the space and mirrors
// every motor back into Transform and Facing.
type PhysicsSystem struct {
	space *physics.Space
}

// NewPhysicsSystem accepts a nil space for worlds driven by fake motors.
func NewPhysicsSystem(space *physics.Space) *PhysicsSystem {
	return &PhysicsSystem{space: space}
}

func (p *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Dt()

	ecs.ForEach(w, component.MotorComponent.Kind(), func(e ecs.Entity, m *component.Motor) {
		if s, ok := m.Actuator.(stepper); ok {
			s.Update(dt)
		}
	})

	if p.space != nil {
		p.space.Step(dt)
	}

	ecs.ForEach2(w, component.MotorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, m *component.Motor, t *component.Transform) {
		if m.Actuator == nil {
			return
		}
		t.Position = m.Actuator.Position()
		t.Velocity = m.Actuator.Velocity()
		if f, ok := ecs.Get(w, e, component.FacingComponent.Kind()); ok {
			f.Sign = m.Actuator.Facing()
		}
	})
}
