package system

import (
	"math"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
)

const waypointTolerance = 4.0

// WaypointsSystem walks scripted entities between their points, pausing at
// each one.
type WaypointsSystem struct{}

func NewWaypointsSystem() *WaypointsSystem {
	return &WaypointsSystem{}
}

func (s *WaypointsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Dt()
	ecs.ForEach3(w, component.WaypointsComponent.Kind(), component.MotorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, wp *component.Waypoints, m *component.Motor, t *component.Transform) {
		if m.Actuator == nil || len(wp.Points) == 0 || isDead(w, e) {
			return
		}
		if wp.Wait > 0 {
			wp.Wait -= dt
			m.Actuator.Stop()
			return
		}
		if wp.Index < 0 || wp.Index >= len(wp.Points) {
			wp.Index = 0
		}
		dx := wp.Points[wp.Index].X - t.Position.X
		if math.Abs(dx) <= waypointTolerance {
			wp.Index = (wp.Index + 1) % len(wp.Points)
			wp.Wait = wp.Pause
			m.Actuator.Stop()
			return
		}
		m.Actuator.Move(dx, wp.Speed)
	})
}
