package component

import "github.com/jakecoffman/cp"

// Waypoints drive a scripted target back and forth along fixed points.
type Waypoints struct {
	Points []cp.Vector
	Speed  float64
	Index  int
	Pause  float64
	Wait   float64
}

var WaypointsComponent = NewComponent[Waypoints]()
