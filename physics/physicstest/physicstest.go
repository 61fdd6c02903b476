// Package physicstest provides in-memory Queryer and Actuator doubles for
// tests that should not depend on a running Chipmunk space.
package physicstest

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/physics"
)

// World is a static set of axis-aligned colliders.
type World struct {
	Colliders []physics.Collider
}

// Box adds a collider covering [l,r]x[top,bottom] in Y-down coordinates.
func (w *World) Box(id uint64, layer physics.Layer, l, top, r, bottom float64) *World {
	w.Colliders = append(w.Colliders, physics.Collider{
		ID:    id,
		Layer: layer,
		BB:    cp.BB{L: l, B: top, R: r, T: bottom},
	})
	return w
}

// Raycast uses a slab test. A segment starting inside a box hits it at
// distance zero, matching Chipmunk.
func (w *World) Raycast(origin, dir cp.Vector, maxDistance float64, mask physics.Layer) (physics.Hit, bool) {
	if w == nil {
		return physics.Hit{}, false
	}
	d := dir.Mult(maxDistance)
	best := physics.Hit{}
	found := false
	for _, c := range w.Colliders {
		if !mask.Has(c.Layer) {
			continue
		}
		ok, t := segmentBB(origin, d, c.BB)
		if !ok {
			continue
		}
		dist := t * maxDistance
		if found && dist >= best.Distance {
			continue
		}
		best = physics.Hit{
			Point:    origin.Add(d.Mult(t)),
			Distance: dist,
			Collider: c,
		}
		found = true
	}
	return best, found
}

// OverlapBox reports colliders whose bounds intersect bb, ordered by id.
func (w *World) OverlapBox(bb cp.BB, mask physics.Layer) []physics.Collider {
	if w == nil {
		return nil
	}
	var out []physics.Collider
	for _, c := range w.Colliders {
		if mask.Has(c.Layer) && c.BB.Intersects(bb) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func segmentBB(o, d cp.Vector, bb cp.BB) (bool, float64) {
	tmin, tmax := 0.0, 1.0
	axes := [2][4]float64{
		{o.X, d.X, bb.L, bb.R},
		{o.Y, d.Y, bb.B, bb.T},
	}
	for _, a := range axes {
		p, dv, lo, hi := a[0], a[1], a[2], a[3]
		if dv == 0 {
			if p < lo || p > hi {
				return false, 0
			}
			continue
		}
		t1 := (lo - p) / dv
		t2 := (hi - p) / dv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}
	if tmax >= tmin {
		return true, tmin
	}
	return false, 0
}

// Actuator records motor commands. With Integrate set, Update moves Pos by
// Vel and completes maneuvers instantly.
type Actuator struct {
	Integrate bool

	Pos    cp.Vector
	Vel    cp.Vector
	Face   int
	Speed  float64
	Busy   bool
	Stops  int
	Jumps  []float64
	Flips  int
	Climbs []cp.Vector
	Vaults []float64
	Pushes []cp.Vector

	// Cancels counts CancelManeuver calls that stopped a running maneuver.
	Cancels int
}

func NewActuator(pos cp.Vector, facing int) *Actuator {
	if facing == 0 {
		facing = 1
	}
	return &Actuator{Pos: pos, Face: facing}
}

func (a *Actuator) Move(direction, speed float64) {
	switch {
	case direction > 0:
		a.Face = 1
	case direction < 0:
		a.Face = -1
	}
	a.Speed = speed
	a.Vel.X = float64(a.Face) * speed
	if direction == 0 {
		a.Vel.X = 0
	}
}

func (a *Actuator) Stop() {
	a.Stops++
	a.Speed = 0
	a.Vel.X = 0
}

func (a *Actuator) Jump(strength float64) { a.Jumps = append(a.Jumps, strength) }

func (a *Actuator) Flip() {
	a.Flips++
	a.Face = -a.Face
}

// ApplyKnockback records the impulse. Zero force records nothing.
func (a *Actuator) ApplyKnockback(direction cp.Vector, force float64) {
	if force <= 0 {
		return
	}
	a.Pushes = append(a.Pushes, physics.Direction(cp.Vector{}, direction).Mult(force))
}

func (a *Actuator) ClimbToPosition(target cp.Vector, crouchAtEnd bool) {
	a.Climbs = append(a.Climbs, target)
	a.Busy = true
}

func (a *Actuator) Vault(height float64) {
	a.Vaults = append(a.Vaults, height)
	a.Busy = true
}

func (a *Actuator) Update(dt float64) {
	if !a.Integrate {
		return
	}
	if a.Busy {
		if n := len(a.Climbs); n > 0 {
			a.Pos = a.Climbs[n-1]
		}
		a.Busy = false
	}
	a.Pos = a.Pos.Add(a.Vel.Mult(dt))
}

func (a *Actuator) CancelManeuver() {
	if a.Busy {
		a.Cancels++
	}
	a.Busy = false
}

func (a *Actuator) ManeuverDone() bool  { return !a.Busy }
func (a *Actuator) Position() cp.Vector { return a.Pos }
func (a *Actuator) Velocity() cp.Vector { return a.Vel }
func (a *Actuator) Facing() int         { return a.Face }

var (
	_ physics.Queryer  = (*World)(nil)
	_ physics.Actuator = (*Actuator)(nil)
)
