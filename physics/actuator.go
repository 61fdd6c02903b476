package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
)

const (
	defaultClimbSpeed = 96.0
	vaultClearance    = 4.0
	groundedVelocity  = 1.0
)

type maneuverKind int

const (
	maneuverNone maneuverKind = iota
	maneuverClimb
	maneuverVault
)

type maneuver struct {
	kind     maneuverKind
	from     cp.Vector
	to       cp.Vector
	elapsed  float64
	duration float64
	crouch   bool
}

// BodyActuator drives a Chipmunk body. Velocities are written directly for
// walking, impulses are used for jumps, vaults and knockback.
type BodyActuator struct {
	body       *cp.Body
	facing     int
	crouched   bool
	climbSpeed float64
	gravity    float64
	active     maneuver
}

// NewBodyActuator wraps body. facing is normalised to ±1.
func NewBodyActuator(body *cp.Body, facing int) *BodyActuator {
	if facing >= 0 {
		facing = 1
	} else {
		facing = -1
	}
	return &BodyActuator{
		body:       body,
		facing:     facing,
		climbSpeed: defaultClimbSpeed,
		gravity:    common.Gravity,
	}
}

func (a *BodyActuator) busy() bool {
	return a.active.kind != maneuverNone
}

func (a *BodyActuator) Move(direction, speed float64) {
	if a == nil || a.body == nil || a.busy() {
		return
	}
	dir := common.Sign(direction)
	if dir != 0 {
		a.facing = int(dir)
	}
	v := a.body.Velocity()
	a.body.SetVelocityVector(cp.Vector{X: dir * math.Abs(speed), Y: v.Y})
}

func (a *BodyActuator) Stop() {
	if a == nil || a.body == nil {
		return
	}
	v := a.body.Velocity()
	a.body.SetVelocityVector(cp.Vector{X: 0, Y: v.Y})
}

func (a *BodyActuator) Jump(strength float64) {
	if a == nil || a.body == nil || a.busy() || strength <= 0 {
		return
	}
	v := a.body.Velocity()
	if math.Abs(v.Y) > groundedVelocity {
		return
	}
	a.body.SetVelocityVector(cp.Vector{X: v.X, Y: -strength})
}

func (a *BodyActuator) Flip() {
	if a == nil {
		return
	}
	a.facing = -a.facing
}

// ApplyKnockback pushes the body along direction. A non-positive force is a
// no-op so fully resisted hits cause no displacement.
func (a *BodyActuator) ApplyKnockback(direction cp.Vector, force float64) {
	if a == nil || a.body == nil || force <= 0 {
		return
	}
	l := direction.Length()
	if l <= 1e-9 {
		direction = cp.Vector{X: 0, Y: -1}
		l = 1
	}
	impulse := direction.Mult(force * a.body.Mass() / l)
	a.body.ApplyImpulseAtWorldPoint(impulse, a.body.Position())
}

// ClimbToPosition moves the body to target over time. Progress is advanced by
// Update; ManeuverDone reports completion.
func (a *BodyActuator) ClimbToPosition(target cp.Vector, crouchAtEnd bool) {
	if a == nil || a.body == nil || a.busy() {
		return
	}
	from := a.body.Position()
	dist := from.Distance(target)
	a.active = maneuver{
		kind:     maneuverClimb,
		from:     from,
		to:       target,
		duration: dist / common.PositiveOr(a.climbSpeed, defaultClimbSpeed),
		crouch:   crouchAtEnd,
	}
	a.body.SetVelocityVector(cp.Vector{})
}

// Vault launches the body high enough to clear height plus a small margin.
func (a *BodyActuator) Vault(height float64) {
	if a == nil || a.body == nil || a.busy() || height <= 0 {
		return
	}
	g := common.PositiveOr(a.gravity, common.Gravity)
	vy := math.Sqrt(2 * g * (height + vaultClearance))
	v := a.body.Velocity()
	a.body.SetVelocityVector(cp.Vector{X: v.X, Y: -vy})
	a.active = maneuver{
		kind:     maneuverVault,
		from:     a.body.Position(),
		duration: 2 * vy / g,
	}
}

func (a *BodyActuator) CancelManeuver() {
	if a == nil || !a.busy() {
		return
	}
	a.active = maneuver{}
	if a.body != nil {
		a.body.SetVelocityVector(cp.Vector{})
	}
}

func (a *BodyActuator) ManeuverDone() bool {
	return a == nil || !a.busy()
}

// Update advances the running maneuver by dt.
func (a *BodyActuator) Update(dt float64) {
	if a == nil || a.body == nil || !a.busy() {
		return
	}
	a.active.elapsed += dt
	switch a.active.kind {
	case maneuverClimb:
		t := 1.0
		if a.active.duration > 0 {
			t = common.Clamp(a.active.elapsed/a.active.duration, 0, 1)
		}
		a.body.SetPosition(a.active.from.Lerp(a.active.to, t))
		a.body.SetVelocityVector(cp.Vector{})
		if t >= 1 {
			a.crouched = a.active.crouch
			a.active = maneuver{}
		}
	case maneuverVault:
		v := a.body.Velocity()
		a.body.SetVelocityVector(cp.Vector{X: float64(a.facing) * defaultClimbSpeed, Y: v.Y})
		if a.active.elapsed >= a.active.duration {
			a.active = maneuver{}
		}
	}
}

func (a *BodyActuator) Position() cp.Vector {
	if a == nil || a.body == nil {
		return cp.Vector{}
	}
	return a.body.Position()
}

func (a *BodyActuator) Velocity() cp.Vector {
	if a == nil || a.body == nil {
		return cp.Vector{}
	}
	return a.body.Velocity()
}

func (a *BodyActuator) Facing() int {
	if a == nil {
		return 1
	}
	return a.facing
}

// Crouched reports whether the last climb ended crouched.
func (a *BodyActuator) Crouched() bool {
	return a != nil && a.crouched
}
