package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/threat"
)

// Hit is one incoming attack before defense is applied.
type Hit struct {
	Amount    float64
	Knockback float64
	Direction cp.Vector
	Source    uint64
	Origin    cp.Vector
	Category  threat.Category
}

// DamageRequest queues hits for the damage system, which removes it after
// applying them.
type DamageRequest struct {
	Hits []Hit
}

var DamageRequestComponent = NewComponent[DamageRequest]()
