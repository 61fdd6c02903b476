package navigation

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/physics"
)

// Opportunity is an opening in a wall wide enough to pass through.
type Opportunity struct {
	EntryHeight float64
	Entry       cp.Vector
	Height      float64
	Crouch      bool
}

// WallReport is the result of the extended wall scan.
type WallReport struct {
	// Blocked holds one entry per tile step, lowest first.
	Blocked        []bool
	WallHeight     float64
	AtLeastMax     bool
	HasOpportunity bool
	Opportunity    Opportunity
}

// CanTraverse reports whether a climb or vault should be attempted.
func (r WallReport) CanTraverse() bool {
	return r.HasOpportunity && !r.AtLeastMax
}

// AnalyzeWallInFront steps up the wall face one tile at a time. The first
// run of at least two open tiles becomes the traversal opportunity.
func AnalyzeWallInFront(q physics.Queryer, p Probe, cfg Config) WallReport {
	tile := cfg.TileSize
	steps := int(cfg.MaxScanHeight / tile)
	if steps < 1 {
		steps = 1
	}
	reach := cfg.ObstacleProbeDistance + tile

	rep := WallReport{Blocked: make([]bool, steps)}
	faceX := p.lead() + p.dir()*reach
	faceFound := false
	for i := 0; i < steps; i++ {
		origin := cp.Vector{X: p.lead(), Y: p.Feet.Y - (float64(i)+0.5)*tile}
		hit, ok := physics.Cast(q, origin, cp.Vector{X: p.dir()}, reach, cfg.GroundMask)
		rep.Blocked[i] = ok
		if ok && !faceFound {
			faceX = hit.Point.X
			faceFound = true
		}
	}

	start, run := -1, 0
	for i := 0; i <= steps; i++ {
		if i < steps && !rep.Blocked[i] {
			if start < 0 {
				start = i
			}
			run++
			continue
		}
		if run >= 2 {
			bounded := i < steps
			height := float64(run) * tile
			rep.HasOpportunity = true
			rep.Opportunity = Opportunity{
				EntryHeight: float64(start) * tile,
				Entry:       cp.Vector{X: faceX + p.dir()*tile/2, Y: p.Feet.Y - float64(start)*tile},
				Height:      height,
				Crouch:      bounded && height < cfg.StandingHeight,
			}
			rep.WallHeight = rep.Opportunity.EntryHeight
			return rep
		}
		start, run = -1, 0
	}

	last := -1
	for i, b := range rep.Blocked {
		if b {
			last = i
		}
	}
	rep.WallHeight = float64(last+1) * tile
	rep.AtLeastMax = last == steps-1
	if rep.AtLeastMax {
		rep.WallHeight = float64(steps) * tile
	}
	return rep
}
