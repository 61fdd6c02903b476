package entity

import (
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/levels"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/physics"
	"github.com/pkg/errors"
)

// LoadLevelToWorld adds the level's solid tiles to space as static ground
// and creates the level entity holding the shared traversal grid.
func LoadLevelToWorld(w *ecs.World, space *physics.Space, lvl *levels.Level) (ecs.Entity, *pathfinding.Grid, error) {
	if lvl == nil {
		return 0, nil, errors.New("level: nil level")
	}

	for _, bb := range lvl.SolidRects() {
		space.AddStaticBox(bb, physics.LayerGround)
	}

	grid := NavGridFor(lvl)
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.LevelTagComponent.Kind(), &component.LevelTag{Name: lvl.Name}); err != nil {
		return 0, nil, errors.Wrap(err, "level: add tag")
	}
	if err := ecs.Add(w, e, component.NavGridComponent.Kind(), &component.NavGrid{Grid: grid}); err != nil {
		return 0, nil, errors.Wrap(err, "level: add nav grid")
	}
	return e, grid, nil
}

// NavGridFor marks every solid tile of lvl as blocked, one cell per tile.
func NavGridFor(lvl *levels.Level) *pathfinding.Grid {
	grid := pathfinding.NewGrid(lvl.Width, lvl.Height, lvl.TileSize)
	for _, bb := range lvl.SolidRects() {
		grid.BlockRect(bb)
	}
	return grid
}
