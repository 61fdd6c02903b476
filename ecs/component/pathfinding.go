package component

import "github.com/milk9111/sentinel/pathfinding"

// PathComponent is the agent's cached route.
var PathComponent = NewComponent[pathfinding.Path]()

// NavGrid is the level's traversal grid, shared read-only by all planners.
type NavGrid struct {
	Grid *pathfinding.Grid
}

var NavGridComponent = NewComponent[NavGrid]()
