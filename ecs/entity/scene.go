package entity

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/levels"
	"github.com/milk9111/sentinel/pathfinding"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/pkg/errors"
)

// Scene is everything BuildScene created.
type Scene struct {
	Level     *levels.Level
	LevelRoot ecs.Entity
	Grid      *pathfinding.Grid
	Target    ecs.Entity
	Agents    []ecs.Entity
}

// BuildScene loads the scene's level into space and spawns its target and
// agents. A spawn that fails to resolve aborts the build.
func BuildScene(w *ecs.World, space *physics.Space, spec prefabs.SceneSpec) (*Scene, error) {
	lvl, err := levels.LoadLevelFromFS(spec.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", spec.Name)
	}
	root, grid, err := LoadLevelToWorld(w, space, lvl)
	if err != nil {
		return nil, err
	}

	points := make([]cp.Vector, 0, len(spec.Target.Waypoints))
	for _, p := range spec.Target.Waypoints {
		points = append(points, cp.Vector{X: p.X, Y: p.Y})
	}
	target, err := NewTarget(w, TargetOptions{
		Position:  cp.Vector{X: spec.Target.X, Y: spec.Target.Y},
		Width:     spec.Target.Width,
		Height:    spec.Target.Height,
		Health:    spec.Target.Health,
		Speed:     spec.Target.Speed,
		Pause:     spec.Target.Pause,
		Waypoints: points,
		Space:     space,
	})
	if err != nil {
		return nil, err
	}

	scene := &Scene{Level: lvl, LevelRoot: root, Grid: grid, Target: target}
	for i, spawn := range spec.Agents {
		agentSpec, err := prefabs.ResolveSpawn(spawn)
		if err != nil {
			return nil, errors.Wrapf(err, "scene %s: agent %d", spec.Name, i)
		}
		e, err := NewAgent(w, AgentOptions{
			Spec:     agentSpec,
			Position: cp.Vector{X: spawn.X, Y: spawn.Y},
			Facing:   spawn.Facing,
			Target:   target,
			Grid:     grid,
			Space:    space,
		})
		if err != nil {
			return nil, err
		}
		scene.Agents = append(scene.Agents, e)
	}
	return scene, nil
}
