// Package sim wires a scene, its physics space and the agent pipeline into
// one steppable simulation shared by the sandbox and the viewer.
package sim

import (
	"log/slog"
	"strings"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/entity"
	"github.com/milk9111/sentinel/ecs/system"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/pkg/errors"
)

const DefaultScene = "scene_default.yaml"

type Sim struct {
	SceneName string

	World     *ecs.World
	Space     *physics.Space
	Scheduler *ecs.Scheduler
	Hooks     *system.ScriptHooks
	Scene     *entity.Scene
}

// New builds the named scene. An empty name loads DefaultScene.
func New(sceneName string) (*Sim, error) {
	if sceneName == "" {
		sceneName = DefaultScene
	}
	if !strings.HasSuffix(sceneName, ".yaml") && !strings.HasSuffix(sceneName, ".yml") {
		sceneName += ".yaml"
	}

	s := &Sim{SceneName: sceneName, Hooks: system.NewScriptHooks()}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sim) build() error {
	spec, err := prefabs.LoadSceneSpec(s.SceneName)
	if err != nil {
		return errors.Wrap(err, "sim: load scene")
	}

	world := ecs.NewWorld()
	space := physics.NewSpace()
	scene, err := entity.BuildScene(world, space, spec)
	if err != nil {
		return errors.Wrap(err, "sim: build scene")
	}

	s.World = world
	s.Space = space
	s.Scene = scene
	s.Scheduler = system.NewPipeline(space, space, s.Hooks)

	slog.Info("sim: scene ready", "scene", spec.Name, "level", spec.Level, "agents", len(scene.Agents))
	return nil
}

// Step advances one fixed tick and returns the events it produced.
func (s *Sim) Step() []ecs.Event {
	if s == nil || s.Scheduler == nil {
		return nil
	}
	s.Scheduler.Update(s.World)
	return s.World.Events().Drain()
}

// Apply reacts to an edited file. Scripts recompile in place on the next
// tick; prefab and scene edits rebuild the whole scene. A rebuild that fails
// keeps the running world.
func (s *Sim) Apply(c prefabs.Change) error {
	if s == nil {
		return nil
	}
	if c.Script {
		s.Hooks.Invalidate(c.Name)
		slog.Info("sim: script reloaded", "script", c.Name)
		return nil
	}

	next := &Sim{SceneName: s.SceneName, Hooks: system.NewScriptHooks()}
	if err := next.build(); err != nil {
		return errors.Wrapf(err, "sim: reload after %s", c.Name)
	}
	*s = *next
	slog.Info("sim: scene reloaded", "changed", c.Name)
	return nil
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() uint64 {
	if s == nil || s.World == nil {
		return 0
	}
	return s.World.Tick()
}
