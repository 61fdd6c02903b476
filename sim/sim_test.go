package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/sentinel/ecs"
	"github.com/milk9111/sentinel/ecs/component"
	"github.com/milk9111/sentinel/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempPrefabDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
	return dir
}

func TestDefaultSceneRuns(t *testing.T) {
	useTempPrefabDir(t)

	s, err := New("")
	require.NoError(t, err)
	require.Len(t, s.Scene.Agents, 3)

	start, ok := ecs.Get(s.World, s.Scene.Target, component.TransformComponent.Kind())
	require.True(t, ok)
	startX := start.Position.X

	kinds := map[ecs.EventKind]int{}
	for i := 0; i < 600; i++ {
		for _, evt := range s.Step() {
			kinds[evt.Kind]++
		}
	}

	assert.Equal(t, uint64(600), s.Tick())
	assert.Positive(t, kinds[ecs.EventNoise], "walking target makes noise")

	end, ok := ecs.Get(s.World, s.Scene.Target, component.TransformComponent.Kind())
	require.True(t, ok)
	assert.Greater(t, end.Position.X, startX)

	lvlW, lvlH := s.Scene.Level.PixelSize()
	ecs.ForEach(s.World, component.TransformComponent.Kind(), func(e ecs.Entity, tr *component.Transform) {
		assert.GreaterOrEqual(t, tr.Position.X, 0.0)
		assert.LessOrEqual(t, tr.Position.X, lvlW)
		assert.LessOrEqual(t, tr.Position.Y, lvlH)
	})
}

func TestNewAddsSceneExtension(t *testing.T) {
	useTempPrefabDir(t)

	s, err := New("scene_default")
	require.NoError(t, err)
	assert.Equal(t, "scene_default.yaml", s.SceneName)
}

func TestNewUnknownScene(t *testing.T) {
	useTempPrefabDir(t)

	_, err := New("missing_scene")
	require.Error(t, err)
}

func TestApplyRebuildsOnPrefabChange(t *testing.T) {
	useTempPrefabDir(t)

	s, err := New("")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		s.Step()
	}
	old := s.World

	require.NoError(t, s.Apply(prefabs.Change{Path: "prefabs/grunt.yaml", Name: "grunt.yaml"}))
	assert.NotSame(t, old, s.World)
	assert.Equal(t, uint64(0), s.Tick())
	assert.Len(t, s.Scene.Agents, 3)
}

func TestApplyKeepsWorldWhenReloadFails(t *testing.T) {
	dir := useTempPrefabDir(t)

	s, err := New("")
	require.NoError(t, err)
	old := s.World

	require.NoError(t, os.WriteFile(filepath.Join(dir, "grunt.yaml"), []byte("name: grunt\nhealth:\n  max: 0\n"), 0o644))
	err = s.Apply(prefabs.Change{Path: filepath.Join(dir, "grunt.yaml"), Name: "grunt.yaml"})
	require.Error(t, err)
	assert.Same(t, old, s.World)
}

func TestApplyScriptKeepsWorld(t *testing.T) {
	useTempPrefabDir(t)

	s, err := New("")
	require.NoError(t, err)
	old := s.World

	require.NoError(t, s.Apply(prefabs.Change{Name: "grunt.tengo", Script: true}))
	assert.Same(t, old, s.World)
	s.Step()
	assert.Equal(t, uint64(1), s.Tick())
}
