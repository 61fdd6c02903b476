package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAgentSpecEmbedded(t *testing.T) {
	tests := []struct {
		file  string
		name  string
		kind  string
		ideal float64
	}{
		{file: "grunt.yaml", name: "grunt", kind: "melee"},
		{file: "archer.yaml", name: "archer", kind: "ranged", ideal: 200},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			spec, err := LoadAgentSpec(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.name, spec.Name)
			assert.Equal(t, tt.kind, spec.Kind)
			assert.Equal(t, tt.ideal, spec.Decision.IdealEngagementDistance)
			assert.GreaterOrEqual(t, spec.Decision.EngagementRange, spec.Decision.AttackRange)
			assert.Greater(t, spec.Perception.MemoryDuration, 0.0)
			assert.Greater(t, spec.Threat.Config.AnalysisInterval, 0.0)
			assert.GreaterOrEqual(t, spec.Navigation.StandingHeight, spec.Body.Height)

			_, err = LoadScript(spec.Script)
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeGuardsNonPositive(t *testing.T) {
	spec := AgentSpec{Name: "x", Health: HealthSpec{Max: 1}}
	spec.Movement.AnalyzeDuration = -1
	spec.Decision.StunDuration = 0
	spec.Decision.AttackRange = 50
	spec.Decision.EngagementRange = 10
	spec.Attack.Cooldown = -3
	spec.Threat.Config.AnalysisInterval = 0

	spec.Normalize()

	assert.Equal(t, "melee", spec.Kind)
	assert.Equal(t, "patrol", spec.InitialState)
	assert.Greater(t, spec.Movement.AnalyzeDuration, 0.0)
	assert.Greater(t, spec.Decision.StunDuration, 0.0)
	assert.Equal(t, 50.0, spec.Decision.EngagementRange)
	assert.Equal(t, 0.0, spec.Attack.Cooldown)
	assert.Greater(t, spec.Threat.Config.AnalysisInterval, 0.0)
	require.NoError(t, spec.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		spec AgentSpec
	}{
		{name: "missing name", spec: AgentSpec{Kind: "melee", Health: HealthSpec{Max: 1}}},
		{name: "bad kind", spec: AgentSpec{Name: "a", Kind: "magic", Health: HealthSpec{Max: 1}}},
		{name: "no health", spec: AgentSpec{Name: "a", Kind: "melee"}},
		{name: "ranged without distance", spec: AgentSpec{Name: "a", Kind: "ranged", Health: HealthSpec{Max: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSpec))
		})
	}
}

func TestResolveSpawnAppliesOverrides(t *testing.T) {
	scene, err := LoadSceneSpec("scene_default.yaml")
	require.NoError(t, err)
	require.Len(t, scene.Agents, 3)
	assert.Len(t, scene.Target.Waypoints, 3)

	brute, err := ResolveSpawn(scene.Agents[2])
	require.NoError(t, err)
	assert.Equal(t, "grunt_brute", brute.Name)
	assert.Equal(t, 60.0, brute.Health.Max)
	assert.Equal(t, 12.0, brute.Attack.Damage)
	// untouched keys keep the prefab values
	assert.Equal(t, 1.2, brute.Attack.Cooldown)
	assert.Equal(t, 130.0, brute.Movement.ChaseSpeed)
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })

	data := []byte("name: disk\nkind: melee\nhealth: {max: 3}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grunt.yaml"), data, 0o644))

	spec, err := LoadAgentSpec("prefabs/grunt.yaml")
	require.NoError(t, err)
	assert.Equal(t, "disk", spec.Name)

	_, ok := ModTime("grunt.yaml")
	assert.True(t, ok)

	_, err = Load("missing.yaml")
	assert.Error(t, err)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(20*time.Millisecond, dir)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "grunt.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("name: grunt\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case c := <-w.Changes:
		assert.Equal(t, "grunt.yaml", c.Name)
		assert.False(t, c.Script)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	select {
	case c := <-w.Changes:
		t.Fatalf("unexpected extra change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}
