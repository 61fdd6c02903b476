package perception

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 0.1

func step(m *Memory, visible bool, n int, cfg Config) {
	for i := 0; i < n; i++ {
		m.Update(visible, subjectAt(4, 0), dt, cfg)
	}
}

func TestMemoryAwarenessTransitions(t *testing.T) {
	cfg := testConfig()

	t.Run("sighting_hunts", func(t *testing.T) {
		m := NewMemory(Dormant)
		m.Update(true, Subject{Position: cp.Vector{X: 4}, Velocity: cp.Vector{X: 2}}, dt, cfg)
		assert.Equal(t, Hunting, m.Level)
		assert.Equal(t, cfg.MemoryDuration, m.Timer)
		assert.Equal(t, cp.Vector{X: 4}, m.LastKnown)
		assert.Equal(t, cp.Vector{X: 2}, m.LastVelocity)
		assert.True(t, m.Aware())
	})

	t.Run("lost_sight_decays_to_patrolling", func(t *testing.T) {
		m := NewMemory(Patrolling)
		step(&m, true, 1, cfg)
		step(&m, false, 1, cfg)
		require.Equal(t, Alert, m.Level)

		step(&m, false, 18, cfg)
		assert.Equal(t, Alert, m.Level, "still inside the memory window")

		step(&m, false, 2, cfg)
		assert.Equal(t, Patrolling, m.Level)
		assert.True(t, m.Expired())
	})

	t.Run("stimulus_suspicious_then_decay", func(t *testing.T) {
		m := NewMemory(Patrolling)
		require.True(t, m.Stimulus(cp.Vector{X: -3}, cfg))
		assert.Equal(t, Suspicious, m.Level)
		assert.Equal(t, cfg.MemoryDuration/2, m.Timer)
		assert.Equal(t, cp.Vector{X: -3}, m.LastKnown)

		step(&m, false, 11, cfg)
		assert.Equal(t, Patrolling, m.Level)
	})

	t.Run("stimulus_ignored_when_aware", func(t *testing.T) {
		m := NewMemory(Patrolling)
		step(&m, true, 1, cfg)
		assert.False(t, m.Stimulus(cp.Vector{X: -3}, cfg))
		assert.Equal(t, Hunting, m.Level)
		assert.Equal(t, cp.Vector{X: 4}, m.LastKnown)
	})

	t.Run("reacquire_overrides_decay", func(t *testing.T) {
		m := NewMemory(Patrolling)
		m.Stimulus(cp.Vector{}, cfg)
		step(&m, false, 3, cfg)
		step(&m, true, 1, cfg)
		assert.Equal(t, Hunting, m.Level)
		assert.Equal(t, cfg.MemoryDuration, m.Timer)
	})

	t.Run("new_memory_caps_level", func(t *testing.T) {
		assert.Equal(t, Patrolling, NewMemory(Hunting).Level)
	})
}

func TestPredict(t *testing.T) {
	cfg := testConfig()
	m := Memory{
		Level:        Alert,
		LastKnown:    cp.Vector{X: 10, Y: 0},
		LastVelocity: cp.Vector{X: 4, Y: 0},
		HasLKP:       true,
	}

	cases := []struct {
		name  string
		age   float64
		wantX float64
		mode  SearchMode
		look  float64
	}{
		{"fresh", 0, 10, ModeTracking, 0},
		{"mid_inertia", 0.25, 11, ModeTracking, 0},
		{"inertia_capped", 0.75, 12 + 3, ModeSweeping, 30},
		{"sweep_half_period", 1.0, 12, ModeSweeping, 0},
		{"sweep_trough", 1.25, 12 - 3, ModeSweeping, -30},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m.Age = c.age
			est := Predict(m, cfg)
			assert.Equal(t, c.mode, est.Mode)
			assert.InDelta(t, c.wantX, est.Position.X, 1e-9)
			assert.InDelta(t, c.look, est.LookAngle, 1e-9)
		})
	}

	assert.Equal(t, ModeNone, Predict(Memory{}, cfg).Mode)
}
