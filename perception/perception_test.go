package perception

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/physics"
	"github.com/milk9111/sentinel/physics/physicstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		VisionRange:     10,
		VisionAngle:     90,
		HearingRange:    6,
		MemoryDuration:  2,
		InertiaDuration: 0.5,
		SearchScanAngle: 60,
		SearchScanSpeed: 1,
		SweepAmplitude:  3,
	}.Normalized()
}

func subjectAt(x, y float64) Subject {
	return Subject{ID: 9, Position: cp.Vector{X: x, Y: y}, Layer: physics.LayerPlayer}
}

func TestCheckVisibilityRangeAndCone(t *testing.T) {
	cfg := testConfig()
	obs := Observer{Facing: 1}

	cases := []struct {
		name    string
		target  Subject
		facing  int
		visible bool
	}{
		{"ahead_in_range", subjectAt(5, 0), 1, true},
		{"edge_of_range", subjectAt(10, 0), 1, true},
		{"beyond_range_ahead", subjectAt(10.01, 0), 1, false},
		{"beyond_range_behind", subjectAt(-30, 0), -1, false},
		{"inside_half_angle", subjectAt(5, 4.9), 1, true},
		{"outside_half_angle", subjectAt(5, 5.2), 1, false},
		{"behind", subjectAt(-5, 0), 1, false},
		{"behind_but_facing", subjectAt(-5, 0), -1, true},
		{"same_point", subjectAt(0, 0), 1, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			obs.Facing = c.facing
			res := CheckVisibility(nil, obs, c.target, cfg)
			assert.Equal(t, c.visible, res.Visible)
			assert.Equal(t, uint64(9), res.Target)
		})
	}
}

func TestCheckVisibilityBeyondRangeIgnoresEverythingElse(t *testing.T) {
	cfg := testConfig()
	world := &physicstest.World{}
	for _, dist := range []float64{10.5, 15, 100} {
		for _, deg := range []float64{0, 30, 170, 300} {
			rad := deg * math.Pi / 180
			target := subjectAt(dist*math.Cos(rad), dist*math.Sin(rad))
			for _, facing := range []int{1, -1} {
				res := CheckVisibility(world, Observer{Facing: facing}, target, cfg)
				require.False(t, res.Visible, "dist=%v deg=%v", dist, deg)
			}
		}
	}
}

func TestCheckVisibilityOcclusion(t *testing.T) {
	cfg := testConfig()
	obs := Observer{Facing: 1}
	target := subjectAt(8, 0)

	cases := []struct {
		name    string
		world   *physicstest.World
		visible bool
	}{
		{"clear_line", (&physicstest.World{}).Box(1, physics.LayerPlayer, 7.5, -1, 8.5, 1), true},
		{"wall_between", (&physicstest.World{}).Box(2, physics.LayerGround, 4, -2, 5, 2), false},
		{"wall_behind_target", (&physicstest.World{}).Box(2, physics.LayerGround, 9, -2, 10, 2), true},
		{"target_layer_in_front", (&physicstest.World{}).Box(3, physics.LayerPlayer, 3, -2, 4, 2), true},
		{"ignored_layer", (&physicstest.World{}).Box(4, physics.LayerProjectile, 4, -2, 5, 2), true},
		{"wall_off_line", (&physicstest.World{}).Box(2, physics.LayerGround, 4, 1, 5, 3), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := CheckVisibility(c.world, obs, target, cfg)
			assert.Equal(t, c.visible, res.Visible)
			assert.InDelta(t, 8, res.Distance, 1e-9)
		})
	}
}

func TestCheckVisibilityIsPure(t *testing.T) {
	cfg := testConfig()
	world := (&physicstest.World{}).Box(2, physics.LayerGround, 4, -2, 5, 2)
	obs := Observer{Position: cp.Vector{X: 1, Y: 1}, Facing: 1}
	target := subjectAt(7, 2)

	first := CheckVisibility(world, obs, target, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CheckVisibility(world, obs, target, cfg))
	}
}

func TestHears(t *testing.T) {
	cfg := testConfig()
	assert.True(t, Hears(cp.Vector{}, Noise{Position: cp.Vector{X: 6}}, cfg))
	assert.False(t, Hears(cp.Vector{}, Noise{Position: cp.Vector{X: 6.1}}, cfg))

	cfg.HearingRange = 0
	assert.False(t, Hears(cp.Vector{}, Noise{}, cfg))
}

func TestNormalizedGuardsTimers(t *testing.T) {
	cfg := Config{MemoryDuration: -1, SearchScanSpeed: 0, VisionAngle: 720}.Normalized()
	assert.Greater(t, cfg.MemoryDuration, 0.0)
	assert.Greater(t, cfg.SearchScanSpeed, 0.0)
	assert.Equal(t, 360.0, cfg.VisionAngle)
	assert.Equal(t, physics.LayerGround, cfg.OccluderMask)
}
