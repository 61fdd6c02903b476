package pathfinding

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridFrom builds a grid from rows where '#' is blocked.
func gridFrom(rows ...string) *Grid {
	g := NewGrid(len(rows[0]), len(rows), 10)
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				g.SetBlocked(Cell{X: x, Y: y}, true)
			}
		}
	}
	return g
}

func TestGridSearch(t *testing.T) {
	cases := []struct {
		name    string
		rows    []string
		start   Cell
		goal    Cell
		wantLen int
		noPath  bool
	}{
		{
			name:    "straight",
			rows:    []string{"....."},
			start:   Cell{0, 0},
			goal:    Cell{4, 0},
			wantLen: 5,
		},
		{
			name:    "diagonal",
			rows:    []string{"...", "...", "..."},
			start:   Cell{0, 0},
			goal:    Cell{2, 2},
			wantLen: 3,
		},
		{
			name:    "around_wall",
			rows:    []string{"..#..", "..#..", "....."},
			start:   Cell{0, 0},
			goal:    Cell{4, 0},
			wantLen: 7,
		},
		{
			name:   "walled_off",
			rows:   []string{"..#..", "..#..", "..#.."},
			start:  Cell{0, 0},
			goal:   Cell{4, 0},
			noPath: true,
		},
		{
			name:   "goal_blocked",
			rows:   []string{"...#"},
			start:  Cell{0, 0},
			goal:   Cell{3, 0},
			noPath: true,
		},
		{
			name:   "out_of_bounds",
			rows:   []string{"...."},
			start:  Cell{0, 0},
			goal:   Cell{9, 0},
			noPath: true,
		},
		{
			name:    "same_cell",
			rows:    []string{"..."},
			start:   Cell{1, 0},
			goal:    Cell{1, 0},
			wantLen: 1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := gridFrom(c.rows...)
			path := g.Search(c.start, c.goal, 0)
			if c.noPath {
				assert.Nil(t, path)
				return
			}
			require.Len(t, path, c.wantLen)
			assert.Equal(t, c.start, path[0])
			assert.Equal(t, c.goal, path[len(path)-1])
			for _, cell := range path {
				assert.False(t, g.Blocked(cell))
			}
		})
	}
}

func TestGridSearchNoCornerCutting(t *testing.T) {
	g := gridFrom(
		".#",
		"..",
	)
	path := g.Search(Cell{0, 0}, Cell{1, 1}, 0)
	require.Len(t, path, 3, "diagonal past a blocked corner is not allowed")
	assert.Equal(t, Cell{0, 1}, path[1])
}

func TestGridSearchMaxNodes(t *testing.T) {
	g := gridFrom("..........")
	assert.Nil(t, g.Search(Cell{0, 0}, Cell{9, 0}, 3))
	assert.NotNil(t, g.Search(Cell{0, 0}, Cell{9, 0}, 0))
}

func TestGridSearchDeterministic(t *testing.T) {
	g := gridFrom(
		"......",
		".##...",
		"......",
		"...##.",
		"......",
	)
	first := g.Search(Cell{0, 0}, Cell{5, 4}, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, g.Search(Cell{0, 0}, Cell{5, 4}, 0))
	}
}

func TestBlockRect(t *testing.T) {
	g := NewGrid(4, 4, 10)
	g.BlockRect(cp.BB{L: 10, B: 10, R: 30, T: 20})
	assert.True(t, g.Blocked(Cell{1, 1}))
	assert.True(t, g.Blocked(Cell{2, 1}))
	assert.False(t, g.Blocked(Cell{3, 1}))
	assert.False(t, g.Blocked(Cell{1, 2}))
	assert.True(t, g.Blocked(Cell{-1, 0}), "outside the grid counts as blocked")
}

func TestPlannerCachesPath(t *testing.T) {
	g := gridFrom(
		"..........",
		"..........",
	)
	p := NewPlanner(g, Config{ReplanThreshold: 15})
	from := cp.Vector{X: 5, Y: 5}
	target := cp.Vector{X: 95, Y: 5}

	path, replanned := p.Plan(Path{}, from, target, 0)
	require.True(t, replanned)
	require.False(t, path.Empty())
	final, _ := path.Final()
	assert.Equal(t, cp.Vector{X: 95, Y: 5}, final)

	again, replanned := p.Plan(path, from, target, 1)
	assert.False(t, replanned)
	assert.Equal(t, path, again)

	nudged, replanned := p.Plan(path, from, cp.Vector{X: 85, Y: 10}, 2)
	assert.False(t, replanned, "movement under the threshold keeps the cache")
	assert.Equal(t, path, nudged)

	moved, replanned := p.Plan(path, from, cp.Vector{X: 55, Y: 15}, 3)
	assert.True(t, replanned)
	final, _ = moved.Final()
	assert.Equal(t, cp.Vector{X: 55, Y: 15}, final)
	final, _ = path.Final()
	assert.Equal(t, cp.Vector{X: 95, Y: 5}, final, "old path is not mutated")
}

func TestPlannerFailureBacksOff(t *testing.T) {
	g := gridFrom("..#..")
	p := NewPlanner(g, Config{RetryDelay: 1})

	path, replanned := p.Plan(Path{}, cp.Vector{X: 5, Y: 5}, cp.Vector{X: 45, Y: 5}, 0)
	require.True(t, replanned)
	assert.True(t, path.Failed)
	assert.True(t, path.Empty())

	same, replanned := p.Plan(path, cp.Vector{X: 5, Y: 5}, cp.Vector{X: 45, Y: 5}, 0.5)
	assert.False(t, replanned)
	assert.Equal(t, path, same)

	_, replanned = p.Plan(path, cp.Vector{X: 5, Y: 5}, cp.Vector{X: 45, Y: 5}, 1)
	assert.True(t, replanned)

	var nilPlanner *Planner
	out, replanned := nilPlanner.Plan(Path{}, cp.Vector{}, cp.Vector{}, 0)
	assert.False(t, replanned)
	assert.True(t, out.Empty())
}

func TestPlannerFollow(t *testing.T) {
	p := NewPlanner(NewGrid(1, 1, 10), Config{WaypointTolerance: 2})
	path := Path{Waypoints: []cp.Vector{{X: 10}, {X: 20}, {X: 30}}}

	wp, done := p.Follow(&path, cp.Vector{X: 0})
	assert.False(t, done)
	assert.Equal(t, cp.Vector{X: 10}, wp)

	wp, done = p.Follow(&path, cp.Vector{X: 9})
	assert.False(t, done)
	assert.Equal(t, cp.Vector{X: 20}, wp)
	assert.Equal(t, 1, path.Index)

	_, done = p.Follow(&path, cp.Vector{X: 29})
	assert.False(t, done, "20 is out of tolerance so the index stays")

	path.Index = 2
	wp, done = p.Follow(&path, cp.Vector{X: 29})
	assert.True(t, done)
	assert.True(t, path.Done())
	assert.Equal(t, cp.Vector{X: 30}, wp)

	_, done = p.Follow(&Path{}, cp.Vector{})
	assert.False(t, done)
}
