// Package pathfinding plans waypoint paths over a blocked/free grid with A*
// and keeps one cached path per agent.
package pathfinding

import (
	"container/heap"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentinel/common"
)

// Cell is a grid coordinate.
type Cell struct {
	X int
	Y int
}

// Grid is a read-only traversal grid once built. Cell (0,0) covers the
// world rectangle starting at Origin.
type Grid struct {
	W, H     int
	CellSize float64
	Origin   cp.Vector
	blocked  []bool
}

func NewGrid(w, h int, cellSize float64) *Grid {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Grid{
		W:        w,
		H:        h,
		CellSize: common.PositiveOr(cellSize, common.TileSize),
		blocked:  make([]bool, w*h),
	}
}

func (g *Grid) InBounds(c Cell) bool {
	return g != nil && c.X >= 0 && c.Y >= 0 && c.X < g.W && c.Y < g.H
}

func (g *Grid) SetBlocked(c Cell, blocked bool) {
	if !g.InBounds(c) {
		return
	}
	g.blocked[c.Y*g.W+c.X] = blocked
}

// Blocked treats out-of-bounds cells as blocked.
func (g *Grid) Blocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[c.Y*g.W+c.X]
}

// BlockRect marks every cell overlapping bb.
func (g *Grid) BlockRect(bb cp.BB) {
	if g == nil {
		return
	}
	minC := g.CellAt(cp.Vector{X: bb.L, Y: bb.B})
	maxC := g.CellAt(cp.Vector{X: bb.R - 0.001, Y: bb.T - 0.001})
	for y := minC.Y; y <= maxC.Y; y++ {
		for x := minC.X; x <= maxC.X; x++ {
			g.SetBlocked(Cell{X: x, Y: y}, true)
		}
	}
}

// CellAt returns the cell containing pos. The result may be out of bounds.
func (g *Grid) CellAt(pos cp.Vector) Cell {
	return Cell{
		X: int(math.Floor((pos.X - g.Origin.X) / g.CellSize)),
		Y: int(math.Floor((pos.Y - g.Origin.Y) / g.CellSize)),
	}
}

// Center returns the world position of the middle of c.
func (g *Grid) Center(c Cell) cp.Vector {
	half := g.CellSize * 0.5
	return cp.Vector{
		X: g.Origin.X + float64(c.X)*g.CellSize + half,
		Y: g.Origin.Y + float64(c.Y)*g.CellSize + half,
	}
}

var neighborOffsets = [8]Cell{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// neighbors yields 8-way moves. Diagonals are only allowed when both
// orthogonal cells they pass between are free.
func (g *Grid) neighbors(c Cell, out []Cell) []Cell {
	out = out[:0]
	for _, o := range neighborOffsets {
		n := Cell{X: c.X + o.X, Y: c.Y + o.Y}
		if g.Blocked(n) {
			continue
		}
		if o.X != 0 && o.Y != 0 {
			if g.Blocked(Cell{X: c.X + o.X, Y: c.Y}) || g.Blocked(Cell{X: c.X, Y: c.Y + o.Y}) {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func distance(a, b Cell) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Search runs A* from start to goal and returns the cell path including both
// ends. maxNodes caps expansions; zero means unlimited. No path yields nil.
func (g *Grid) Search(start, goal Cell, maxNodes int) []Cell {
	if g == nil || g.Blocked(start) || g.Blocked(goal) {
		return nil
	}
	if start == goal {
		return []Cell{start}
	}

	idx := func(c Cell) int { return c.Y*g.W + c.X }
	cameFrom := make([]int, g.W*g.H)
	gScore := make([]float64, g.W*g.H)
	closed := make([]bool, g.W*g.H)
	for i := range cameFrom {
		cameFrom[i] = -1
		gScore[i] = math.Inf(1)
	}

	open := &openSet{}
	heap.Init(open)
	seq := 0
	gScore[idx(start)] = 0
	heap.Push(open, &openItem{cell: start, f: distance(start, goal), h: distance(start, goal), seq: seq})

	expanded := 0
	buf := make([]Cell, 0, 8)
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openItem)
		ci := idx(cur.cell)
		if closed[ci] {
			continue
		}
		if cur.cell == goal {
			return reconstruct(g, cameFrom, idx(start), ci)
		}
		closed[ci] = true
		expanded++
		if maxNodes > 0 && expanded > maxNodes {
			return nil
		}

		buf = g.neighbors(cur.cell, buf)
		for _, n := range buf {
			ni := idx(n)
			if closed[ni] {
				continue
			}
			tentative := gScore[ci] + distance(cur.cell, n)
			if tentative >= gScore[ni] {
				continue
			}
			cameFrom[ni] = ci
			gScore[ni] = tentative
			h := distance(n, goal)
			seq++
			heap.Push(open, &openItem{cell: n, f: tentative + h, h: h, seq: seq})
		}
	}
	return nil
}

func reconstruct(g *Grid, cameFrom []int, startIdx, goalIdx int) []Cell {
	var path []Cell
	for cur := goalIdx; cur != -1; cur = cameFrom[cur] {
		path = append(path, Cell{X: cur % g.W, Y: cur / g.W})
		if cur == startIdx {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type openItem struct {
	cell  Cell
	f     float64
	h     float64
	seq   int
	index int
}

type openSet []*openItem

func (o openSet) Len() int { return len(o) }

// Less orders by f, then prefers nodes closer to the goal, then insertion
// order, so equal-cost searches are reproducible.
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
