// pkg/physics/grid.go
package physics

import (
	"math"
	"slices"
)

// Cell is the integer coordinate of a grid cell.
type Cell struct {
	X, Y int
}

// Pair is an unordered candidate pair of body indices with I < J.
type Pair struct {
	I, J int
}

// BroadPhase turns a body list into candidate pairs for the narrow phase.
// Every pair of bodies whose AABBs overlap must be reported; extra pairs are
// allowed. Pairs where both bodies are fixed are never reported.
type BroadPhase interface {
	CandidatePairs(bodies []*Body) []Pair
}

// SpatialGrid is a uniform grid mapping cells to the indices of the bodies
// whose AABB touches them. It is rebuilt from scratch for every step.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize
	cells       map[Cell][]int
	fixed       []bool
}

// BuildGrid buckets every body into each cell its AABB covers.
// A body spanning several cells is listed in all of them.
func BuildGrid(bodies []*Body, cellSize float64) *SpatialGrid {
	if !(cellSize > 0) {
		panic("physics: grid cell size must be positive")
	}
	g := &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		cells:       make(map[Cell][]int, len(bodies)),
		fixed:       make([]bool, len(bodies)),
	}
	for i, b := range bodies {
		g.fixed[i] = b.Fixed
		g.insert(i, b.AABB())
	}
	return g
}

func (g *SpatialGrid) insert(index int, box AABB) {
	lo, hi := g.cellRange(box)
	for cx := lo.X; cx <= hi.X; cx++ {
		for cy := lo.Y; cy <= hi.Y; cy++ {
			c := Cell{X: cx, Y: cy}
			g.cells[c] = append(g.cells[c], index)
		}
	}
}

// cellRange converts a box to the inclusive range of cells it covers.
func (g *SpatialGrid) cellRange(box AABB) (Cell, Cell) {
	return g.CellOf(Vector2D{X: box.MinX, Y: box.MinY}),
		g.CellOf(Vector2D{X: box.MaxX, Y: box.MaxY})
}

// CellOf returns the cell containing a world point, flooring toward negative infinity.
func (g *SpatialGrid) CellOf(p Vector2D) Cell {
	return Cell{
		X: int(math.Floor(p.X * g.invCellSize)),
		Y: int(math.Floor(p.Y * g.invCellSize)),
	}
}

// CellSize returns the edge length of a cell.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Len returns the number of occupied cells.
func (g *SpatialGrid) Len() int { return len(g.cells) }

// Cell returns the body indices stored in c, in insertion order.
func (g *SpatialGrid) Cell(c Cell) []int {
	return g.cells[c]
}

// Cells returns every occupied cell, sorted by X then Y.
func (g *SpatialGrid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Cell) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Y - b.Y
	})
	return out
}

// Query returns the sorted, unique indices of bodies sharing a cell with area.
// Results are candidates: callers test the actual bounds themselves.
func (g *SpatialGrid) Query(area AABB) []int {
	seen := make(map[int]struct{})
	lo, hi := g.cellRange(area)
	for cx := lo.X; cx <= hi.X; cx++ {
		for cy := lo.Y; cy <= hi.Y; cy++ {
			for _, idx := range g.cells[Cell{X: cx, Y: cy}] {
				seen[idx] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// Pairs returns every unique pair sharing at least one cell, skipping pairs
// of two fixed bodies. The result is sorted by (I, J).
func (g *SpatialGrid) Pairs() []Pair {
	set := make(map[Pair]struct{})
	for _, members := range g.cells {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				i, j := members[a], members[b]
				if i == j {
					continue
				}
				if i > j {
					i, j = j, i
				}
				if g.fixed[i] && g.fixed[j] {
					continue
				}
				set[Pair{I: i, J: j}] = struct{}{}
			}
		}
	}
	return sortedPairs(set)
}

// GridBroadPhase is the uniform grid broad phase.
type GridBroadPhase struct {
	CellSize float64
}

// CandidatePairs builds a fresh grid and returns its pairs.
func (p GridBroadPhase) CandidatePairs(bodies []*Body) []Pair {
	return BuildGrid(bodies, p.CellSize).Pairs()
}

func sortedPairs(set map[Pair]struct{}) []Pair {
	out := make([]Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

func comparePairs(a, b Pair) int {
	if a.I != b.I {
		return a.I - b.I
	}
	return a.J - b.J
}
