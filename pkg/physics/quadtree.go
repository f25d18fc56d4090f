// pkg/physics/quadtree.go
package physics

import "slices"

// maxQuadTreeDepth bounds subdivision when many boxes crowd the same spot.
const maxQuadTreeDepth = 8

// QuadTree indexes body bounding boxes for region queries. A box is stored
// in the deepest node that fully contains it.
type QuadTree struct {
	Boundary  AABB
	Capacity  int
	Items     []QuadItem
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree

	depth int
}

// QuadItem is a body index with the box it was inserted under.
type QuadItem struct {
	Index int
	Box   AABB
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary AABB, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Items:    make([]QuadItem, 0, capacity),
	}
}

// Insert adds a box to the tree. It returns false when the box is not
// entirely inside the tree's boundary.
func (qt *QuadTree) Insert(index int, box AABB) bool {
	if !qt.Boundary.Contains(box) {
		return false
	}

	if !qt.Divided && (len(qt.Items) < qt.Capacity || qt.depth >= maxQuadTreeDepth) {
		qt.Items = append(qt.Items, QuadItem{Index: index, Box: box})
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	if qt.NorthWest.Insert(index, box) ||
		qt.NorthEast.Insert(index, box) ||
		qt.SouthWest.Insert(index, box) ||
		qt.SouthEast.Insert(index, box) {
		return true
	}

	// Straddles a split line: keep it here.
	qt.Items = append(qt.Items, QuadItem{Index: index, Box: box})
	return true
}

// Subdivide splits the node into four quadrants. Y grows upward, so north
// is the half with the larger Y values.
func (qt *QuadTree) Subdivide() {
	c := qt.Boundary.Center()
	b := qt.Boundary

	qt.NorthWest = qt.child(AABB{MinX: b.MinX, MinY: c.Y, MaxX: c.X, MaxY: b.MaxY})
	qt.NorthEast = qt.child(AABB{MinX: c.X, MinY: c.Y, MaxX: b.MaxX, MaxY: b.MaxY})
	qt.SouthWest = qt.child(AABB{MinX: b.MinX, MinY: b.MinY, MaxX: c.X, MaxY: c.Y})
	qt.SouthEast = qt.child(AABB{MinX: c.X, MinY: b.MinY, MaxX: b.MaxX, MaxY: c.Y})
	qt.Divided = true
}

func (qt *QuadTree) child(boundary AABB) *QuadTree {
	child := NewQuadTree(boundary, qt.Capacity)
	child.depth = qt.depth + 1
	return child
}

// Query returns the indices of all boxes overlapping area, in tree order.
func (qt *QuadTree) Query(area AABB) []int {
	return qt.query(area, nil)
}

func (qt *QuadTree) query(area AABB, found []int) []int {
	if !qt.Boundary.Overlaps(area) {
		return found
	}

	for _, item := range qt.Items {
		if item.Box.Overlaps(area) {
			found = append(found, item.Index)
		}
	}

	if !qt.Divided {
		return found
	}

	found = qt.NorthWest.query(area, found)
	found = qt.NorthEast.query(area, found)
	found = qt.SouthWest.query(area, found)
	found = qt.SouthEast.query(area, found)
	return found
}

// Len returns the number of stored boxes.
func (qt *QuadTree) Len() int {
	n := len(qt.Items)
	if qt.Divided {
		n += qt.NorthWest.Len() + qt.NorthEast.Len() + qt.SouthWest.Len() + qt.SouthEast.Len()
	}
	return n
}

// QuadTreeBroadPhase builds a quad tree over the bodies' bounds each step and
// reports pairs whose AABBs actually overlap.
type QuadTreeBroadPhase struct {
	Capacity int
}

// CandidatePairs returns the sorted AABB-overlapping pairs, skipping fixed-fixed pairs.
func (p QuadTreeBroadPhase) CandidatePairs(bodies []*Body) []Pair {
	if len(bodies) == 0 {
		return nil
	}

	boxes := make([]AABB, len(bodies))
	bounds := bodies[0].AABB()
	for i, b := range bodies {
		boxes[i] = b.AABB()
		bounds = bounds.Union(boxes[i])
	}

	qt := NewQuadTree(bounds, p.Capacity)
	for i, box := range boxes {
		qt.Insert(i, box)
	}

	var pairs []Pair
	for i, box := range boxes {
		for _, j := range qt.Query(box) {
			if j <= i || (bodies[i].Fixed && bodies[j].Fixed) {
				continue
			}
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}
