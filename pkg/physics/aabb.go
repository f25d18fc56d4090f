// pkg/physics/aabb.go
package physics

import "fmt"

// AABB is an axis-aligned bounding box given by its min and max corners.
type AABB struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// ComputeAABB returns the bounding box of shape placed at pos.
// It panics on a nil shape.
func ComputeAABB(pos Vector2D, shape Shape) AABB {
	if shape == nil {
		panic("physics: ComputeAABB called with nil shape")
	}
	ex, ey := shape.halfExtents()
	return AABB{
		MinX: pos.X - ex,
		MinY: pos.Y - ey,
		MaxX: pos.X + ex,
		MaxY: pos.Y + ey,
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vector2D {
	return Vector2D{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Width returns the horizontal size of the box.
func (b AABB) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical size of the box.
func (b AABB) Height() float64 { return b.MaxY - b.MinY }

// ContainsPoint reports whether point lies inside the box, edges included.
func (b AABB) ContainsPoint(point Vector2D) bool {
	return point.X >= b.MinX && point.X <= b.MaxX &&
		point.Y >= b.MinY && point.Y <= b.MaxY
}

// Contains reports whether other lies entirely inside b.
func (b AABB) Contains(other AABB) bool {
	return other.MinX >= b.MinX && other.MaxX <= b.MaxX &&
		other.MinY >= b.MinY && other.MaxY <= b.MaxY
}

// Overlaps reports whether two boxes intersect. Touching edges count as overlap
// so the broad phase never drops a pair the narrow phase would report.
func (b AABB) Overlaps(other AABB) bool {
	return !(other.MinX > b.MaxX ||
		other.MaxX < b.MinX ||
		other.MinY > b.MaxY ||
		other.MaxY < b.MinY)
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

func (b AABB) String() string {
	return fmt.Sprintf("AABB(%g, %g, %g, %g)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
