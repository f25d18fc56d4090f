// pkg/physics/sat.go
package physics

import "math"

// orientedBox is a rectangle in world space for the separating axis test.
type orientedBox struct {
	center   Vector2D
	hw, hh   float64
	rotation float64
}

func boxAxes(rotation float64) (Vector2D, Vector2D) {
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	return Vector2D{X: cos, Y: sin}, Vector2D{X: -sin, Y: cos}
}

// extent is the half length of the box's projection onto axis.
func (o orientedBox) extent(axis Vector2D) float64 {
	ax, ay := boxAxes(o.rotation)
	return o.hw*math.Abs(axis.Dot(ax)) + o.hh*math.Abs(axis.Dot(ay))
}

// satBoxes runs the separating axis test over both boxes' local axes.
// The first axis with no overlap proves separation. Otherwise the axis of
// least overlap, signed to push a away from b, gives the MTV.
func satBoxes(a, b orientedBox) CollisionResult {
	a1, a2 := boxAxes(a.rotation)
	b1, b2 := boxAxes(b.rotation)
	axes := [4]Vector2D{a1, a2, b1, b2}
	delta := b.center.Sub(a.center)

	minOverlap := math.Inf(1)
	var normal Vector2D
	for _, axis := range axes {
		d := delta.Dot(axis)
		overlap := a.extent(axis) + b.extent(axis) - math.Abs(d)
		if overlap <= 0 {
			return CollisionResult{}
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis.Scale(awayFrom(d))
		}
	}
	return hit(normal, minOverlap)
}
