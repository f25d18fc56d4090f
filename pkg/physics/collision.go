// pkg/physics/collision.go
package physics

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// CollisionResult describes the overlap between two shapes A and B.
// MTVA moves A out of B and MTVB == -MTVA moves B out of A.
// Every vector is zero when Collided is false.
type CollisionResult struct {
	Collided    bool
	Normal      Vector2D // unit vector pointing from B toward A
	Penetration float64
	MTVA        Vector2D
	MTVB        Vector2D
}

// Swap returns the result as seen with A and B exchanged.
func (r CollisionResult) Swap() CollisionResult {
	if !r.Collided {
		return CollisionResult{}
	}
	return CollisionResult{
		Collided:    true,
		Normal:      r.Normal.Neg(),
		Penetration: r.Penetration,
		MTVA:        r.MTVB,
		MTVB:        r.MTVA,
	}
}

func hit(normal Vector2D, penetration float64) CollisionResult {
	mtv := normal.Scale(penetration)
	return CollisionResult{
		Collided:    true,
		Normal:      normal,
		Penetration: penetration,
		MTVA:        mtv,
		MTVB:        mtv.Neg(),
	}
}

// TieBreak supplies a unit direction when two circle centres coincide and
// no geometric normal exists.
type TieBreak func() Vector2D

// FixedTieBreak always separates coincident circles along +X.
func FixedTieBreak() Vector2D {
	return Vector2D{X: 1, Y: 0}
}

// RandomTieBreak returns a TieBreak drawing uniform directions from rng.
// A nil rng uses the package-level generator.
func RandomTieBreak(rng *rand.Rand) TieBreak {
	return func() Vector2D {
		return RandomUnit(rng)
	}
}

// Resolver computes narrow-phase collisions. The zero value uses FixedTieBreak.
type Resolver struct {
	TieBreak TieBreak
}

func (r *Resolver) tieBreak() Vector2D {
	if r == nil || r.TieBreak == nil {
		return FixedTieBreak()
	}
	return r.TieBreak()
}

type resolveFunc func(r *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult

// resolvers is indexed by [kind of A][kind of B]. The three mixed pairs with
// the "larger" kind first reuse their mirror image.
var resolvers = [kindCount][kindCount]resolveFunc{
	KindCircle: {
		KindCircle:      resolveCircleCircle,
		KindRect:        resolveCircleRect,
		KindRotatedRect: resolveCircleRotated,
	},
	KindRect: {
		KindCircle:      swapped(resolveCircleRect),
		KindRect:        resolveRectRect,
		KindRotatedRect: resolveRectRotated,
	},
	KindRotatedRect: {
		KindCircle:      swapped(resolveCircleRotated),
		KindRect:        swapped(resolveRectRotated),
		KindRotatedRect: resolveRotatedRotated,
	},
}

func swapped(f resolveFunc) resolveFunc {
	return func(r *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
		return f(r, posB, b, posA, a).Swap()
	}
}

var defaultResolver = &Resolver{}

// Resolve reports whether shape a at posA overlaps shape b at posB and the
// translations that separate them. Coincident circle centres separate along +X.
// It panics when either shape is nil or of an unknown kind.
func Resolve(posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	return defaultResolver.Resolve(posA, a, posB, b)
}

// Detect reports whether the two shapes overlap.
func Detect(posA Vector2D, a Shape, posB Vector2D, b Shape) bool {
	return Resolve(posA, a, posB, b).Collided
}

// Resolve is the package-level Resolve with this resolver's tie-break.
func (r *Resolver) Resolve(posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	a, b = canonical(a), canonical(b)
	ka, kb := a.Kind(), b.Kind()
	if ka < 0 || ka >= kindCount || kb < 0 || kb >= kindCount || resolvers[ka][kb] == nil {
		panic(fmt.Sprintf("physics: unsupported shape pair %s/%s", ka, kb))
	}
	return resolvers[ka][kb](r, posA, a, posB, b)
}

// canonical dereferences pointer shapes so the resolvers can assert on values.
func canonical(s Shape) Shape {
	switch v := s.(type) {
	case nil:
		panic("physics: resolve called with nil shape")
	case *Circle:
		return *v
	case *Rect:
		return *v
	case *RotatedRect:
		return *v
	default:
		return s
	}
}

func resolveCircleCircle(r *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	ca, cb := a.(Circle), b.(Circle)
	combined := ca.Radius + cb.Radius
	d := posA.Sub(posB)
	distSq := d.LengthSquared()

	if distSq > combined*combined {
		return CollisionResult{}
	}

	if distSq == 0 {
		return hit(r.tieBreak(), combined)
	}
	distance := math.Sqrt(distSq)
	return hit(d.Scale(1/distance), combined-distance)
}

func resolveRectRect(_ *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	ra, rb := a.(Rect), b.(Rect)
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	px := (ra.Width/2 + rb.Width/2) - math.Abs(dx)
	py := (ra.Height/2 + rb.Height/2) - math.Abs(dy)

	if px <= 0 || py <= 0 {
		return CollisionResult{}
	}

	if px < py {
		return hit(Vector2D{X: awayFrom(dx)}, px)
	}
	return hit(Vector2D{Y: awayFrom(dy)}, py)
}

// awayFrom returns the sign that moves A away from B given the B-A offset.
// A zero offset resolves toward the positive axis.
func awayFrom(delta float64) float64 {
	if delta > 0 {
		return -1
	}
	return 1
}

func resolveCircleRect(_ *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	c, rect := a.(Circle), b.(Rect)
	return circleBox(posA.Sub(posB), c.Radius, rect.Width/2, rect.Height/2)
}

func resolveCircleRotated(_ *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	c, rect := a.(Circle), b.(RotatedRect)

	// Work in the rectangle's unrotated frame.
	local := posA.Sub(posB).Rotate(-rect.Rotation)
	res := circleBox(local, c.Radius, rect.Width/2, rect.Height/2)
	if !res.Collided {
		return res
	}
	return hit(res.Normal.Rotate(rect.Rotation), res.Penetration)
}

// circleBox resolves a circle whose centre sits at rel relative to the centre
// of an axis-aligned box with half sizes hw, hh.
func circleBox(rel Vector2D, radius, hw, hh float64) CollisionResult {
	closest := Vector2D{
		X: math.Max(-hw, math.Min(rel.X, hw)),
		Y: math.Max(-hh, math.Min(rel.Y, hh)),
	}
	d := rel.Sub(closest)
	distSq := d.LengthSquared()

	if distSq > radius*radius {
		return CollisionResult{}
	}

	if distSq != 0 {
		distance := math.Sqrt(distSq)
		return hit(d.Scale(1/distance), radius-distance)
	}

	// Centre inside the box: leave through the nearest edge.
	penX := math.Min(hw-rel.X, rel.X+hw)
	penY := math.Min(hh-rel.Y, rel.Y+hh)
	if penX < penY {
		return hit(Vector2D{X: awayFrom(-rel.X)}, penX+radius)
	}
	return hit(Vector2D{Y: awayFrom(-rel.Y)}, penY+radius)
}

func resolveRectRotated(_ *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	ra, rb := a.(Rect), b.(RotatedRect)
	return satBoxes(
		orientedBox{center: posA, hw: ra.Width / 2, hh: ra.Height / 2},
		orientedBox{center: posB, hw: rb.Width / 2, hh: rb.Height / 2, rotation: rb.Rotation},
	)
}

func resolveRotatedRotated(_ *Resolver, posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
	ra, rb := a.(RotatedRect), b.(RotatedRect)
	return satBoxes(
		orientedBox{center: posA, hw: ra.Width / 2, hh: ra.Height / 2, rotation: ra.Rotation},
		orientedBox{center: posB, hw: rb.Width / 2, hh: rb.Height / 2, rotation: rb.Rotation},
	)
}
