// pkg/physics/shape.go
package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidShape is returned when a shape has non-positive or non-finite dimensions.
var ErrInvalidShape = errors.New("invalid shape")

// Kind identifies a shape variant. It indexes the narrow-phase dispatch table.
type Kind int

const (
	KindCircle Kind = iota
	KindRect
	KindRotatedRect

	kindCount
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRect:
		return "rect"
	case KindRotatedRect:
		return "rotated_rect"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is the local geometry of a body. It carries no position.
// The set of implementations is closed: Circle, Rect and RotatedRect.
type Shape interface {
	Kind() Kind
	Validate() error
	// halfExtents returns the half width and half height of the shape's AABB.
	halfExtents() (float64, float64)
	sealed()
}

// Circle is a disc of the given radius centred on the body position.
type Circle struct {
	Radius float64
}

// Rect is an axis-aligned rectangle centred on the body position.
type Rect struct {
	Width  float64
	Height float64
}

// RotatedRect is a rectangle rotated counter-clockwise by Rotation radians
// around the body position.
type RotatedRect struct {
	Width    float64
	Height   float64
	Rotation float64
}

func (Circle) Kind() Kind      { return KindCircle }
func (Rect) Kind() Kind        { return KindRect }
func (RotatedRect) Kind() Kind { return KindRotatedRect }

func (Circle) sealed()      {}
func (Rect) sealed()        {}
func (RotatedRect) sealed() {}

// Validate checks that the radius is positive and finite.
func (c Circle) Validate() error {
	if !positive(c.Radius) {
		return fmt.Errorf("circle radius %v: %w", c.Radius, ErrInvalidShape)
	}
	return nil
}

// Validate checks that both sides are positive and finite.
func (r Rect) Validate() error {
	if !positive(r.Width) || !positive(r.Height) {
		return fmt.Errorf("rect %vx%v: %w", r.Width, r.Height, ErrInvalidShape)
	}
	return nil
}

// Validate checks that both sides are positive and the rotation is finite.
func (r RotatedRect) Validate() error {
	if !positive(r.Width) || !positive(r.Height) {
		return fmt.Errorf("rotated rect %vx%v: %w", r.Width, r.Height, ErrInvalidShape)
	}
	if math.IsNaN(r.Rotation) || math.IsInf(r.Rotation, 0) {
		return fmt.Errorf("rotated rect rotation %v: %w", r.Rotation, ErrInvalidShape)
	}
	return nil
}

func (c Circle) halfExtents() (float64, float64) {
	return c.Radius, c.Radius
}

func (r Rect) halfExtents() (float64, float64) {
	return r.Width / 2, r.Height / 2
}

// halfExtents projects the rotated half sizes onto the world axes.
func (r RotatedRect) halfExtents() (float64, float64) {
	hw, hh := r.Width/2, r.Height/2
	cos := math.Abs(math.Cos(r.Rotation))
	sin := math.Abs(math.Sin(r.Rotation))
	return hw*cos + hh*sin, hw*sin + hh*cos
}

// Axes returns the rectangle's local x and y axes in world space.
func (r RotatedRect) Axes() (Vector2D, Vector2D) {
	return boxAxes(r.Rotation)
}

// ValidateShape checks a shape, rejecting nil.
func ValidateShape(s Shape) error {
	if s == nil {
		return fmt.Errorf("nil shape: %w", ErrInvalidShape)
	}
	return s.Validate()
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
