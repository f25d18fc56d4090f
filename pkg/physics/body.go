// pkg/physics/body.go
package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMass is returned when a body is created with a non-positive mass.
var ErrInvalidMass = errors.New("invalid mass")

// Body is a point mass carrying a collision shape. The solver only ever
// writes Position and Velocity, and never on a fixed body.
type Body struct {
	Position     Vector2D
	Velocity     Vector2D
	Acceleration Vector2D
	Mass         float64
	Shape        Shape
	Fixed        bool
}

// NewBody creates a body at rest after validating its shape and mass.
func NewBody(position Vector2D, shape Shape, mass float64, fixed bool) (*Body, error) {
	if err := ValidateShape(shape); err != nil {
		return nil, err
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("mass %v: %w", mass, ErrInvalidMass)
	}
	return &Body{
		Position: position,
		Mass:     mass,
		Shape:    shape,
		Fixed:    fixed,
	}, nil
}

// AABB returns the body's bounding box at its current position.
func (b *Body) AABB() AABB {
	return ComputeAABB(b.Position, b.Shape)
}

// Integrate advances a movable body by dt seconds: acceleration feeds velocity,
// friction damps it, speed is clamped to maxSpeed, then velocity moves the
// position. Fixed bodies are left untouched. A maxSpeed <= 0 disables the clamp.
func Integrate(b *Body, dt, friction, maxSpeed float64) {
	if b.Fixed {
		return
	}

	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
	b.Velocity = b.Velocity.Sub(b.Velocity.Scale(friction))

	// Limit speed
	if maxSpeed > 0 {
		b.Velocity = b.Velocity.ClampLength(maxSpeed)
	}

	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}
