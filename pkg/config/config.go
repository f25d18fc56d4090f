// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// Broad phase names accepted by PhysicsConfig.BroadPhase.
const (
	BroadPhaseGrid     = "grid"
	BroadPhaseQuadTree = "quadtree"
)

// Shape type names accepted by ShapeConfig.Type.
const (
	ShapeCircle      = "circle"
	ShapeRect        = "rect"
	ShapeRotatedRect = "rotated_rect"
)

// SimulationConfig describes a scene and how long to run it
type SimulationConfig struct {
	Physics  PhysicsConfig `json:"physics" yaml:"physics"`
	TimeStep float64       `json:"timeStep" yaml:"timeStep"`
	Steps    int           `json:"steps" yaml:"steps"`
	Bodies   []BodyConfig  `json:"bodies" yaml:"bodies"`
}

// PhysicsConfig contains solver settings
type PhysicsConfig struct {
	CellSize       float64 `json:"cellSize" yaml:"cellSize"`
	Friction       float64 `json:"friction" yaml:"friction"`
	MaxSpeed       float64 `json:"maxSpeed" yaml:"maxSpeed"`
	Iterations     int     `json:"iterations" yaml:"iterations"`
	BroadPhase     string  `json:"broadPhase,omitempty" yaml:"broadPhase,omitempty"`
	RandomTieBreak bool    `json:"randomTieBreak,omitempty" yaml:"randomTieBreak,omitempty"`
}

// BodyConfig contains the initial state of one body
type BodyConfig struct {
	Name  string      `json:"name" yaml:"name"`
	Shape ShapeConfig `json:"shape" yaml:"shape"`
	X     float64     `json:"x" yaml:"x"`
	Y     float64     `json:"y" yaml:"y"`
	VX    float64     `json:"vx,omitempty" yaml:"vx,omitempty"`
	VY    float64     `json:"vy,omitempty" yaml:"vy,omitempty"`
	AX    float64     `json:"ax,omitempty" yaml:"ax,omitempty"`
	AY    float64     `json:"ay,omitempty" yaml:"ay,omitempty"`
	Mass  float64     `json:"mass" yaml:"mass"`
	Fixed bool        `json:"fixed,omitempty" yaml:"fixed,omitempty"`
}

// ShapeConfig describes a collision shape. Only the fields used by Type are read.
type ShapeConfig struct {
	Type     string  `json:"type" yaml:"type"`
	Radius   float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Shape converts the description to a physics shape.
func (s ShapeConfig) Shape() (physics.Shape, error) {
	var shape physics.Shape
	switch strings.ToLower(s.Type) {
	case ShapeCircle:
		shape = physics.Circle{Radius: s.Radius}
	case ShapeRect:
		shape = physics.Rect{Width: s.Width, Height: s.Height}
	case ShapeRotatedRect:
		shape = physics.RotatedRect{Width: s.Width, Height: s.Height, Rotation: s.Rotation}
	default:
		return nil, fmt.Errorf("unknown shape type %q: %w", s.Type, physics.ErrInvalidShape)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return shape, nil
}

// SolverOptions converts the settings to a solver configuration and the
// options selecting the broad phase and tie-break.
func (p PhysicsConfig) SolverOptions() (physics.SolverConfig, []physics.SolverOption) {
	cfg := physics.SolverConfig{
		CellSize:   p.CellSize,
		Friction:   p.Friction,
		MaxSpeed:   p.MaxSpeed,
		Iterations: p.Iterations,
	}

	var opts []physics.SolverOption
	if strings.EqualFold(p.BroadPhase, BroadPhaseQuadTree) {
		opts = append(opts, physics.WithBroadPhase(physics.QuadTreeBroadPhase{Capacity: 8}))
	}
	if p.RandomTieBreak {
		opts = append(opts, physics.WithTieBreak(physics.RandomTieBreak(nil)))
	}
	return cfg, opts
}

// BuildBodies creates one physics body per BodyConfig, in order.
func (c *SimulationConfig) BuildBodies() ([]*physics.Body, error) {
	bodies := make([]*physics.Body, 0, len(c.Bodies))
	for i, bc := range c.Bodies {
		shape, err := bc.Shape.Shape()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		body, err := physics.NewBody(physics.Vector2D{X: bc.X, Y: bc.Y}, shape, bc.Mass, bc.Fixed)
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		body.Velocity = physics.Vector2D{X: bc.VX, Y: bc.VY}
		body.Acceleration = physics.Vector2D{X: bc.AX, Y: bc.AY}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

// isYAML reports whether path names a YAML file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a JSON or YAML file, chosen by extension
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SimulationConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimulationConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a small demo scene: a floor, a wall and a few
// bodies falling onto them.
func DefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Physics: PhysicsConfig{
			CellSize:   physics.DefaultCellSize,
			Friction:   physics.DefaultFriction,
			MaxSpeed:   physics.DefaultMaxSpeed,
			Iterations: physics.DefaultIterations,
			BroadPhase: BroadPhaseGrid,
		},
		TimeStep: 1.0 / 60,
		Steps:    120,
		Bodies: []BodyConfig{
			{
				Name:  "floor",
				Shape: ShapeConfig{Type: ShapeRect, Width: 400, Height: 20},
				Y:     -10,
				Mass:  1,
				Fixed: true,
			},
			{
				Name:  "wall",
				Shape: ShapeConfig{Type: ShapeRect, Width: 20, Height: 200},
				X:     190,
				Y:     100,
				Mass:  1,
				Fixed: true,
			},
			{
				Name:  "ball",
				Shape: ShapeConfig{Type: ShapeCircle, Radius: 10},
				X:     0,
				Y:     60,
				AY:    -200,
				Mass:  1,
			},
			{
				Name:  "crate",
				Shape: ShapeConfig{Type: ShapeRect, Width: 30, Height: 30},
				X:     5,
				Y:     100,
				AY:    -200,
				Mass:  4,
			},
			{
				Name:  "plank",
				Shape: ShapeConfig{Type: ShapeRotatedRect, Width: 60, Height: 8, Rotation: 0.3},
				X:     150,
				Y:     40,
				VX:    60,
				AY:    -200,
				Mass:  2,
			},
		},
	}
}
