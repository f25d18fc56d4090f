package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("DefaultConfig is invalid: %v", err)
	}

	if config.Physics.CellSize != physics.DefaultCellSize {
		t.Errorf("Expected CellSize %v, got %v", physics.DefaultCellSize, config.Physics.CellSize)
	}
	if config.Physics.Iterations != physics.DefaultIterations {
		t.Errorf("Expected Iterations %d, got %d", physics.DefaultIterations, config.Physics.Iterations)
	}
	if config.Steps <= 0 || config.TimeStep <= 0 {
		t.Errorf("Expected a positive run length, got %d steps of %v", config.Steps, config.TimeStep)
	}

	fixed := 0
	for _, b := range config.Bodies {
		if b.Fixed {
			fixed++
		}
	}
	if fixed == 0 || fixed == len(config.Bodies) {
		t.Errorf("Expected a mix of fixed and movable bodies, got %d of %d fixed", fixed, len(config.Bodies))
	}
}

func TestShapeConfig_Shape(t *testing.T) {
	tests := []struct {
		name     string
		config   ShapeConfig
		expected physics.Shape
		wantErr  bool
	}{
		{"circle", ShapeConfig{Type: "circle", Radius: 3}, physics.Circle{Radius: 3}, false},
		{"rect_upper_case", ShapeConfig{Type: "RECT", Width: 2, Height: 4}, physics.Rect{Width: 2, Height: 4}, false},
		{"rotated", ShapeConfig{Type: "rotated_rect", Width: 2, Height: 4, Rotation: 1}, physics.RotatedRect{Width: 2, Height: 4, Rotation: 1}, false},
		{"unknown_type", ShapeConfig{Type: "triangle", Width: 1}, nil, true},
		{"missing_radius", ShapeConfig{Type: "circle"}, nil, true},
		{"negative_width", ShapeConfig{Type: "rect", Width: -2, Height: 4}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := tt.config.Shape()
			if tt.wantErr {
				if !errors.Is(err, physics.ErrInvalidShape) {
					t.Fatalf("Expected ErrInvalidShape, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Shape() failed: %v", err)
			}
			if shape != tt.expected {
				t.Errorf("Shape() = %#v, expected %#v", shape, tt.expected)
			}
		})
	}
}

func TestBuildBodies(t *testing.T) {
	config := &SimulationConfig{
		Bodies: []BodyConfig{
			{Name: "ground", Shape: ShapeConfig{Type: ShapeRect, Width: 100, Height: 10}, Mass: 1, Fixed: true},
			{Name: "ball", Shape: ShapeConfig{Type: ShapeCircle, Radius: 2}, X: 1, Y: 20, VX: 3, AY: -9.8, Mass: 0.5},
		},
	}

	bodies, err := config.BuildBodies()
	if err != nil {
		t.Fatalf("BuildBodies failed: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("Expected 2 bodies, got %d", len(bodies))
	}
	if !bodies[0].Fixed {
		t.Error("Expected ground to be fixed")
	}
	ball := bodies[1]
	if ball.Position != (physics.Vector2D{X: 1, Y: 20}) {
		t.Errorf("Unexpected ball position %v", ball.Position)
	}
	if ball.Velocity != (physics.Vector2D{X: 3}) || ball.Acceleration != (physics.Vector2D{Y: -9.8}) {
		t.Errorf("Unexpected ball motion v=%v a=%v", ball.Velocity, ball.Acceleration)
	}

	config.Bodies[1].Mass = 0
	if _, err := config.BuildBodies(); !errors.Is(err, physics.ErrInvalidMass) {
		t.Errorf("Expected ErrInvalidMass, got %v", err)
	}
}

func TestPhysicsConfig_SolverOptions(t *testing.T) {
	p := PhysicsConfig{CellSize: 32, Friction: 0.2, MaxSpeed: 100, Iterations: 6}

	cfg, opts := p.SolverOptions()
	expected := physics.SolverConfig{CellSize: 32, Friction: 0.2, MaxSpeed: 100, Iterations: 6}
	if cfg != expected {
		t.Errorf("SolverOptions() config = %+v, expected %+v", cfg, expected)
	}
	if len(opts) != 0 {
		t.Errorf("Expected no options for the grid broad phase, got %d", len(opts))
	}

	p.BroadPhase = BroadPhaseQuadTree
	p.RandomTieBreak = true
	cfg, opts = p.SolverOptions()
	if len(opts) != 2 {
		t.Errorf("Expected 2 options, got %d", len(opts))
	}
	if _, err := physics.NewSolver(cfg, opts...); err != nil {
		t.Errorf("NewSolver rejected converted settings: %v", err)
	}
}

func TestLoadSaveConfig(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene"+ext)
			original := DefaultConfig()
			original.Physics.BroadPhase = BroadPhaseQuadTree

			if err := SaveConfig(original, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if loaded.Physics != original.Physics {
				t.Errorf("Physics = %+v, expected %+v", loaded.Physics, original.Physics)
			}
			if loaded.Steps != original.Steps || loaded.TimeStep != original.TimeStep {
				t.Errorf("Run length = %d x %v, expected %d x %v", loaded.Steps, loaded.TimeStep, original.Steps, original.TimeStep)
			}
			if len(loaded.Bodies) != len(original.Bodies) {
				t.Fatalf("Expected %d bodies, got %d", len(original.Bodies), len(loaded.Bodies))
			}
			for i := range original.Bodies {
				if loaded.Bodies[i] != original.Bodies[i] {
					t.Errorf("Body %d = %+v, expected %+v", i, loaded.Bodies[i], original.Bodies[i])
				}
			}
		})
	}
}

func TestLoadConfig_YAMLDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	doc := `physics:
  cellSize: 16
  friction: 0
  maxSpeed: 50
  iterations: 2
timeStep: 0.5
steps: 3
bodies:
  - name: a
    shape: {type: circle, radius: 4}
    mass: 1
  - name: b
    shape: {type: rotated_rect, width: 4, height: 2, rotation: 0.5}
    x: 6
    mass: 2
    fixed: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if config.Physics.CellSize != 16 || config.Steps != 3 {
		t.Errorf("Unexpected settings %+v", config)
	}
	if len(config.Bodies) != 2 || config.Bodies[1].Shape.Rotation != 0.5 || !config.Bodies[1].Fixed {
		t.Errorf("Unexpected bodies %+v", config.Bodies)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}
