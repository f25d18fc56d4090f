// pkg/config/env_config.go
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnvironmentOverrides.
const (
	EnvCellSize   = "RIGID2D_CELL_SIZE"
	EnvFriction   = "RIGID2D_FRICTION"
	EnvMaxSpeed   = "RIGID2D_MAX_SPEED"
	EnvIterations = "RIGID2D_ITERATIONS"
	EnvBroadPhase = "RIGID2D_BROAD_PHASE"
	EnvTimeStep   = "RIGID2D_TIME_STEP"
	EnvSteps      = "RIGID2D_STEPS"
)

// ValidationError names the configuration field that failed validation.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Validate checks the solver settings.
func (p *PhysicsConfig) Validate() error {
	if !(p.CellSize > 0) || math.IsInf(p.CellSize, 0) {
		return &ValidationError{Field: "physics.cellSize", Value: p.CellSize, Message: "must be a positive number"}
	}
	if !(p.Friction >= 0 && p.Friction < 1) {
		return &ValidationError{Field: "physics.friction", Value: p.Friction, Message: "must be in [0, 1)"}
	}
	if !(p.MaxSpeed > 0) {
		return &ValidationError{Field: "physics.maxSpeed", Value: p.MaxSpeed, Message: "must be positive"}
	}
	if p.Iterations < 1 {
		return &ValidationError{Field: "physics.iterations", Value: p.Iterations, Message: "must be at least 1"}
	}
	switch strings.ToLower(p.BroadPhase) {
	case "", BroadPhaseGrid, BroadPhaseQuadTree:
	default:
		return &ValidationError{Field: "physics.broadPhase", Value: p.BroadPhase, Message: "must be grid or quadtree"}
	}
	return nil
}

// Validate checks the whole configuration, including every body.
func (c *SimulationConfig) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return &ValidationError{Field: "timeStep", Value: c.TimeStep, Message: "must be a positive number"}
	}
	if c.Steps < 0 {
		return &ValidationError{Field: "steps", Value: c.Steps, Message: "must not be negative"}
	}
	for i, b := range c.Bodies {
		field := fmt.Sprintf("bodies[%d]", i)
		if _, err := b.Shape.Shape(); err != nil {
			return &ValidationError{Field: field + ".shape", Value: b.Shape.Type, Message: err.Error()}
		}
		if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
			return &ValidationError{Field: field + ".mass", Value: b.Mass, Message: "must be a positive number"}
		}
	}
	return nil
}

// ApplyEnvironmentOverrides replaces settings with any RIGID2D_* environment
// variables that are set, then validates the result. Unparseable values are
// ignored.
func ApplyEnvironmentOverrides(config *SimulationConfig) error {
	p := &config.Physics
	p.CellSize = getEnvAsFloatOrDefault(EnvCellSize, p.CellSize)
	p.Friction = getEnvAsFloatOrDefault(EnvFriction, p.Friction)
	p.MaxSpeed = getEnvAsFloatOrDefault(EnvMaxSpeed, p.MaxSpeed)
	p.Iterations = getEnvAsIntOrDefault(EnvIterations, p.Iterations)
	p.BroadPhase = getEnvOrDefault(EnvBroadPhase, p.BroadPhase)
	config.TimeStep = getEnvAsFloatOrDefault(EnvTimeStep, config.TimeStep)
	config.Steps = getEnvAsIntOrDefault(EnvSteps, config.Steps)

	return config.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}
