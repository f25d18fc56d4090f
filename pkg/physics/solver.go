// pkg/physics/solver.go
package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by NewSolver for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid solver config")

// Default solver settings.
const (
	DefaultCellSize   = 64.0
	DefaultFriction   = 0.1
	DefaultMaxSpeed   = 500.0
	DefaultIterations = 4
)

// SolverConfig holds the tunables of a Solver.
type SolverConfig struct {
	CellSize   float64 // grid cell edge, comparable to the largest body extent
	Friction   float64 // fraction of velocity removed per step, in [0, 1)
	MaxSpeed   float64 // speed clamp applied after damping
	Iterations int     // correction passes per step
}

// DefaultSolverConfig returns the default settings.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		CellSize:   DefaultCellSize,
		Friction:   DefaultFriction,
		MaxSpeed:   DefaultMaxSpeed,
		Iterations: DefaultIterations,
	}
}

// Validate checks every field and reports the first offending one.
func (c SolverConfig) Validate() error {
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return fmt.Errorf("cell size %v must be positive: %w", c.CellSize, ErrInvalidConfig)
	}
	if !(c.Friction >= 0 && c.Friction < 1) {
		return fmt.Errorf("friction %v must be in [0, 1): %w", c.Friction, ErrInvalidConfig)
	}
	if !(c.MaxSpeed > 0) {
		return fmt.Errorf("max speed %v must be positive: %w", c.MaxSpeed, ErrInvalidConfig)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations %d must be at least 1: %w", c.Iterations, ErrInvalidConfig)
	}
	return nil
}

// ResolveFunc is the narrow-phase signature used by the solver.
type ResolveFunc func(posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult

// SolverOption customises a Solver.
type SolverOption func(*Solver)

// WithResolver replaces the narrow phase, e.g. to instrument it.
func WithResolver(fn ResolveFunc) SolverOption {
	return func(s *Solver) {
		s.resolve = fn
	}
}

// WithTieBreak sets the direction used for coincident circle centres.
func WithTieBreak(tb TieBreak) SolverOption {
	return func(s *Solver) {
		s.resolve = (&Resolver{TieBreak: tb}).Resolve
	}
}

// WithBroadPhase replaces the uniform grid broad phase.
func WithBroadPhase(bp BroadPhase) SolverOption {
	return func(s *Solver) {
		s.broad = bp
	}
}

// Contact is a colliding pair found during the first correction pass.
type Contact struct {
	Pair
	Result CollisionResult
}

// StepResult summarises one call to Step.
type StepResult struct {
	Pairs    int       // candidate pairs from the broad phase
	Passes   int       // correction passes executed
	Contacts []Contact // pairs overlapping after integration
}

// Solver advances bodies and removes overlap with a fixed number of
// mass-weighted positional correction passes. Besides a scratch buffer it
// keeps nothing between steps. It is not safe for concurrent use.
type Solver struct {
	cfg     SolverConfig
	broad   BroadPhase
	resolve ResolveFunc

	corrections []Vector2D
}

// NewSolver validates cfg and returns a Solver using the uniform grid and the
// default narrow phase.
func NewSolver(cfg SolverConfig, opts ...SolverOption) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		cfg:     cfg,
		broad:   GridBroadPhase{CellSize: cfg.CellSize},
		resolve: Resolve,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the solver's settings.
func (s *Solver) Config() SolverConfig {
	return s.cfg
}

// Step integrates every movable body by dt, then runs the correction passes
// over the candidate pairs found at the new positions.
func (s *Solver) Step(bodies []*Body, dt float64) StepResult {
	for _, b := range bodies {
		Integrate(b, dt, s.cfg.Friction, s.cfg.MaxSpeed)
	}

	pairs := s.broad.CandidatePairs(bodies)
	result := StepResult{Pairs: len(pairs)}

	if cap(s.corrections) < len(bodies) {
		s.corrections = make([]Vector2D, len(bodies))
	}
	corrections := s.corrections[:len(bodies)]

	for pass := 0; pass < s.cfg.Iterations; pass++ {
		clear(corrections)

		for _, p := range pairs {
			a, b := bodies[p.I], bodies[p.J]
			res := s.resolve(a.Position, a.Shape, b.Position, b.Shape)
			if !res.Collided {
				continue
			}
			if pass == 0 {
				result.Contacts = append(result.Contacts, Contact{Pair: p, Result: res})
			}
			distribute(corrections, p, a, b, res)
		}

		// Applied together so the pass does not depend on pair order.
		for i, c := range corrections {
			if !bodies[i].Fixed {
				bodies[i].Position = bodies[i].Position.Add(c)
			}
		}
		result.Passes++
	}
	return result
}

// distribute adds a pair's MTVs to the accumulator. A fixed body absorbs
// nothing; two movable bodies split the correction so the lighter moves more.
func distribute(corrections []Vector2D, p Pair, a, b *Body, res CollisionResult) {
	switch {
	case a.Fixed && b.Fixed:
		panic(fmt.Sprintf("physics: correction for fixed pair (%d, %d)", p.I, p.J))
	case b.Fixed:
		corrections[p.I] = corrections[p.I].Add(res.MTVA)
	case a.Fixed:
		corrections[p.J] = corrections[p.J].Add(res.MTVB)
	default:
		total := a.Mass + b.Mass
		corrections[p.I] = corrections[p.I].Add(res.MTVA.Scale(b.Mass / total))
		corrections[p.J] = corrections[p.J].Add(res.MTVB.Scale(a.Mass / total))
	}
}
