package physics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noFriction() SolverConfig {
	cfg := DefaultSolverConfig()
	cfg.Friction = 0
	return cfg
}

func newTestSolver(t *testing.T, cfg SolverConfig, opts ...SolverOption) *Solver {
	t.Helper()
	s, err := NewSolver(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestSolverConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SolverConfig)
	}{
		{"zero_cell_size", func(c *SolverConfig) { c.CellSize = 0 }},
		{"negative_cell_size", func(c *SolverConfig) { c.CellSize = -5 }},
		{"negative_friction", func(c *SolverConfig) { c.Friction = -0.1 }},
		{"friction_one", func(c *SolverConfig) { c.Friction = 1 }},
		{"zero_max_speed", func(c *SolverConfig) { c.MaxSpeed = 0 }},
		{"zero_iterations", func(c *SolverConfig) { c.Iterations = 0 }},
	}

	require.NoError(t, DefaultSolverConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSolverConfig()
			tt.modify(&cfg)
			_, err := NewSolver(cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "expected ErrInvalidConfig, got %v", err)
		})
	}
}

func TestSolver_MassWeightedSplit(t *testing.T) {
	light := &Body{Shape: Circle{Radius: 10}, Mass: 1}
	heavy := &Body{Position: Vector2D{X: 10}, Shape: Circle{Radius: 10}, Mass: 3}

	s := newTestSolver(t, noFriction())
	res := s.Step([]*Body{light, heavy}, 1.0/60)

	assertVec(t, Vector2D{X: -7.5}, light.Position)
	assertVec(t, Vector2D{X: 12.5}, heavy.Position)
	assert.Equal(t, 1, res.Pairs)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, Pair{I: 0, J: 1}, res.Contacts[0].Pair)
	assert.InDelta(t, 10.0, res.Contacts[0].Result.Penetration, 1e-9)
}

func TestSolver_FixedBodyAbsorbsNothing(t *testing.T) {
	wall := &Body{Position: Vector2D{X: 8}, Shape: Rect{Width: 10, Height: 10}, Mass: 100, Fixed: true}
	ball := &Body{Shape: Circle{Radius: 5}, Mass: 1}

	s := newTestSolver(t, noFriction())
	s.Step([]*Body{wall, ball}, 1.0/60)

	assertVec(t, Vector2D{X: -2}, ball.Position)
	assert.Equal(t, Vector2D{X: 8}, wall.Position)
}

func TestSolver_SeparatedBodiesUnchanged(t *testing.T) {
	for _, dt := range []float64{1.0 / 60, 0.5, 1, 10} {
		bodies := []*Body{
			{Shape: Circle{Radius: 5}, Mass: 1},
			{Position: Vector2D{X: 30}, Shape: Rect{Width: 10, Height: 10}, Mass: 2},
			{Position: Vector2D{Y: 40}, Shape: RotatedRect{Width: 10, Height: 4, Rotation: 0.7}, Mass: 1},
		}
		before := []Vector2D{bodies[0].Position, bodies[1].Position, bodies[2].Position}

		s := newTestSolver(t, DefaultSolverConfig())
		res := s.Step(bodies, dt)

		assert.Empty(t, res.Contacts, "dt=%v", dt)
		for i, b := range bodies {
			assert.Equal(t, before[i], b.Position, "dt=%v body %d", dt, i)
		}
	}
}

func TestSolver_RunsEveryPass(t *testing.T) {
	calls := 0
	counting := func(posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
		calls++
		return Resolve(posA, a, posB, b)
	}

	bodies := []*Body{
		{Shape: Circle{Radius: 5}, Mass: 1},
		{Position: Vector2D{X: 6}, Shape: Circle{Radius: 5}, Mass: 1},
		{Position: Vector2D{X: 12}, Shape: Circle{Radius: 5}, Mass: 1},
	}
	cfg := noFriction()
	cfg.Iterations = 5
	s := newTestSolver(t, cfg, WithResolver(counting))

	res := s.Step(bodies, 1.0/60)

	assert.Equal(t, 5, res.Passes)
	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, cfg.Iterations*res.Pairs, calls)
}

func TestSolver_SkipsFixedPairs(t *testing.T) {
	calls := 0
	counting := func(posA Vector2D, a Shape, posB Vector2D, b Shape) CollisionResult {
		calls++
		return Resolve(posA, a, posB, b)
	}

	bodies := []*Body{
		{Shape: Rect{Width: 10, Height: 10}, Mass: 1, Fixed: true},
		{Position: Vector2D{X: 2}, Shape: Rect{Width: 10, Height: 10}, Mass: 1, Fixed: true},
	}
	s := newTestSolver(t, DefaultSolverConfig(), WithResolver(counting))
	res := s.Step(bodies, 1.0/60)

	assert.Zero(t, calls)
	assert.Zero(t, res.Pairs)
	assert.Equal(t, Vector2D{X: 2}, bodies[1].Position)
}

func TestSolver_IntegratesBeforeCorrection(t *testing.T) {
	// Without integration first the bodies would start 20 apart and never touch.
	a := &Body{Shape: Circle{Radius: 5}, Velocity: Vector2D{X: 15}, Mass: 1}
	b := &Body{Position: Vector2D{X: 20}, Shape: Circle{Radius: 5}, Mass: 1}

	s := newTestSolver(t, noFriction())
	res := s.Step([]*Body{a, b}, 1)

	require.Len(t, res.Contacts, 1)
	assert.InDelta(t, 5.0, res.Contacts[0].Result.Penetration, 1e-9)
	assertVec(t, Vector2D{X: 12.5}, a.Position)
	assertVec(t, Vector2D{X: 22.5}, b.Position)
	assertVec(t, Vector2D{X: 15}, a.Velocity)
}

func TestSolver_TieBreakOption(t *testing.T) {
	up := func() Vector2D { return Vector2D{Y: 1} }
	a := &Body{Shape: Circle{Radius: 5}, Mass: 1}
	b := &Body{Shape: Circle{Radius: 5}, Mass: 1}

	s := newTestSolver(t, noFriction(), WithTieBreak(up))
	s.Step([]*Body{a, b}, 1.0/60)

	assertVec(t, Vector2D{Y: 5}, a.Position)
	assertVec(t, Vector2D{Y: -5}, b.Position)
}

func TestSolver_BroadPhasesAgree(t *testing.T) {
	scene := func() []*Body {
		return []*Body{
			{Shape: Circle{Radius: 6}, Mass: 1},
			{Position: Vector2D{X: 9, Y: 1}, Shape: Rect{Width: 8, Height: 8}, Mass: 2},
			{Position: Vector2D{X: 4, Y: 9}, Shape: RotatedRect{Width: 12, Height: 3, Rotation: 0.4}, Mass: 1.5},
			{Position: Vector2D{Y: -40}, Shape: Rect{Width: 60, Height: 4}, Mass: 1, Fixed: true},
		}
	}

	grid, tree := scene(), scene()
	newTestSolver(t, DefaultSolverConfig()).Step(grid, 1.0/60)
	newTestSolver(t, DefaultSolverConfig(), WithBroadPhase(QuadTreeBroadPhase{Capacity: 2})).Step(tree, 1.0/60)

	for i := range grid {
		assertVec(t, grid[i].Position, tree[i].Position, "body %d", i)
	}
}

func TestSolver_ReducesOverlap(t *testing.T) {
	bodies := []*Body{
		{Shape: Circle{Radius: 5}, Mass: 1},
		{Position: Vector2D{X: 3}, Shape: Circle{Radius: 5}, Mass: 1},
		{Position: Vector2D{X: 1.5, Y: 2}, Shape: Rect{Width: 6, Height: 6}, Mass: 1},
	}
	depth := func() float64 {
		total := 0.0
		for i := range bodies {
			for j := i + 1; j < len(bodies); j++ {
				total += Resolve(bodies[i].Position, bodies[i].Shape, bodies[j].Position, bodies[j].Shape).Penetration
			}
		}
		return total
	}

	before := depth()
	s := newTestSolver(t, noFriction())
	s.Step(bodies, 1.0/60)
	assert.Less(t, depth(), before)
}

func TestSolver_PanicsOnForcedFixedPair(t *testing.T) {
	everything := brokenBroadPhase{}
	bodies := []*Body{
		{Shape: Circle{Radius: 5}, Mass: 1, Fixed: true},
		{Position: Vector2D{X: 1}, Shape: Circle{Radius: 5}, Mass: 1, Fixed: true},
	}
	s := newTestSolver(t, DefaultSolverConfig(), WithBroadPhase(everything))
	assert.Panics(t, func() { s.Step(bodies, 1.0/60) })
}

// brokenBroadPhase pairs everything, ignoring the fixed-pair rule.
type brokenBroadPhase struct{}

func (brokenBroadPhase) CandidatePairs(bodies []*Body) []Pair {
	var out []Pair
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			out = append(out, Pair{I: i, J: j})
		}
	}
	return out
}

func BenchmarkSolver_Step(b *testing.B) {
	bodies := make([]*Body, 0, 400)
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			bodies = append(bodies, &Body{
				Position: Vector2D{X: float64(x) * 9, Y: float64(y) * 9},
				Shape:    Circle{Radius: 5},
				Mass:     1,
			})
		}
	}
	s, err := NewSolver(DefaultSolverConfig())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(bodies, 1.0/60)
	}
}
