// pkg/system/physics.go
package system

import (
	"context"
	"io"
	"log/slog"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-rigid2d/pkg/event"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

type physicsEntity struct {
	basic *ecs.BasicEntity
	body  *physics.Body
}

// PhysicsSystem steps every registered body through a physics.Solver once per
// world update. Bodies are kept with movable ones first, heavier before
// lighter, and fixed ones last; equal bodies keep insertion order.
type PhysicsSystem struct {
	solver *physics.Solver
	bus    *event.Bus
	logger *logging.Logger
	ctx    context.Context

	entities []physicsEntity
	bodies   []*physics.Body

	steps uint64
	last  physics.StepResult
}

// NewPhysicsSystem creates a system driving solver. bus and logger may be nil.
func NewPhysicsSystem(solver *physics.Solver, bus *event.Bus, logger *logging.Logger) *PhysicsSystem {
	if logger == nil {
		logger = logging.NewLoggerWithWriter(io.Discard, slog.LevelError)
	}
	return &PhysicsSystem{
		solver: solver,
		bus:    bus,
		logger: logger.With("system", "physics"),
		ctx:    context.Background(),
	}
}

// SetContext sets the context used for log records, e.g. one carrying a
// correlation ID.
func (ps *PhysicsSystem) SetContext(ctx context.Context) {
	ps.ctx = ctx
}

// Add registers a body under the entity. Adding an entity twice replaces its body.
func (ps *PhysicsSystem) Add(basic *ecs.BasicEntity, body *physics.Body) {
	ps.remove(basic.ID())

	i := 0
	for i < len(ps.entities) && !before(body, ps.entities[i].body) {
		i++
	}
	ps.entities = append(ps.entities, physicsEntity{})
	copy(ps.entities[i+1:], ps.entities[i:])
	ps.entities[i] = physicsEntity{basic: basic, body: body}
	ps.rebuild()

	ps.logger.Debug(ps.ctx, "body added", "entity", basic.ID(), "shape", body.Shape.Kind().String(), "fixed", body.Fixed)
	ps.publish(event.NewBodyEvent(event.BodyAdded, ps, basic.ID()))
}

// before reports whether a sorts strictly ahead of b.
func before(a, b *physics.Body) bool {
	if a.Fixed != b.Fixed {
		return !a.Fixed
	}
	return a.Mass > b.Mass
}

// Remove satisfies the ecs.System interface
func (ps *PhysicsSystem) Remove(basic ecs.BasicEntity) {
	if ps.remove(basic.ID()) {
		ps.logger.Debug(ps.ctx, "body removed", "entity", basic.ID())
		ps.publish(event.NewBodyEvent(event.BodyRemoved, ps, basic.ID()))
	}
}

func (ps *PhysicsSystem) remove(id uint64) bool {
	for i, e := range ps.entities {
		if e.basic.ID() == id {
			ps.entities = append(ps.entities[:i], ps.entities[i+1:]...)
			ps.rebuild()
			return true
		}
	}
	return false
}

func (ps *PhysicsSystem) rebuild() {
	ps.bodies = ps.bodies[:0]
	for _, e := range ps.entities {
		ps.bodies = append(ps.bodies, e.body)
	}
}

// Update satisfies the ecs.System interface
func (ps *PhysicsSystem) Update(dt float32) {
	ps.Step(float64(dt))
}

// Step advances the simulation by dt seconds and publishes one collision
// event per contact followed by a step event.
func (ps *PhysicsSystem) Step(dt float64) physics.StepResult {
	res := ps.solver.Step(ps.bodies, dt)
	ps.steps++
	ps.last = res

	for _, c := range res.Contacts {
		a, b := ps.entities[c.I].basic.ID(), ps.entities[c.J].basic.ID()
		ps.publish(event.NewCollisionEvent(ps, a, b, c.Result))
	}
	ps.publish(event.NewStepEvent(ps, ps.steps, res))

	ps.logger.Debug(ps.ctx, "step",
		"step", ps.steps,
		"bodies", len(ps.bodies),
		"pairs", res.Pairs,
		"contacts", len(res.Contacts))
	return res
}

func (ps *PhysicsSystem) publish(ev event.Event) {
	if ps.bus != nil {
		ps.bus.Publish(ev)
	}
}

// Body returns the body registered for an entity ID.
func (ps *PhysicsSystem) Body(id uint64) (*physics.Body, bool) {
	for _, e := range ps.entities {
		if e.basic.ID() == id {
			return e.body, true
		}
	}
	return nil, false
}

// Entities returns the registered entity IDs in solver order.
func (ps *PhysicsSystem) Entities() []uint64 {
	ids := make([]uint64, len(ps.entities))
	for i, e := range ps.entities {
		ids[i] = e.basic.ID()
	}
	return ids
}

// Len returns the number of registered bodies.
func (ps *PhysicsSystem) Len() int { return len(ps.entities) }

// Steps returns the number of completed steps.
func (ps *PhysicsSystem) Steps() uint64 { return ps.steps }

// LastResult returns the summary of the most recent step.
func (ps *PhysicsSystem) LastResult() physics.StepResult { return ps.last }
