// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	BodyAdded     Type = "body_added"
	BodyRemoved   Type = "body_removed"
	BodyCollision Type = "body_collision"
	StepCompleted Type = "step_completed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a handler registered with Subscribe.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a handler. It reports whether the subscription existed.
func (b *Bus) Unsubscribe(eventType Type, id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// HandlerCount returns the number of handlers subscribed to eventType.
func (b *Bus) HandlerCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// BodyEvent reports a body joining or leaving a simulation
type BodyEvent struct {
	BaseEvent
	EntityID uint64
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, entityID uint64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		EntityID: entityID,
	}
}

// CollisionEvent reports an overlapping pair found during a step. MTV is the
// translation that separates EntityA from EntityB.
type CollisionEvent struct {
	BaseEvent
	EntityA     uint64
	EntityB     uint64
	MTV         physics.Vector2D
	Penetration float64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, entityA, entityB uint64, res physics.CollisionResult) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: BodyCollision,
			Source:    source,
		},
		EntityA:     entityA,
		EntityB:     entityB,
		MTV:         res.MTVA,
		Penetration: res.Penetration,
	}
}

// StepEvent summarises one solver step
type StepEvent struct {
	BaseEvent
	Step     uint64
	Pairs    int
	Contacts int
}

// NewStepEvent creates a new step event
func NewStepEvent(source interface{}, step uint64, res physics.StepResult) *StepEvent {
	return &StepEvent{
		BaseEvent: BaseEvent{
			EventType: StepCompleted,
			Source:    source,
		},
		Step:     step,
		Pairs:    res.Pairs,
		Contacts: len(res.Contacts),
	}
}
