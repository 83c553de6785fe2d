// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Room event types
const (
	InstanceCreated   Type = "instance_created"
	InstanceDestroyed Type = "instance_destroyed"
	EntityCollision   Type = "entity_collision"
	CollisionResolved Type = "collision_resolved"
	InsertRejected    Type = "insert_rejected"
	OutsideRoom       Type = "outside_room"
	StepCompleted     Type = "step_completed"
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

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID: id,
		Cancel: func() {
			b.unsubscribe(eventType, id)
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
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

// Specific event implementations

// InstanceEvent contains information about instance lifecycle events
type InstanceEvent struct {
	BaseEvent
	InstanceID uint64
	Name       string
	X, Y       float64
}

// NewInstanceEvent creates a new instance event
func NewInstanceEvent(eventType Type, source interface{}, instanceID uint64, name string, x, y float64) *InstanceEvent {
	return &InstanceEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		InstanceID: instanceID,
		Name:       name,
		X:          x,
		Y:          y,
	}
}

// CollisionEvent contains information about entity collisions
type CollisionEvent struct {
	BaseEvent
	EntityA uint64
	EntityB uint64
	// Solid is true when both entities blocked each other.
	Solid bool
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, entityA, entityB uint64, solid bool) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: EntityCollision,
			Source:    source,
		},
		EntityA: entityA,
		EntityB: entityB,
		Solid:   solid,
	}
}

// ResolvedEvent reports an instance moved by collision resolution
type ResolvedEvent struct {
	BaseEvent
	InstanceID   uint64
	FromX, FromY float64
	ToX, ToY     float64
}

// NewResolvedEvent creates a new resolution event
func NewResolvedEvent(source interface{}, instanceID uint64, fromX, fromY, toX, toY float64) *ResolvedEvent {
	return &ResolvedEvent{
		BaseEvent: BaseEvent{
			EventType: CollisionResolved,
			Source:    source,
		},
		InstanceID: instanceID,
		FromX:      fromX,
		FromY:      fromY,
		ToX:        toX,
		ToY:        toY,
	}
}

// StepEvent summarizes a completed simulation step
type StepEvent struct {
	BaseEvent
	Tick       uint64
	Instances  int
	Pairs      int
	Collisions int
	Resolved   int
	Settled    int
	Rejected   int
}

// NewStepEvent creates a new step event
func NewStepEvent(source interface{}, tick uint64) *StepEvent {
	return &StepEvent{
		BaseEvent: BaseEvent{
			EventType: StepCompleted,
			Source:    source,
		},
		Tick: tick,
	}
}
