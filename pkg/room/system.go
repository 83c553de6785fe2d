package room

import (
	"context"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
)

// maxStepsPerUpdate bounds catch-up after a long frame.
const maxStepsPerUpdate = 5

// CollisionSystem steps a room from an ecs.World at the room's fixed step
// rate, however often the world updates.
type CollisionSystem struct {
	Room *Room
	// Paused stops automatic stepping; StepOnce still advances the room.
	Paused bool

	pendingSteps int

	interval    float32
	accumulator float32
	ctx         context.Context
}

// NewCollisionSystem creates a system driving room.
func NewCollisionSystem(room *Room) *CollisionSystem {
	return &CollisionSystem{
		Room:     room,
		interval: float32(room.Config.StepInterval()) / float32(time.Second),
		ctx:      context.Background(),
	}
}

// Add places an instance in the room.
func (s *CollisionSystem) Add(inst *entity.Instance) error {
	return s.Room.Add(inst)
}

// Remove satisfies the ecs.System interface
func (s *CollisionSystem) Remove(basic ecs.BasicEntity) {
	// Entities that never joined the room are not ours to remove.
	_ = s.Room.Destroy(entity.ID(basic.ID()))
}

// StepOnce queues a single step for the next Update, even while paused.
func (s *CollisionSystem) StepOnce() {
	s.pendingSteps++
}

// Update satisfies the ecs.System interface. dt is in seconds.
func (s *CollisionSystem) Update(dt float32) {
	for ; s.pendingSteps > 0; s.pendingSteps-- {
		s.Room.Step(s.ctx)
	}
	if s.Paused {
		s.accumulator = 0
		return
	}
	if s.interval <= 0 {
		s.Room.Step(s.ctx)
		return
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.interval && steps < maxStepsPerUpdate {
		s.Room.Step(s.ctx)
		s.accumulator -= s.interval
		steps++
	}
	if steps == maxStepsPerUpdate {
		s.accumulator = 0
	}
}

// Priority runs collision before the render systems.
func (s *CollisionSystem) Priority() int {
	return 10
}
