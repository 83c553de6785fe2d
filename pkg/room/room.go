// Package room owns the instances of a simulated area and runs the step
// phases that move them: step begin, collision, step end. The collision
// phase rebuilds the quadtree from scratch every tick.
package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/opd-ai/go-quadcollide/pkg/collision"
	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/event"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// StepStats summarizes one step.
type StepStats struct {
	Tick      uint64
	Instances int
	Rejected  int
	// Settled is the number of instances moved again after commit to clear
	// overlaps between resolved positions.
	Settled int
	collision.Stats
}

// Room is the exclusive owner of its instances.
type Room struct {
	Config      *config.Config
	EntityLock  sync.RWMutex
	CurrentTick uint64
	EventBus    *event.Bus
	Tree        *collision.Tree
	Resolver    *collision.Resolver
	Guard       *CallbackGuard

	instances map[entity.ID]*entity.Instance
	outside   map[entity.ID]bool
	logger    *logging.Logger
}

// pendingContact is a collision whose callbacks run once the room lock is
// released, so callbacks may use the room.
type pendingContact struct {
	a, b  *entity.Instance
	solid bool
}

// NewRoom creates an empty room with the specified configuration
func NewRoom(cfg *config.Config) *Room {
	logger := logging.NewLogger()
	r := &Room{
		Config:    cfg,
		EventBus:  event.NewEventBus(),
		instances: make(map[entity.ID]*entity.Instance),
		outside:   make(map[entity.ID]bool),
		logger:    logger,
	}

	r.Tree = collision.NewTree(roomStore{r}, r.treeRegion(), collision.Settings{
		MaxDepth: cfg.Tree.MaxDepth,
		Capacity: cfg.Tree.Capacity,
		Debug:    cfg.Debug,
		Logger:   logger,
	})
	r.Resolver = &collision.Resolver{
		OutsideSteps: cfg.Resolution.OutsideSteps,
		SweepStep:    cfg.Resolution.SweepStep,
		SweepRange:   cfg.Resolution.SweepRange,
		SettlePasses: cfg.Resolution.SettlePasses,
		Places:       placeChecker{r},
	}
	r.Guard = NewCallbackGuard(cfg.Callbacks, logger)
	return r
}

// SetLogger replaces the logger used by the room and its tree.
func (r *Room) SetLogger(logger *logging.Logger) {
	r.EntityLock.Lock()
	defer r.EntityLock.Unlock()

	r.logger = logger
	r.Guard.logger = logger
	r.Tree = collision.NewTree(roomStore{r}, r.treeRegion(), collision.Settings{
		MaxDepth: r.Config.Tree.MaxDepth,
		Capacity: r.Config.Tree.Capacity,
		Debug:    r.Config.Debug,
		Logger:   logger,
	})
}

// Bounds returns the simulated area.
func (r *Room) Bounds() physics.Rect {
	return physics.Rect{Width: r.Config.Room.Width, Height: r.Config.Room.Height}
}

func (r *Room) treeRegion() physics.Rect {
	return collision.SquareRegion(r.Config.Room.Width, r.Config.Room.Height)
}

func (r *Room) mode() physics.Mode {
	if r.Config.Debug {
		return physics.ReportAllOverlaps
	}
	return physics.Normal
}

// Add places an instance in the room.
func (r *Room) Add(inst *entity.Instance) error {
	if inst == nil {
		return fmt.Errorf("cannot add nil instance")
	}

	r.EntityLock.Lock()
	id := inst.GetID()
	if _, exists := r.instances[id]; exists {
		r.EntityLock.Unlock()
		return fmt.Errorf("instance %d already in room", id)
	}
	r.instances[id] = inst
	r.EntityLock.Unlock()

	r.EventBus.Publish(event.NewInstanceEvent(event.InstanceCreated, r,
		uint64(id), inst.Name, inst.Position.X, inst.Position.Y))
	return nil
}

// Destroy removes an instance from the room and from the current tree.
func (r *Room) Destroy(id entity.ID) error {
	r.EntityLock.Lock()
	inst, ok := r.instances[id]
	if !ok {
		r.EntityLock.Unlock()
		return fmt.Errorf("instance %d not found", id)
	}
	r.Tree.Remove(inst)
	delete(r.instances, id)
	delete(r.outside, id)
	r.EntityLock.Unlock()

	r.EventBus.Publish(event.NewInstanceEvent(event.InstanceDestroyed, r,
		uint64(id), inst.Name, inst.Position.X, inst.Position.Y))
	return nil
}

// Get returns the instance with the given ID.
func (r *Room) Get(id entity.ID) (*entity.Instance, bool) {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// Instances returns every instance in depth order.
func (r *Room) Instances() []*entity.Instance {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	return r.sorted()
}

// Len returns the number of instances in the room.
func (r *Room) Len() int {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	return len(r.instances)
}

// View calls fn with the tree and the depth-ordered instances while holding
// the read lock. fn must not call back into the room.
func (r *Room) View(fn func(tree *collision.Tree, instances []*entity.Instance)) {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	fn(r.Tree, r.sorted())
}

// sorted returns the instances in depth order. Callers hold the lock.
func (r *Room) sorted() []*entity.Instance {
	list := make([]*entity.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		list = append(list, inst)
	}
	entity.SortInstances(list)
	return list
}

// Step advances the room by one tick. Collision callbacks run after every
// pair has been resolved and the resolved positions have been committed.
func (r *Room) Step(ctx context.Context) StepStats {
	r.EntityLock.Lock()
	r.CurrentTick++
	stats := StepStats{Tick: r.CurrentTick}
	ctx = logging.WithTick(ctx, r.CurrentTick)

	instances := r.sorted()
	stats.Instances = len(instances)
	r.stepBegin(instances)
	pending, rejected := r.collide(ctx, instances, &stats)
	resolved := r.commit(instances, &stats)
	r.EntityLock.Unlock()

	for _, inst := range rejected {
		r.EventBus.Publish(event.NewInstanceEvent(event.InsertRejected, r,
			uint64(inst.GetID()), inst.Name, inst.Position.X, inst.Position.Y))
	}
	for _, ev := range resolved {
		r.EventBus.Publish(ev)
	}
	r.dispatch(ctx, pending)
	r.stepEnd(ctx)

	r.logger.Debug(ctx, "step completed",
		"instances", stats.Instances,
		"pairs", stats.Pairs,
		"collisions", stats.Collisions,
		"resolved", stats.Resolved,
		"settled", stats.Settled,
		"rejected", stats.Rejected,
	)
	ev := event.NewStepEvent(r, stats.Tick)
	ev.Instances = stats.Instances
	ev.Pairs = stats.Pairs
	ev.Collisions = stats.Collisions
	ev.Resolved = stats.Resolved
	ev.Settled = stats.Settled
	ev.Rejected = stats.Rejected
	r.EventBus.Publish(ev)
	return stats
}

// stepBegin condenses each instance's queued motion, friction and gravity
// into its move for this tick.
func (r *Room) stepBegin(instances []*entity.Instance) {
	for _, inst := range instances {
		inst.ApplyMotion()
	}
}

// collide rebuilds the tree and runs the pair check.
func (r *Room) collide(ctx context.Context, instances []*entity.Instance, stats *StepStats) ([]pendingContact, []*entity.Instance) {
	r.Tree.Reset(r.treeRegion())

	var rejected []*entity.Instance
	for _, inst := range instances {
		if !r.Tree.Insert(ctx, inst).Stored() {
			rejected = append(rejected, inst)
		}
	}
	stats.Rejected = len(rejected)

	var pending []pendingContact
	handler := func(self, other *entity.Instance) {
		// The tree reports both directions back to back; keep the pair once.
		if n := len(pending); n > 0 && pending[n-1].a == other && pending[n-1].b == self {
			return
		}
		pending = append(pending, pendingContact{a: self, b: other, solid: self.Solid && other.Solid})
	}
	stats.Stats = r.Tree.CheckCollisions(r.Resolver, handler, r.mode())
	return pending, rejected
}

// commit moves every instance to its proposed position, then settles the
// overlaps that only show up between committed positions.
func (r *Room) commit(instances []*entity.Instance, stats *StepStats) []event.Event {
	attempted := make(map[entity.ID]physics.Vector2D, len(instances))
	changed := make(map[entity.ID]bool)
	var adjusted []*entity.Instance
	for _, inst := range instances {
		attempted[inst.GetID()] = inst.Position
		if inst.Commit() {
			changed[inst.GetID()] = true
			adjusted = append(adjusted, inst)
		}
	}

	settled := r.Resolver.Settle(adjusted, instances)
	stats.Settled = len(settled)
	for _, inst := range settled {
		changed[inst.GetID()] = true
	}

	var events []event.Event
	for _, inst := range instances {
		if !changed[inst.GetID()] {
			continue
		}
		from := attempted[inst.GetID()]
		events = append(events, event.NewResolvedEvent(r, uint64(inst.GetID()),
			from.X, from.Y, inst.Position.X, inst.Position.Y))
	}
	return events
}

// dispatch fires collision events and callbacks, self first.
func (r *Room) dispatch(ctx context.Context, pending []pendingContact) {
	for _, c := range pending {
		r.EventBus.Publish(event.NewCollisionEvent(r, uint64(c.a.GetID()), uint64(c.b.GetID()), c.solid))
		if err := r.Guard.Call(ctx, c.a, c.b); err != nil {
			r.logger.Error(ctx, "collision callback failed", err, "self", c.a.Name, "other", c.b.Name)
		}
		if err := r.Guard.Call(ctx, c.b, c.a); err != nil {
			r.logger.Error(ctx, "collision callback failed", err, "self", c.b.Name, "other", c.a.Name)
		}
	}
}

// stepEnd publishes OutsideRoom for instances that left the room this tick.
func (r *Room) stepEnd(ctx context.Context) {
	bounds := r.Bounds()

	r.EntityLock.Lock()
	var left []*entity.Instance
	for _, inst := range r.sorted() {
		id := inst.GetID()
		out := !physics.Overlaps(inst.Bounds(), bounds)
		if out && !r.outside[id] {
			left = append(left, inst)
		}
		r.outside[id] = out
	}
	r.EntityLock.Unlock()

	for _, inst := range left {
		r.logger.Debug(ctx, "instance left room", "instance", inst.GetID(), "name", inst.Name)
		r.EventBus.Publish(event.NewInstanceEvent(event.OutsideRoom, r,
			uint64(inst.GetID()), inst.Name, inst.Position.X, inst.Position.Y))
	}
}

// roomStore lets the tree look up instances while the room lock is held.
type roomStore struct {
	r *Room
}

func (s roomStore) Instance(id entity.ID) (*entity.Instance, bool) {
	inst, ok := s.r.instances[id]
	return inst, ok
}
