package room

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-quadcollide/pkg/collision"
	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/event"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

const delta = 1e-9

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Debug = true
	r := NewRoom(cfg)
	r.SetLogger(logging.NewNopLogger())
	return r
}

func addInstance(t *testing.T, r *Room, name string, x, y, w, h float64, solid bool) *entity.Instance {
	t.Helper()
	inst := entity.NewInstance(name, x, y, w, h)
	inst.Solid = solid
	require.NoError(t, r.Add(inst))
	return inst
}

func countEvents(r *Room, eventType event.Type) *int {
	n := new(int)
	r.EventBus.Subscribe(eventType, func(event.Event) { *n++ })
	return n
}

func TestRoom_AddDestroy(t *testing.T) {
	r := newTestRoom(t)
	created := countEvents(r, event.InstanceCreated)
	destroyed := countEvents(r, event.InstanceDestroyed)

	inst := addInstance(t, r, "a", 10, 10, 10, 10, true)
	assert.Equal(t, 1, r.Len())
	assert.Error(t, r.Add(inst), "adding twice should fail")
	assert.Error(t, r.Add(nil))

	got, ok := r.Get(inst.GetID())
	require.True(t, ok)
	assert.Same(t, inst, got)

	require.NoError(t, r.Destroy(inst.GetID()))
	assert.Error(t, r.Destroy(inst.GetID()))
	assert.Equal(t, 0, r.Len())

	assert.Equal(t, 1, *created)
	assert.Equal(t, 1, *destroyed)
}

func TestRoom_HeadOnCollision(t *testing.T) {
	r := newTestRoom(t)
	collisions := countEvents(r, event.EntityCollision)
	resolved := countEvents(r, event.CollisionResolved)

	a := addInstance(t, r, "a", 100, 100, 10, 10, true)
	b := addInstance(t, r, "b", 125, 100, 10, 10, true)

	var calls []string
	a.OnCollision = func(self, other *entity.Instance) error {
		calls = append(calls, self.Name+"->"+other.Name)
		return nil
	}
	b.OnCollision = a.OnCollision

	a.Move(10, 0)
	b.Move(10, 180)
	stats := r.Step(context.Background())

	assert.Equal(t, uint64(1), stats.Tick)
	assert.Equal(t, 2, stats.Instances)
	assert.Equal(t, 1, stats.Collisions)
	assert.Equal(t, 2, stats.Resolved)

	assert.False(t, physics.Collides(a.Body(), b.Body()))
	assert.LessOrEqual(t, a.Position.Distance(a.Previous), 10+delta)
	assert.LessOrEqual(t, b.Position.Distance(b.Previous), 10+delta)
	assert.InDelta(t, 105, a.Position.X, delta)
	assert.InDelta(t, 95, a.Position.Y, delta)
	assert.InDelta(t, 120, b.Position.X, delta)
	assert.InDelta(t, 105, b.Position.Y, delta)

	assert.Equal(t, []string{"a->b", "b->a"}, calls)
	assert.Equal(t, 1, *collisions)
	assert.Equal(t, 2, *resolved)
}

func TestRoom_NonSolidCollisionOnlyNotifies(t *testing.T) {
	r := newTestRoom(t)
	a := addInstance(t, r, "a", 100, 100, 10, 10, true)
	ghost := addInstance(t, r, "ghost", 115, 100, 10, 10, false)

	a.Move(10, 0)
	stats := r.Step(context.Background())

	assert.Equal(t, 1, stats.Collisions)
	assert.Equal(t, 0, stats.Resolved)
	assert.Equal(t, physics.Vector2D{X: 110, Y: 100}, a.Position)
	assert.Equal(t, physics.Vector2D{X: 115, Y: 100}, ghost.Position)
}

func TestRoom_CallbackMayDestroyInstances(t *testing.T) {
	r := newTestRoom(t)
	bullet := addInstance(t, r, "bullet", 100, 100, 4, 4, false)
	target := addInstance(t, r, "target", 102, 102, 10, 10, false)

	bullet.OnCollision = func(self, other *entity.Instance) error {
		return r.Destroy(self.GetID())
	}

	done := make(chan struct{})
	go func() {
		r.Step(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("step deadlocked while a callback used the room")
	}

	_, ok := r.Get(bullet.GetID())
	assert.False(t, ok)
	_, ok = r.Get(target.GetID())
	assert.True(t, ok)
}

func TestRoom_PlaceQueries(t *testing.T) {
	r := newTestRoom(t)
	self := addInstance(t, r, "self", 0, 0, 10, 10, true)
	addInstance(t, r, "wall", 50, 0, 10, 10, true)
	addInstance(t, r, "coin", 0, 50, 10, 10, false)

	tests := []struct {
		name   string
		pos    physics.Vector2D
		free   bool
		empty  bool
		onCoin bool
	}{
		{"open space", physics.Vector2D{X: 100, Y: 100}, true, true, false},
		{"on the wall", physics.Vector2D{X: 45, Y: 0}, false, false, false},
		{"on the coin", physics.Vector2D{X: 5, Y: 45}, true, false, true},
		{"own position", physics.Vector2D{}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.free, r.IsPlaceFree(self, tt.pos))
			assert.Equal(t, tt.empty, r.IsPlaceEmpty(self, tt.pos))
			assert.Equal(t, tt.onCoin, r.IsPlaceMeeting(self, tt.pos, func(other *entity.Instance) bool {
				return other.Name == "coin"
			}))
		})
	}

	assert.False(t, r.IsMoveFree(self, 45, 0))
	assert.True(t, r.IsMoveFree(self, 45, 270))
}

func TestRoom_MoveWrap(t *testing.T) {
	r := newTestRoom(t)

	tests := []struct {
		name       string
		x, y       float64
		horizontal bool
		vertical   bool
		want       physics.Vector2D
	}{
		{"inside", 500, 300, true, true, physics.Vector2D{X: 500, Y: 300}},
		{"left edge", -11, 300, true, true, physics.Vector2D{X: 1279, Y: 300}},
		{"right edge", 1281, 300, true, true, physics.Vector2D{X: -9, Y: 300}},
		{"bottom edge", 500, 721, true, true, physics.Vector2D{X: 500, Y: -9}},
		{"vertical disabled", 500, 721, true, false, physics.Vector2D{X: 500, Y: 721}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := entity.NewInstance("w", tt.x, tt.y, 10, 10)
			r.MoveWrap(inst, tt.horizontal, tt.vertical, 0)
			assert.Equal(t, tt.want, inst.Position)
		})
	}
}

func TestRoom_OutsideRoomNotifiesOnLeaving(t *testing.T) {
	r := newTestRoom(t)
	outside := countEvents(r, event.OutsideRoom)
	rejected := countEvents(r, event.InsertRejected)

	inst := addInstance(t, r, "runner", 1265, 10, 10, 10, false)
	inst.Move(20, 0)
	r.Step(context.Background())
	assert.Equal(t, 1, *outside)

	stats := r.Step(context.Background())
	assert.Equal(t, 1, *outside, "still outside, no new event")
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 2, *rejected)

	inst.SetPosition(100, 10)
	r.Step(context.Background())
	inst.SetPosition(-100, 10)
	r.Step(context.Background())
	assert.Equal(t, 2, *outside)
}

func TestRoom_StepCompleted(t *testing.T) {
	r := newTestRoom(t)
	var ticks []uint64
	r.EventBus.Subscribe(event.StepCompleted, func(e event.Event) {
		ticks = append(ticks, e.(*event.StepEvent).Tick)
	})

	for i := 0; i < 3; i++ {
		r.Step(context.Background())
	}
	assert.Equal(t, []uint64{1, 2, 3}, ticks)
	assert.Equal(t, uint64(3), r.CurrentTick)
}

func TestRoom_GravityLandsOnFloor(t *testing.T) {
	r := newTestRoom(t)
	inst := addInstance(t, r, "faller", 100, 100, 10, 10, true)
	floor := addInstance(t, r, "floor", 0, 200, 1280, 10, true)
	inst.SetGravity(30)

	for i := 0; i < 3; i++ {
		r.Step(context.Background())
	}
	assert.Equal(t, physics.Vector2D{X: 100, Y: 190}, inst.Position)

	stats := r.Step(context.Background())
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 190.0, inst.Position.Y, "should rest on the floor")
	assert.False(t, physics.Collides(inst.Body(), floor.Body()))
	assert.LessOrEqual(t, inst.Position.Distance(inst.Previous), 30+delta)
	assert.Equal(t, physics.Vector2D{X: 0, Y: 200}, floor.Position)
}

func TestRoom_CrowdedMoversGainNoOverlaps(t *testing.T) {
	const (
		rooms   = 50
		movers  = 12
		steps   = 20
		size    = 10.0
		areaMin = 200.0
		areaMax = 400.0
	)

	for seed := int64(1); seed <= rooms; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := newTestRoom(t)

		var instances []*entity.Instance
		for len(instances) < movers {
			x := areaMin + rng.Float64()*(areaMax-areaMin-size)
			y := areaMin + rng.Float64()*(areaMax-areaMin-size)
			inst := entity.NewInstance("mover", x, y, size, size)
			inst.Solid = true
			if !r.IsPlaceEmpty(inst, inst.Position) {
				continue
			}
			require.NoError(t, r.Add(inst))
			instances = append(instances, inst)
		}

		for s := 0; s < steps; s++ {
			for _, inst := range instances {
				inst.Move(1+rng.Float64()*7, rng.Float64()*360)
			}
			r.Step(context.Background())

			for i, a := range instances {
				for _, b := range instances[i+1:] {
					if physics.Collides(a.BodyAt(a.Previous), b.BodyAt(b.Previous)) {
						continue
					}
					require.False(t, physics.Collides(a.Body(), b.Body()),
						"seed %d step %d: %v -> %v and %v -> %v", seed, s,
						a.Previous, a.Position, b.Previous, b.Position)
				}
			}
		}
	}
}

func TestRoom_HeldBackInstanceDoesNotLandOnFollower(t *testing.T) {
	r := newTestRoom(t)
	var resolved []*event.ResolvedEvent
	r.EventBus.Subscribe(event.CollisionResolved, func(e event.Event) {
		resolved = append(resolved, e.(*event.ResolvedEvent))
	})

	i := addInstance(t, r, "i", 130, 100, 10, 10, true)
	j := addInstance(t, r, "j", 118, 100, 10, 10, true)
	k := addInstance(t, r, "k", 145, 100, 10, 10, true)

	i.Move(10, 0)
	j.Move(8, 0)
	stats := r.Step(context.Background())

	assert.Equal(t, 1, stats.Collisions)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.Settled)
	assert.False(t, physics.Collides(i.Body(), j.Body()))
	assert.False(t, physics.Collides(i.Body(), k.Body()))
	assert.False(t, physics.Collides(j.Body(), k.Body()))
	assert.Equal(t, physics.Vector2D{X: 130, Y: 100}, i.Position)
	assert.LessOrEqual(t, j.Position.Distance(j.Previous), 8+delta)

	require.Len(t, resolved, 2)
	assert.Equal(t, uint64(i.GetID()), resolved[0].InstanceID)
	assert.InDelta(t, 140, resolved[0].FromX, delta)
	assert.InDelta(t, 130, resolved[0].ToX, delta)
	assert.Equal(t, uint64(j.GetID()), resolved[1].InstanceID)
	assert.InDelta(t, 126, resolved[1].FromX, delta)
}

func TestCallbackGuard_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := config.DefaultConfig().Callbacks
	cfg.MaxConsecutiveFails = 3
	cfg.Timeout = time.Minute
	guard := NewCallbackGuard(cfg, logging.NewNopLogger())

	calls := 0
	self := entity.NewInstance("flaky", 0, 0, 1, 1)
	other := entity.NewInstance("other", 0, 0, 1, 1)
	self.OnCollision = func(*entity.Instance, *entity.Instance) error {
		calls++
		return errors.New("boom")
	}

	for i := 0; i < 3; i++ {
		assert.Error(t, guard.Call(context.Background(), self, other))
	}
	assert.Equal(t, gobreaker.StateOpen, guard.State())

	assert.NoError(t, guard.Call(context.Background(), self, other), "open breaker skips the callback")
	assert.Equal(t, 3, calls)
}

func TestCallbackGuard_RecoversPanics(t *testing.T) {
	guard := NewCallbackGuard(config.DefaultConfig().Callbacks, logging.NewNopLogger())
	self := entity.NewInstance("panicky", 0, 0, 1, 1)
	self.OnCollision = func(*entity.Instance, *entity.Instance) error {
		panic("bad callback")
	}

	err := guard.Call(context.Background(), self, entity.NewInstance("other", 0, 0, 1, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, uint32(1), guard.Counts().ConsecutiveFailures)
}

func TestCallbackGuard_IgnoresInstancesWithoutCallback(t *testing.T) {
	guard := NewCallbackGuard(config.DefaultConfig().Callbacks, logging.NewNopLogger())
	self := entity.NewInstance("quiet", 0, 0, 1, 1)

	assert.NoError(t, guard.Call(context.Background(), self, self))
	assert.Equal(t, uint32(0), guard.Counts().Requests)
}

func TestCollisionSystem_World(t *testing.T) {
	r := newTestRoom(t)
	sys := NewCollisionSystem(r)

	world := &ecs.World{}
	world.AddSystem(sys)

	inst := entity.NewInstance("a", 10, 10, 10, 10)
	require.NoError(t, sys.Add(inst))

	for i := 0; i < 3; i++ {
		world.Update(sys.interval)
	}
	assert.Equal(t, uint64(3), r.CurrentTick)

	world.Update(sys.interval / 2)
	assert.Equal(t, uint64(3), r.CurrentTick, "half a step should not advance the room")

	world.Update(10)
	assert.Equal(t, uint64(3+maxStepsPerUpdate), r.CurrentTick)

	world.RemoveEntity(inst.BasicEntity)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 10, sys.Priority())
}

func TestCollisionSystem_PauseAndStepOnce(t *testing.T) {
	r := newTestRoom(t)
	sys := NewCollisionSystem(r)
	sys.Paused = true

	sys.Update(10)
	assert.Equal(t, uint64(0), r.CurrentTick)

	sys.StepOnce()
	sys.StepOnce()
	sys.Update(0)
	assert.Equal(t, uint64(2), r.CurrentTick)

	sys.Update(10)
	assert.Equal(t, uint64(2), r.CurrentTick, "queued steps run once")
}

func TestRoom_View(t *testing.T) {
	r := newTestRoom(t)
	deep := addInstance(t, r, "deep", 10, 10, 10, 10, true)
	deep.Depth = 5
	shallow := addInstance(t, r, "shallow", 50, 50, 10, 10, true)
	r.Step(context.Background())

	var names []string
	var treeLen int
	r.View(func(tree *collision.Tree, instances []*entity.Instance) {
		treeLen = tree.Len()
		for _, inst := range instances {
			names = append(names, inst.Name)
		}
	})
	assert.Equal(t, []string{deep.Name, shallow.Name}, names)
	assert.Equal(t, 2, treeLen)
}
