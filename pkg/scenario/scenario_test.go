package scenario

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

func newTestRoom(t *testing.T, width, height float64) *room.Room {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Room.Width = width
	cfg.Room.Height = height
	cfg.Debug = true
	r := room.NewRoom(cfg)
	r.SetLogger(logging.NewNopLogger())
	return r
}

func TestScenario_AddWalls(t *testing.T) {
	r := newTestRoom(t, 200, 100)
	s := New(r)
	require.NoError(t, s.AddWalls())

	walls := r.Instances()
	require.Len(t, walls, 4)
	for _, w := range walls {
		assert.True(t, w.Solid, w.Name)
		assert.True(t, physics.Overlaps(w.Bounds(), r.Bounds()), w.Name)
	}

	box := entity.NewInstance("box", 0, 0, 10, 10)
	assert.True(t, r.IsPlaceFree(box, physics.Vector2D{X: 50, Y: 40}))
	assert.False(t, r.IsPlaceFree(box, physics.Vector2D{X: 50, Y: 0}))
	assert.False(t, r.IsPlaceFree(box, physics.Vector2D{X: 195, Y: 40}))
}

func TestScenario_Populate(t *testing.T) {
	r := newTestRoom(t, 640, 480)
	s := New(r)
	require.NoError(t, s.AddWalls())
	require.NoError(t, s.Populate(8, rand.New(rand.NewSource(1))))

	movers := s.Movers()
	require.Len(t, movers, 8)
	assert.Equal(t, 12, r.Len())

	ghosts := 0
	for i, m := range movers {
		inst := m.Instance
		if !inst.Solid {
			ghosts++
			assert.False(t, m.Bounce)
		}
		assert.GreaterOrEqual(t, inst.Position.X, WallThickness, inst.Name)
		assert.GreaterOrEqual(t, inst.Position.Y, WallThickness, inst.Name)
		assert.LessOrEqual(t, inst.Bounds().Right(), 640-WallThickness, inst.Name)
		assert.LessOrEqual(t, inst.Bounds().Bottom(), 480-WallThickness, inst.Name)
		assert.GreaterOrEqual(t, m.Speed, 1.0)
		for _, other := range movers[:i] {
			assert.False(t, physics.Collides(inst.Body(), other.Instance.Body()),
				"%s overlaps %s", inst.Name, other.Instance.Name)
		}
	}
	assert.Equal(t, 2, ghosts)
}

func TestScenario_PopulateFailsWhenFull(t *testing.T) {
	r := newTestRoom(t, 64, 64)
	s := New(r)
	require.NoError(t, s.AddWalls())
	filler := entity.NewInstance("filler", WallThickness, WallThickness, 32, 32)
	require.NoError(t, r.Add(filler))

	err := s.Populate(1, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	assert.Empty(t, s.Movers())
}

func TestScenario_AttachDrivesMovers(t *testing.T) {
	r := newTestRoom(t, 640, 480)
	s := New(r)
	m, err := s.AddMover("m", 100, 100, 10, 2, 0, true)
	require.NoError(t, err)

	s.Attach()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r.Step(ctx)
	}
	assert.Equal(t, 106.0, m.Instance.Position.X)

	// The motion queued by the last step still applies once.
	s.Detach()
	r.Step(ctx)
	r.Step(ctx)
	assert.Equal(t, 108.0, m.Instance.Position.X)
}

func TestScenario_GhostWrapsAround(t *testing.T) {
	r := newTestRoom(t, 1280, 720)
	s := New(r)
	ghost, err := s.AddMover("ghost", 1265, 100, 10, 20, 0, false)
	require.NoError(t, err)
	s.Attach()
	defer s.Detach()

	r.Step(context.Background())
	assert.Equal(t, -5.0, ghost.Instance.Position.X)

	r.Step(context.Background())
	assert.Equal(t, 15.0, ghost.Instance.Position.X)
}

func TestScenario_ForgetsDestroyedMovers(t *testing.T) {
	r := newTestRoom(t, 640, 480)
	s := New(r)
	a, err := s.AddMover("a", 100, 100, 10, 1, 0, true)
	require.NoError(t, err)
	_, err = s.AddMover("b", 200, 100, 10, 1, 0, true)
	require.NoError(t, err)
	s.Attach()
	defer s.Detach()

	require.NoError(t, r.Destroy(a.Instance.GetID()))

	movers := s.Movers()
	require.Len(t, movers, 1)
	assert.Equal(t, "b", movers[0].Instance.Name)
}

func TestMover_Bounce(t *testing.T) {
	tests := []struct {
		name      string
		direction float64
		other     *entity.Instance
		solid     bool
		bounce    bool
		want      float64
	}{
		{"vertical wall", 0, entity.NewInstance("wall", 20, 0, 10, 100), true, true, 180},
		{"vertical wall diagonal", 45, entity.NewInstance("wall", 20, 0, 10, 100), true, true, 135},
		{"floor", 315, entity.NewInstance("floor", 0, 20, 100, 10), true, true, 45},
		{"ceiling", 90, entity.NewInstance("ceiling", 0, -20, 100, 10), true, true, 270},
		{"non-solid other", 0, entity.NewInstance("ghost", 20, 0, 10, 100), false, true, 0},
		{"bounce disabled", 0, entity.NewInstance("wall", 20, 0, 10, 100), true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			self := entity.NewInstance("self", 5, 5, 10, 10)
			m := &Mover{Instance: self, Speed: 1, Direction: tt.direction, Bounce: tt.bounce}
			tt.other.Solid = tt.solid

			require.NoError(t, m.collide(self, tt.other))
			assert.InDelta(t, tt.want, m.Direction, 1e-9)
		})
	}
}
