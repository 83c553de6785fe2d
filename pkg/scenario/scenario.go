// Package scenario builds sample rooms: walls around the edge and movers that
// travel at a constant speed, bouncing off solid instances.
package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/event"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

const (
	// WallThickness is the thickness of the walls AddWalls builds.
	WallThickness = 16.0

	placementAttempts = 20
	wrapMargin        = 0
)

// Mover is an instance that requests the same motion every step.
type Mover struct {
	Instance  *entity.Instance
	Speed     float64
	Direction float64
	// Bounce reflects Direction when the mover hits a solid instance.
	Bounce bool
}

// Scenario drives the movers of one room.
type Scenario struct {
	Room   *room.Room
	movers map[entity.ID]*Mover
	order  []*Mover
	subs   []*event.Subscription
}

// New creates an empty scenario for r.
func New(r *room.Room) *Scenario {
	return &Scenario{
		Room:   r,
		movers: make(map[entity.ID]*Mover),
	}
}

// Movers returns the movers in creation order.
func (s *Scenario) Movers() []*Mover {
	return append([]*Mover(nil), s.order...)
}

// AddWalls surrounds the room with four solid walls.
func (s *Scenario) AddWalls() error {
	b := s.Room.Bounds()
	walls := []struct {
		name       string
		x, y, w, h float64
	}{
		{"wall-top", 0, 0, b.Width, WallThickness},
		{"wall-bottom", 0, b.Height - WallThickness, b.Width, WallThickness},
		{"wall-left", 0, WallThickness, WallThickness, b.Height - 2*WallThickness},
		{"wall-right", b.Width - WallThickness, WallThickness, WallThickness, b.Height - 2*WallThickness},
	}
	for _, w := range walls {
		inst := entity.NewInstance(w.name, w.x, w.y, w.w, w.h)
		inst.Solid = true
		if err := s.Room.Add(inst); err != nil {
			return fmt.Errorf("failed to add %s: %w", w.name, err)
		}
	}
	return nil
}

// AddMover adds a square mover of the given size.
func (s *Scenario) AddMover(name string, x, y, size, speed, direction float64, solid bool) (*Mover, error) {
	inst := entity.NewInstance(name, x, y, size, size)
	inst.Solid = solid
	m := &Mover{Instance: inst, Speed: speed, Direction: physics.AbsoluteAngle(direction), Bounce: solid}
	inst.OnCollision = m.collide
	if err := s.Room.Add(inst); err != nil {
		return nil, err
	}
	s.movers[inst.GetID()] = m
	s.order = append(s.order, m)
	return m, nil
}

// Populate adds n movers at random empty places inside the walls. Every
// fourth mover is a non-solid ghost that passes through everything and wraps
// around the room.
func (s *Scenario) Populate(n int, rng *rand.Rand) error {
	b := s.Room.Bounds()
	for i := 0; i < n; i++ {
		size := 8 + rng.Float64()*16
		speed := 1 + rng.Float64()*3
		direction := rng.Float64() * 360
		solid := i%4 != 3

		candidate := entity.NewInstance("candidate", 0, 0, size, size)
		var pos physics.Vector2D
		placed := false
		for attempt := 0; attempt < placementAttempts && !placed; attempt++ {
			pos = physics.Vector2D{
				X: WallThickness + rng.Float64()*(b.Width-2*WallThickness-size),
				Y: WallThickness + rng.Float64()*(b.Height-2*WallThickness-size),
			}
			placed = s.Room.IsPlaceEmpty(candidate, pos)
		}
		if !placed {
			return fmt.Errorf("no empty place for mover %d after %d attempts", i, placementAttempts)
		}

		name := fmt.Sprintf("mover-%d", i)
		if !solid {
			name = fmt.Sprintf("ghost-%d", i)
		}
		if _, err := s.AddMover(name, pos.X, pos.Y, size, speed, direction, solid); err != nil {
			return err
		}
	}
	return nil
}

// Drive queues every mover's motion for the next step.
func (s *Scenario) Drive() {
	for _, m := range s.order {
		m.Instance.Move(m.Speed, m.Direction)
	}
}

// Attach makes the scenario drive itself: movers are driven after every
// step, and ghosts that leave the room wrap around to the other side.
func (s *Scenario) Attach() {
	s.Detach()
	s.Drive()
	s.subs = append(s.subs,
		s.Room.EventBus.Subscribe(event.StepCompleted, func(event.Event) {
			s.Drive()
		}),
		s.Room.EventBus.Subscribe(event.InstanceDestroyed, func(e event.Event) {
			if ie, ok := e.(*event.InstanceEvent); ok {
				s.forget(entity.ID(ie.InstanceID))
			}
		}),
		s.Room.EventBus.Subscribe(event.OutsideRoom, func(e event.Event) {
			ie, ok := e.(*event.InstanceEvent)
			if !ok {
				return
			}
			if m, ok := s.movers[entity.ID(ie.InstanceID)]; ok && !m.Instance.Solid {
				s.Room.MoveWrap(m.Instance, true, true, wrapMargin)
			}
		}),
	)
}

// Detach stops automatic driving.
func (s *Scenario) Detach() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

func (s *Scenario) forget(id entity.ID) {
	if _, ok := s.movers[id]; !ok {
		return
	}
	delete(s.movers, id)
	for i, m := range s.order {
		if m.Instance.GetID() == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// collide bounces the mover off solid obstacles. The side that was hit is
// taken from the axis along which the two centers are further apart,
// relative to the combined extent on that axis.
func (m *Mover) collide(self, other *entity.Instance) error {
	if !m.Bounce || !other.Solid {
		return nil
	}
	d := self.Center().Sub(other.Center())
	nx := math.Abs(d.X) / (self.Width + other.Width)
	ny := math.Abs(d.Y) / (self.Height + other.Height)
	if nx > ny {
		m.Direction = physics.AngleHBounce(m.Direction)
	} else {
		m.Direction = physics.AngleVBounce(m.Direction)
	}
	return nil
}
