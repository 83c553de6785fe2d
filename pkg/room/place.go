package room

import (
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// IsPlaceFree reports whether inst could stand at pos without meeting a
// solid instance it collides with.
func (r *Room) IsPlaceFree(inst *entity.Instance, pos physics.Vector2D) bool {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	return r.isPlaceFree(inst, pos)
}

// IsPlaceEmpty reports whether inst could stand at pos without meeting any
// other instance at all.
func (r *Room) IsPlaceEmpty(inst *entity.Instance, pos physics.Vector2D) bool {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	return !r.meets(inst, pos, func(*entity.Instance) bool { return true })
}

// IsPlaceMeeting reports whether inst at pos would meet an instance accepted
// by match.
func (r *Room) IsPlaceMeeting(inst *entity.Instance, pos physics.Vector2D, match func(*entity.Instance) bool) bool {
	r.EntityLock.RLock()
	defer r.EntityLock.RUnlock()
	return r.meets(inst, pos, match)
}

// IsMoveFree reports whether moving inst by magnitude in direction would end
// at a free place.
func (r *Room) IsMoveFree(inst *entity.Instance, magnitude, direction float64) bool {
	return r.IsPlaceFree(inst, inst.Position.Add(physics.FromDirection(direction, magnitude)))
}

// MoveWrap moves inst to the opposite side of the room once it is further
// than margin outside an edge.
func (r *Room) MoveWrap(inst *entity.Instance, horizontal, vertical bool, margin float64) {
	w, h := r.Config.Room.Width, r.Config.Room.Height

	r.EntityLock.Lock()
	defer r.EntityLock.Unlock()

	pos := inst.Position
	if horizontal {
		pos.X = wrap(pos.X, inst.Width, w, margin)
	}
	if vertical {
		pos.Y = wrap(pos.Y, inst.Height, h, margin)
	}
	inst.Position = pos
}

// wrap maps a coordinate that left [-margin-size, extent+margin] back onto
// the far side.
func wrap(v, size, extent, margin float64) float64 {
	span := extent + size + 2*margin
	switch {
	case v < -margin-size:
		return v + span
	case v > extent+margin:
		return v - span
	}
	return v
}

func (r *Room) isPlaceFree(inst *entity.Instance, pos physics.Vector2D) bool {
	return !r.meets(inst, pos, func(other *entity.Instance) bool {
		return other.Solid && inst.CanCollideWith(other)
	})
}

func (r *Room) meets(inst *entity.Instance, pos physics.Vector2D, match func(*entity.Instance) bool) bool {
	body := inst.BodyAt(pos)
	for id, other := range r.instances {
		if id == inst.GetID() || !match(other) {
			continue
		}
		if physics.Collides(body, other.Body()) {
			return true
		}
	}
	return false
}

// placeChecker serves the resolver while the room lock is held.
type placeChecker struct {
	r *Room
}

func (p placeChecker) IsPlaceFree(inst *entity.Instance, pos physics.Vector2D) bool {
	return p.r.isPlaceFree(inst, pos)
}
