package collision

import (
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// Store resolves the instance references held by the tree. The tree never
// owns instances; whoever implements Store does.
type Store interface {
	Instance(id entity.ID) (*entity.Instance, bool)
}

// PlaceChecker answers whether an instance could stand at a position without
// meeting any solid instance other than itself.
type PlaceChecker interface {
	IsPlaceFree(inst *entity.Instance, pos physics.Vector2D) bool
}

// HandlerFunc is notified of a confirmed collision, once per direction.
type HandlerFunc func(self, other *entity.Instance)

// MapStore is a Store backed by a map, for callers without a room.
type MapStore map[entity.ID]*entity.Instance

// Add registers instances with the store.
func (s MapStore) Add(instances ...*entity.Instance) {
	for _, inst := range instances {
		s[inst.GetID()] = inst
	}
}

// Instance implements Store.
func (s MapStore) Instance(id entity.ID) (*entity.Instance, bool) {
	inst, ok := s[id]
	return inst, ok
}

// IsPlaceFree implements PlaceChecker against the solid instances in the store.
func (s MapStore) IsPlaceFree(inst *entity.Instance, pos physics.Vector2D) bool {
	body := inst.BodyAt(pos)
	for id, other := range s {
		if id == inst.GetID() || !other.Solid || !inst.CanCollideWith(other) {
			continue
		}
		if physics.Collides(body, other.Body()) {
			return false
		}
	}
	return true
}
