package collision

import (
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// DefaultSettlePasses is the number of times Settle resolves an overlap again
// before falling back to previous positions.
const DefaultSettlePasses = 4

type overlap struct {
	a, b *entity.Instance
}

// Settle clears overlaps between solid instances that only appear once
// proposals have been committed. CheckCollisions resolves each pair against
// the other instance's attempted position, so an instance held back by one
// collision can end up where a neighbour has already moved.
//
// adjusted holds the instances whose proposals were committed this step and
// all every instance of the room. A pair that was apart at its previous
// positions but meets now is resolved again, each moving side against the
// committed position of the other. After SettlePasses rounds the moving
// sides of any remaining pair go back to their previous positions, where the
// pair is known to be apart, so Settle always terminates. It returns the
// instances it moved, in the order they were first moved.
func (r *Resolver) Settle(adjusted, all []*entity.Instance) []*entity.Instance {
	passes := r.SettlePasses
	if passes <= 0 {
		passes = DefaultSettlePasses
	}

	var moved []*entity.Instance
	seen := make(map[entity.ID]bool)
	pending := adjusted
	for pass := 0; len(pending) > 0; pass++ {
		overlaps := newOverlaps(pending, all)
		if len(overlaps) == 0 {
			break
		}

		var touched []*entity.Instance
		queued := make(map[entity.ID]bool)
		for _, o := range overlaps {
			for _, side := range [2][2]*entity.Instance{{o.a, o.b}, {o.b, o.a}} {
				self, other := side[0], side[1]
				if !self.Moved() {
					continue
				}
				if pass < passes {
					r.Resolve(self, other)
				} else {
					self.Propose(entity.Proposal{Position: self.Previous})
				}
				if !queued[self.GetID()] {
					queued[self.GetID()] = true
					touched = append(touched, self)
				}
			}
		}

		for _, inst := range touched {
			inst.Commit()
			if !seen[inst.GetID()] {
				seen[inst.GetID()] = true
				moved = append(moved, inst)
			}
		}
		pending = touched
	}
	return moved
}

// newOverlaps returns the solid pairs with at least one side in pending that
// meet at their current positions but not at their previous ones.
func newOverlaps(pending, all []*entity.Instance) []overlap {
	var found []overlap
	checked := make(map[pairKey]struct{})
	for _, a := range pending {
		if !a.Solid {
			continue
		}
		for _, b := range all {
			if a == b || !b.Solid || !a.CanCollideWith(b) {
				continue
			}
			key := makePairKey(a.GetID(), b.GetID())
			if _, done := checked[key]; done {
				continue
			}
			checked[key] = struct{}{}

			if !a.Moved() && !b.Moved() {
				continue
			}
			if !physics.Collides(a.Body(), b.Body()) {
				continue
			}
			if physics.Collides(a.BodyAt(a.Previous), b.BodyAt(b.Previous)) {
				continue
			}
			found = append(found, overlap{a: a, b: b})
		}
	}
	return found
}
