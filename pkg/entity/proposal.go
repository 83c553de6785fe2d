package entity

import (
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// Proposal is a resolved position waiting to be committed once every
// colliding pair of the step has been processed.
type Proposal struct {
	Position physics.Vector2D
	History  []Motion
}

// Propose records a resolved position. When several collisions resolve the
// same instance in one step, the proposal travelling the least from the
// previous position wins.
func (i *Instance) Propose(p Proposal) {
	if i.proposal != nil &&
		i.Previous.Distance(i.proposal.Position) <= i.Previous.Distance(p.Position) {
		return
	}
	i.proposal = &p
}

// Proposal returns the pending proposal, if any.
func (i *Instance) Proposal() (Proposal, bool) {
	if i.proposal == nil {
		return Proposal{}, false
	}
	return *i.proposal, true
}

// Commit moves the instance to its pending proposal and reports whether
// there was one.
func (i *Instance) Commit() bool {
	if i.proposal == nil {
		return false
	}
	i.Position = i.proposal.Position
	i.history = i.proposal.History
	i.proposal = nil
	return true
}
