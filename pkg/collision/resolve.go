// pkg/collision/resolve.go
package collision

import (
	"math"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

const (
	DefaultOutsideSteps = 10
	DefaultSweepStep    = 5.0
	DefaultSweepRange   = 180.0

	// residualEpsilon is the smallest leftover magnitude worth sweeping.
	residualEpsilon = 1e-9
)

// Resolver moves a solid instance out of another one along the path it took
// this step, then slides the unspent part of each movement around the
// obstacle.
type Resolver struct {
	// OutsideSteps is the number of samples taken along a blocked movement.
	OutsideSteps int
	// SweepStep is the angular increment, in degrees, between slide
	// directions.
	SweepStep float64
	// SweepRange is how far, in degrees, the slide may turn away from the
	// original direction.
	SweepRange float64
	// SettlePasses is the number of rounds Settle resolves again before
	// sending overlapping instances back to their previous positions.
	SettlePasses int
	// Places vetoes slide targets that meet other solid instances. Nil
	// accepts every target.
	Places PlaceChecker
}

// NewResolver creates a Resolver with the default sampling.
func NewResolver(places PlaceChecker) *Resolver {
	return &Resolver{
		OutsideSteps: DefaultOutsideSteps,
		SweepStep:    DefaultSweepStep,
		SweepRange:   DefaultSweepRange,
		SettlePasses: DefaultSettlePasses,
		Places:       places,
	}
}

// Resolve replays self's movement for this step from its previous position
// against other, proposing the furthest position that keeps the two apart.
// Every movement entry is cut down to the distance actually travelled. The
// positions of both instances are read, never written; the result is left
// as a proposal on self. Resolve reports whether a proposal was made.
func (r *Resolver) Resolve(self, other *entity.Instance) bool {
	if !self.Moved() {
		return false
	}

	history := self.History()
	if len(history) == 0 {
		history = []entity.Motion{{
			Magnitude: self.Previous.Distance(self.Position),
			Direction: physics.DirectionOf(self.Previous, self.Position),
		}}
	}

	obstacle := other.Body()
	pos := self.Previous
	resolved := make([]entity.Motion, 0, len(history))
	for _, m := range history {
		from := pos
		target := from.Add(m.Vector())
		if !physics.Collides(self.BodyAt(target), obstacle) {
			pos = target
		} else {
			pos = r.MoveOutside(self, from, target, obstacle)
			if remaining := m.Magnitude - from.Distance(pos); remaining > residualEpsilon {
				if slid, ok := r.Sweep(self, pos, m.Direction, remaining, obstacle); ok {
					pos = slid
				}
			}
		}
		resolved = append(resolved, entity.Motion{
			Magnitude: from.Distance(pos),
			Direction: m.Direction,
		})
	}

	self.Propose(entity.Proposal{Position: pos, History: resolved})
	return true
}

// MoveOutside walks from from towards to in equal fractions and returns the
// last sample at which self does not meet obstacle. It returns from when the
// first sample already collides.
func (r *Resolver) MoveOutside(self *entity.Instance, from, to physics.Vector2D, obstacle physics.Body) physics.Vector2D {
	steps := r.OutsideSteps
	if steps <= 0 {
		steps = DefaultOutsideSteps
	}

	delta := to.Sub(from)
	safe := from
	for k := 1; k <= steps; k++ {
		sample := from.Add(delta.Scale(float64(k) / float64(steps)))
		if physics.Collides(self.BodyAt(sample), obstacle) {
			break
		}
		safe = sample
	}
	return safe
}

// Sweep looks for a direction, turning away from direction in SweepStep
// increments, in which self can move magnitude from pos without meeting
// obstacle or any solid instance known to Places. The turn goes away from
// the side the obstacle lies on; an obstacle dead ahead turns towards
// increasing angle. The original direction itself is not retried.
func (r *Resolver) Sweep(self *entity.Instance, pos physics.Vector2D, direction, magnitude float64, obstacle physics.Body) (physics.Vector2D, bool) {
	step := r.SweepStep
	if step <= 0 {
		step = DefaultSweepStep
	}
	sweepRange := r.SweepRange
	if sweepRange <= 0 {
		sweepRange = DefaultSweepRange
	}

	sign := sweepSign(self.BodyAt(pos).Center(), obstacle.Center(), direction)
	n := int(math.Floor(sweepRange/step + 1e-9))
	for k := 1; k <= n; k++ {
		angle := physics.AbsoluteAngle(direction + sign*float64(k)*step)
		candidate := pos.Add(physics.FromDirection(angle, magnitude))
		if physics.Collides(self.BodyAt(candidate), obstacle) {
			continue
		}
		if r.Places != nil && !r.Places.IsPlaceFree(self, candidate) {
			continue
		}
		return candidate, true
	}
	return pos, false
}

// sweepSign returns +1 to turn towards increasing angle and -1 otherwise,
// choosing the side away from the obstacle.
func sweepSign(self, obstacle physics.Vector2D, direction float64) float64 {
	v := physics.FromDirection(direction, 1)
	if v.Cross(obstacle.Sub(self)) < 0 {
		return -1
	}
	return 1
}
