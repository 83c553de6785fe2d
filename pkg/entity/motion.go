package entity

import (
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// Motion is a movement request of a magnitude in a direction in degrees.
type Motion struct {
	Magnitude float64
	Direction float64
}

// Vector returns the displacement the motion describes.
func (m Motion) Vector() physics.Vector2D {
	return physics.FromDirection(m.Direction, m.Magnitude)
}

func normalizeMotion(magnitude, direction float64) Motion {
	if magnitude < 0 {
		magnitude = -magnitude
		direction -= 180
	}
	return Motion{Magnitude: magnitude, Direction: physics.AbsoluteAngle(direction)}
}

// Move queues a movement request for the next step.
func (i *Instance) Move(magnitude, direction float64) {
	if magnitude == 0 {
		return
	}
	i.velocity = append(i.velocity, normalizeMotion(magnitude, direction))
}

// MoveTo queues a movement towards the given point, never overshooting it.
func (i *Instance) MoveTo(magnitude, x, y float64) {
	target := physics.Vector2D{X: x, Y: y}
	dist := i.Position.Distance(target)
	if dist == 0 {
		return
	}
	i.Move(min(magnitude, dist), physics.DirectionOf(i.Position, target))
}

// MoveAway queues a movement directly away from the given point.
func (i *Instance) MoveAway(magnitude, x, y float64) {
	i.Move(magnitude, physics.DirectionOf(i.Position, physics.Vector2D{X: x, Y: y})+180)
}

// Velocity returns the movement requests queued for the next step.
func (i *Instance) Velocity() []Motion {
	return append([]Motion(nil), i.velocity...)
}

// History returns the motions applied during the current step.
func (i *Instance) History() []Motion {
	return append([]Motion(nil), i.history...)
}

// SetFriction sets the amount subtracted from each queued motion per step.
func (i *Instance) SetFriction(friction float64) {
	i.friction = friction
}

// Friction returns the instance's friction.
func (i *Instance) Friction() float64 {
	return i.friction
}

// SetGravity sets the magnitude of the gravity motion added every step.
func (i *Instance) SetGravity(gravity float64) {
	i.gravity = gravity
}

// Gravity returns the instance's gravity magnitude.
func (i *Instance) Gravity() float64 {
	return i.gravity
}

// SetGravityDirection sets the direction of gravity in degrees.
func (i *Instance) SetGravityDirection(direction float64) {
	i.gravityDirection = physics.AbsoluteAngle(direction)
}

// GravityDirection returns the direction of gravity in degrees.
func (i *Instance) GravityDirection() float64 {
	return i.gravityDirection
}

// Motion returns the combined displacement of all queued requests.
func (i *Instance) Motion() physics.Vector2D {
	var sum physics.Vector2D
	for _, m := range i.velocity {
		sum = sum.Add(m.Vector())
	}
	return sum
}

// Speed returns the length of the combined queued motion.
func (i *Instance) Speed() float64 {
	return i.Motion().Length()
}

// Direction returns the direction of the combined queued motion.
func (i *Instance) Direction() float64 {
	return i.Motion().Direction()
}

// ApplyMotion condenses the queued motion, friction and gravity into a single
// step. The previous position is recorded first, and the applied motions are
// kept as history for collision resolution.
func (i *Instance) ApplyMotion() {
	i.Previous = i.Position
	i.proposal = nil

	applied := make([]Motion, 0, len(i.velocity)+1)
	for _, m := range i.velocity {
		m.Magnitude -= i.friction
		if m.Magnitude <= 0 {
			continue
		}
		applied = append(applied, m)
	}
	if i.gravity != 0 {
		applied = append(applied, normalizeMotion(i.gravity, i.gravityDirection))
	}

	for _, m := range applied {
		i.Position = i.Position.Add(m.Vector())
	}

	i.history = applied
	i.velocity = nil
}
