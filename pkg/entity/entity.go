// pkg/entity/entity.go
package entity

import (
	"sort"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// ID is a unique identifier for an instance
type ID uint64

// AllLayers makes an instance test against every other instance.
const AllLayers = ^uint32(0)

// DefaultGravityDirection points down the screen.
const DefaultGravityDirection = 270.0

// CollisionFunc is invoked with (self, other) on a confirmed collision.
type CollisionFunc func(self, other *Instance) error

// Instance is the collision record of a single entity in a room. Its position
// fields are the single source of truth; the mask's absolute placement is
// always derived from them.
type Instance struct {
	ecs.BasicEntity

	Name     string
	Position physics.Vector2D
	Previous physics.Vector2D
	Start    physics.Vector2D
	Width    float64
	Height   float64
	Mask     *physics.Mask
	Depth    int
	Solid    bool

	// Layer is the set of layers this instance belongs to and CollidesWith
	// the set it tests against. Both sides must accept each other.
	Layer        uint32
	CollidesWith uint32

	OnCollision CollisionFunc

	friction         float64
	gravity          float64
	gravityDirection float64

	velocity []Motion
	history  []Motion
	proposal *Proposal
}

// NewInstance creates an instance at (x, y) whose mask is the rectangle of
// its width and height.
func NewInstance(name string, x, y, width, height float64) *Instance {
	pos := physics.Vector2D{X: x, Y: y}
	return &Instance{
		BasicEntity:      ecs.NewBasic(),
		Name:             name,
		Position:         pos,
		Previous:         pos,
		Start:            pos,
		Width:            width,
		Height:           height,
		Mask:             physics.NewRectMask(width, height),
		Layer:            1,
		CollidesWith:     AllLayers,
		gravityDirection: DefaultGravityDirection,
	}
}

// GetID returns the instance's unique identifier
func (i *Instance) GetID() ID {
	return ID(i.BasicEntity.ID())
}

// Body returns the instance's collidable shape at its current position.
func (i *Instance) Body() physics.Body {
	return i.BodyAt(i.Position)
}

// BodyAt returns the instance's collidable shape placed at pos.
func (i *Instance) BodyAt(pos physics.Vector2D) physics.Body {
	return physics.Body{Position: pos, Width: i.Width, Height: i.Height, Mask: i.Mask}
}

// Bounds returns the bounding rectangle at the current position.
func (i *Instance) Bounds() physics.Rect {
	return i.Body().Bounds()
}

// Center returns the center of the bounding rectangle.
func (i *Instance) Center() physics.Vector2D {
	return i.Bounds().Center()
}

// SetPosition places the instance without queuing any motion.
func (i *Instance) SetPosition(x, y float64) {
	i.Position = physics.Vector2D{X: x, Y: y}
}

// Moved reports whether the instance changed position this step.
func (i *Instance) Moved() bool {
	return i.Position != i.Previous
}

// CanCollideWith reports whether the layers of both instances accept each other.
func (i *Instance) CanCollideWith(other *Instance) bool {
	return i.CollidesWith&other.Layer != 0 && other.CollidesWith&i.Layer != 0
}

// Collide invokes the collision callback, if any.
func (i *Instance) Collide(other *Instance) error {
	if i.OnCollision == nil {
		return nil
	}
	return i.OnCollision(i, other)
}

// Less orders instances by depth descending, then by ID so the order is
// deterministic.
func Less(a, b *Instance) bool {
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.GetID() < b.GetID()
}

// SortInstances sorts instances in draw and resolution order.
func SortInstances(instances []*Instance) {
	sort.SliceStable(instances, func(x, y int) bool {
		return Less(instances[x], instances[y])
	})
}
