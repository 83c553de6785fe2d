// pkg/render/engo/overlay.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadcollide/pkg/collision"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
	"github.com/opd-ai/go-quadcollide/pkg/render"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

// Z indices of the overlay layers.
const (
	regionZ   = 0
	instanceZ = 1
	contactZ  = 2

	contactSize = 4
)

// drawSink receives the overlay's shapes. *common.RenderSystem satisfies it.
type drawSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// Palette holds the overlay colors.
type Palette struct {
	Region   color.Color
	Solid    color.Color
	NonSolid color.Color
	Contact  color.Color
}

// DefaultPalette returns the overlay's default colors.
func DefaultPalette() Palette {
	return Palette{
		Region:   color.RGBA{90, 90, 90, 255},
		Solid:    color.RGBA{200, 60, 60, 255},
		NonSolid: color.RGBA{60, 160, 220, 255},
		Contact:  color.RGBA{255, 255, 0, 255},
	}
}

type shape struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
}

// OverlaySystem draws a room's quadtree leaves, instances and contacts as
// engo rectangles. Shapes are pooled and hidden rather than removed between
// frames.
type OverlaySystem struct {
	room   *room.Room
	sink   drawSink
	shapes []*shape
	used   int

	ShowTree     bool
	ShowContacts bool
	Palette      Palette
}

var _ render.Renderer = (*OverlaySystem)(nil)

// NewOverlaySystem creates an overlay for r drawing into sink.
func NewOverlaySystem(r *room.Room, sink drawSink) *OverlaySystem {
	return &OverlaySystem{
		room:         r,
		sink:         sink,
		ShowTree:     true,
		ShowContacts: true,
		Palette:      DefaultPalette(),
	}
}

// Remove satisfies the ecs.System interface
func (o *OverlaySystem) Remove(basic ecs.BasicEntity) {
	// Overlay shapes are owned by the overlay.
}

// Update draws the room's current state.
func (o *OverlaySystem) Update(dt float32) {
	o.room.View(func(tree *collision.Tree, instances []*entity.Instance) {
		render.Frame(o, tree, instances)
	})
}

// Clear implements render.Renderer
func (o *OverlaySystem) Clear() {
	o.used = 0
}

// Present implements render.Renderer by hiding the shapes not used this
// frame.
func (o *OverlaySystem) Present() {
	for _, s := range o.shapes[o.used:] {
		s.render.Hidden = true
	}
}

// RenderRegion implements render.Renderer
func (o *OverlaySystem) RenderRegion(region physics.Rect, depth int, leaf bool) {
	if !o.ShowTree || !leaf {
		return
	}
	s := o.next(regionZ)
	s.render.Drawable = common.Rectangle{BorderWidth: 1, BorderColor: o.Palette.Region}
	s.render.Color = color.Transparent
	s.space = spaceOf(region)
}

// RenderInstance implements render.Renderer
func (o *OverlaySystem) RenderInstance(inst *entity.Instance) {
	s := o.next(instanceZ)
	s.render.Drawable = common.Rectangle{}
	s.render.Color = o.Palette.NonSolid
	if inst.Solid {
		s.render.Color = o.Palette.Solid
	}
	s.space = spaceOf(inst.Bounds())
}

// RenderContact implements render.Renderer
func (o *OverlaySystem) RenderContact(contact physics.Contact) {
	if !o.ShowContacts {
		return
	}
	mid := contact.A.Start().Add(contact.A.End()).Scale(0.5)
	s := o.next(contactZ)
	s.render.Drawable = common.Rectangle{}
	s.render.Color = o.Palette.Contact
	s.space = common.SpaceComponent{
		Position: engo.Point{X: float32(mid.X) - contactSize/2, Y: float32(mid.Y) - contactSize/2},
		Width:    contactSize,
		Height:   contactSize,
	}
}

// Visible returns the number of shapes drawn by the last frame.
func (o *OverlaySystem) Visible() int {
	return o.used
}

// next returns a pooled shape, adding a new one to the sink when the pool is
// exhausted.
func (o *OverlaySystem) next(z float32) *shape {
	if o.used == len(o.shapes) {
		s := &shape{basic: ecs.NewBasic()}
		o.shapes = append(o.shapes, s)
		if o.sink != nil {
			o.sink.Add(&s.basic, &s.render, &s.space)
		}
	}
	s := o.shapes[o.used]
	o.used++
	s.render.Hidden = false
	s.render.SetZIndex(z)
	return s
}

func spaceOf(r physics.Rect) common.SpaceComponent {
	return common.SpaceComponent{
		Position: engo.Point{X: float32(r.X), Y: float32(r.Y)},
		Width:    float32(r.Width),
		Height:   float32(r.Height),
	}
}
