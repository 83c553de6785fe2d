// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-quadcollide/pkg/collision"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// Renderer draws the collision debug view.
type Renderer interface {
	Clear()
	Present()
	RenderRegion(region physics.Rect, depth int, leaf bool)
	RenderInstance(inst *entity.Instance)
	RenderContact(contact physics.Contact)
}

// Frame draws one debug frame: the tree's node regions, then the instances,
// then the contacts of the last collision check.
func Frame(r Renderer, tree *collision.Tree, instances []*entity.Instance) {
	r.Clear()
	tree.Draw(r.RenderRegion)
	for _, inst := range instances {
		r.RenderInstance(inst)
	}
	for _, c := range tree.Contacts() {
		r.RenderContact(c)
	}
	r.Present()
}

// NullRenderer is a Renderer that only logs what it is asked to draw.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger,
	}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderRegion implements Renderer.
func (d *NullRenderer) RenderRegion(region physics.Rect, depth int, leaf bool) {
	d.logger.Debug(context.Background(), "RenderRegion called",
		"x", region.X,
		"y", region.Y,
		"size", region.Width,
		"depth", depth,
		"leaf", leaf,
	)
}

// RenderInstance implements Renderer.
func (d *NullRenderer) RenderInstance(inst *entity.Instance) {
	ctx := context.Background()
	if inst == nil {
		d.logger.Debug(ctx, "RenderInstance called with nil instance")
		return
	}
	d.logger.Debug(ctx, "RenderInstance called",
		"instance_id", inst.GetID(),
		"name", inst.Name,
		"x", inst.Position.X,
		"y", inst.Position.Y,
	)
}

// RenderContact implements Renderer.
func (d *NullRenderer) RenderContact(contact physics.Contact) {
	d.logger.Debug(context.Background(), "RenderContact called",
		"a", contact.A,
		"b", contact.B,
	)
}
