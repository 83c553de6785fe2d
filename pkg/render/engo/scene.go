// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/event"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

// PopulateFunc fills a freshly created room.
type PopulateFunc func(r *room.Room) error

// ViewerScene shows a live room with its quadtree overlay.
type ViewerScene struct {
	cfg      *config.Config
	populate PopulateFunc
	logger   *logging.Logger

	Room     *room.Room
	Sim      *room.CollisionSystem
	Overlay  *OverlaySystem
	Camera   *CameraSystem
	Controls *ControlSystem
}

// NewViewerScene creates a scene for a room built from cfg. populate may be
// nil.
func NewViewerScene(cfg *config.Config, populate PopulateFunc, logger *logging.Logger) *ViewerScene {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &ViewerScene{
		cfg:      cfg,
		populate: populate,
		logger:   logger,
	}
}

// Type returns the scene type (required by Engo)
func (scene *ViewerScene) Type() string {
	return "ViewerScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *ViewerScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *ViewerScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(color.Black)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	if err := scene.build(world, renderSystem); err != nil {
		panic("failed to populate room: " + err.Error())
	}
	SetupControls()
}

// build creates the room and adds the simulation and overlay systems to
// world.
func (scene *ViewerScene) build(world *ecs.World, sink drawSink) error {
	scene.Room = room.NewRoom(scene.cfg)
	scene.Room.SetLogger(scene.logger)
	if scene.populate != nil {
		if err := scene.populate(scene.Room); err != nil {
			return err
		}
	}
	scene.subscribeToEvents()

	scene.Sim = room.NewCollisionSystem(scene.Room)
	scene.Overlay = NewOverlaySystem(scene.Room, sink)
	scene.Camera = NewCameraSystem(scene.Room)
	scene.Controls = NewControlSystem(scene.Sim, scene.Overlay, scene.Camera)

	world.AddSystem(scene.Controls)
	world.AddSystem(scene.Sim)
	world.AddSystem(scene.Overlay)
	world.AddSystem(scene.Camera)
	return nil
}

func (scene *ViewerScene) subscribeToEvents() {
	ctx := context.Background()
	scene.Room.EventBus.Subscribe(event.OutsideRoom, func(e event.Event) {
		if ie, ok := e.(*event.InstanceEvent); ok {
			scene.logger.Info(ctx, "instance left the room", "name", ie.Name, "x", ie.X, "y", ie.Y)
		}
	})
	scene.Room.EventBus.Subscribe(event.InsertRejected, func(e event.Event) {
		if ie, ok := e.(*event.InstanceEvent); ok {
			scene.logger.Debug(ctx, "instance outside the tree", "name", ie.Name)
		}
	})
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *ViewerScene) Exit() {
	if scene.Room == nil {
		return
	}
	scene.logger.Info(context.Background(), "viewer closed", "ticks", scene.Room.CurrentTick)
}
