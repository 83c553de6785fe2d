// pkg/render/engo/controls.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-quadcollide/pkg/room"
)

// Button names registered by SetupControls.
const (
	ButtonPause     = "pause"
	ButtonStep      = "step"
	ButtonTree      = "tree"
	ButtonContacts  = "contacts"
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
	ButtonResetZoom = "resetZoom"
)

var buttons = []string{
	ButtonPause, ButtonStep, ButtonTree, ButtonContacts,
	ButtonZoomIn, ButtonZoomOut, ButtonResetZoom,
}

// ControlSystem maps keyboard input onto the simulation and overlay.
type ControlSystem struct {
	sim     *room.CollisionSystem
	overlay *OverlaySystem
	camera  *CameraSystem

	// pressed reports whether a button was pressed this frame.
	pressed func(name string) bool
}

// NewControlSystem creates a control system. Any of overlay and camera may
// be nil.
func NewControlSystem(sim *room.CollisionSystem, overlay *OverlaySystem, camera *CameraSystem) *ControlSystem {
	return &ControlSystem{
		sim:     sim,
		overlay: overlay,
		camera:  camera,
		pressed: func(name string) bool {
			return engo.Input.Button(name).JustPressed()
		},
	}
}

// SetupControls registers the viewer's key bindings.
func SetupControls() {
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonStep, engo.KeyN)
	engo.Input.RegisterButton(ButtonTree, engo.KeyT)
	engo.Input.RegisterButton(ButtonContacts, engo.KeyC)
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyE)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyQ)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyR)
}

// Remove satisfies the ecs.System interface
func (cs *ControlSystem) Remove(basic ecs.BasicEntity) {
	// Not used for control system
}

// Update applies every button pressed this frame.
func (cs *ControlSystem) Update(dt float32) {
	for _, name := range buttons {
		if cs.pressed(name) {
			cs.Apply(name)
		}
	}
}

// Apply performs the action bound to the named button.
func (cs *ControlSystem) Apply(name string) {
	switch name {
	case ButtonPause:
		cs.sim.Paused = !cs.sim.Paused
	case ButtonStep:
		cs.sim.Paused = true
		cs.sim.StepOnce()
	case ButtonTree:
		if cs.overlay != nil {
			cs.overlay.ShowTree = !cs.overlay.ShowTree
		}
	case ButtonContacts:
		if cs.overlay != nil {
			cs.overlay.ShowContacts = !cs.overlay.ShowContacts
		}
	case ButtonZoomIn:
		if cs.camera != nil {
			cs.camera.SetZoom(cs.camera.GetZoom() * 1.25)
		}
	case ButtonZoomOut:
		if cs.camera != nil {
			cs.camera.SetZoom(cs.camera.GetZoom() / 1.25)
		}
	case ButtonResetZoom:
		if cs.camera != nil {
			cs.camera.SetZoom(1.0)
		}
	}
}
