// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

// CameraSystem keeps the view on the room, optionally following one
// instance.
type CameraSystem struct {
	room *room.Room

	target    entity.ID
	targetSet bool

	zoom    float32
	minZoom float32
	maxZoom float32

	followSpeed float32
	smoothing   bool

	currentPos physics.Vector2D

	// dispatch sends camera messages; engo.Mailbox.Dispatch by default.
	dispatch func(engo.Message)
}

// NewCameraSystem creates a camera centered on r.
func NewCameraSystem(r *room.Room) *CameraSystem {
	return &CameraSystem{
		room:        r,
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     3.0,
		followSpeed: 2.0,
		smoothing:   true,
		currentPos:  r.Bounds().Center(),
		dispatch: func(msg engo.Message) {
			if engo.Mailbox != nil {
				engo.Mailbox.Dispatch(msg)
			}
		},
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {
	if cs.targetSet && entity.ID(basic.ID()) == cs.target {
		cs.ClearTarget()
	}
}

// Update moves the camera toward its target and applies it.
func (cs *CameraSystem) Update(dt float32) {
	if cs.targetSet {
		inst, ok := cs.room.Get(cs.target)
		if !ok {
			cs.ClearTarget()
		} else {
			cs.follow(inst.Center(), dt)
		}
	}
	cs.apply()
}

func (cs *CameraSystem) follow(target physics.Vector2D, dt float32) {
	if !cs.smoothing {
		cs.currentPos = target
		return
	}
	step := float64(cs.followSpeed * dt)
	if step > 1 {
		step = 1
	}
	cs.currentPos = cs.currentPos.Add(target.Sub(cs.currentPos).Scale(step))
}

func (cs *CameraSystem) apply() {
	cs.dispatch(common.CameraMessage{Axis: common.XAxis, Value: float32(cs.currentPos.X)})
	cs.dispatch(common.CameraMessage{Axis: common.YAxis, Value: float32(cs.currentPos.Y)})
	cs.dispatch(common.CameraMessage{Axis: common.ZAxis, Value: 1 / cs.zoom})
}

// Follow makes the camera track the instance with the given ID.
func (cs *CameraSystem) Follow(id entity.ID) {
	cs.target = id
	cs.targetSet = true
}

// ClearTarget stops following and recenters on the room.
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
	cs.currentPos = cs.room.Bounds().Center()
}

// Target returns the followed instance, if any.
func (cs *CameraSystem) Target() (entity.ID, bool) {
	return cs.target, cs.targetSet
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the room position at the center of the view.
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}
