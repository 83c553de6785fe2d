// pkg/render/engo/helpers_test.go
package engo

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/room"
)

// fakeSink stands in for common.RenderSystem, which needs a GL context.
type fakeSink struct {
	added   int
	removed int
}

func (f *fakeSink) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	f.added++
}

func (f *fakeSink) Remove(basic ecs.BasicEntity) {
	f.removed++
}

func newTestRoom(t *testing.T) *room.Room {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Debug = true
	r := room.NewRoom(cfg)
	r.SetLogger(logging.NewNopLogger())
	return r
}

func addInstance(t *testing.T, r *room.Room, name string, x, y, size float64, solid bool) *entity.Instance {
	t.Helper()
	inst := entity.NewInstance(name, x, y, size, size)
	inst.Solid = solid
	if err := r.Add(inst); err != nil {
		t.Fatalf("Add(%s) failed: %v", name, err)
	}
	return inst
}

// recordMessages replaces the camera's dispatcher and returns the messages
// it receives.
func recordMessages(cs *CameraSystem) *[]common.CameraMessage {
	var msgs []common.CameraMessage
	cs.dispatch = func(msg engo.Message) {
		if cm, ok := msg.(common.CameraMessage); ok {
			msgs = append(msgs, cm)
		}
	}
	return &msgs
}
