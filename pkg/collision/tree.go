// Package collision implements the broad phase and collision response of the
// engine: a quadtree indexing instances by their bounding rectangles, the
// per-step pair check that runs the polygon narrow phase, and the resolver
// that moves solid instances apart.
package collision

import (
	"context"
	"fmt"
	"strings"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

const (
	// DefaultMaxDepth bounds the tree at 4^8 leaves.
	DefaultMaxDepth = 8
	// DefaultCapacity is the number of references a leaf holds before it
	// divides.
	DefaultCapacity = 8
)

// Settings configures a Tree.
type Settings struct {
	MaxDepth int
	Capacity int
	// Debug validates the tree after every mutation and panics when an
	// invariant is broken.
	Debug  bool
	Logger *logging.Logger
}

// DefaultSettings returns the standard tree limits.
func DefaultSettings() Settings {
	return Settings{MaxDepth: DefaultMaxDepth, Capacity: DefaultCapacity}
}

// Tree is a quadtree over a square region. It references instances by ID and
// is meant to be rebuilt every step.
type Tree struct {
	root     *Node
	store    Store
	maxDepth int
	capacity int
	debug    bool
	logger   *logging.Logger
	contacts []physics.Contact
}

// NewTree creates an empty tree over region. Non-positive limits fall back to
// the defaults.
func NewTree(store Store, region physics.Rect, settings Settings) *Tree {
	if settings.MaxDepth <= 0 {
		settings.MaxDepth = DefaultMaxDepth
	}
	if settings.Capacity <= 0 {
		settings.Capacity = DefaultCapacity
	}
	if settings.Logger == nil {
		settings.Logger = logging.NewLogger()
	}

	t := &Tree{
		store:    store,
		maxDepth: settings.MaxDepth,
		capacity: settings.Capacity,
		debug:    settings.Debug,
		logger:   settings.Logger,
	}
	t.root = newNode(t, region, 0)
	return t
}

// SquareRegion returns the square anchored at the origin that covers a room
// of the given size.
func SquareRegion(width, height float64) physics.Rect {
	side := max(width, height)
	return physics.Rect{Width: side, Height: side}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// MaxDepth returns the depth at which leaves stop dividing.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Capacity returns the number of references a leaf holds before dividing.
func (t *Tree) Capacity() int {
	return t.capacity
}

// Reset empties the tree and sets its region.
func (t *Tree) Reset(region physics.Rect) {
	t.root.Reset(region)
	t.contacts = t.contacts[:0]
	t.check()
}

// Insert indexes inst, which must be known to the tree's store. A rejected
// insert is logged once per calling site.
func (t *Tree) Insert(ctx context.Context, inst *entity.Instance) InsertResult {
	if _, ok := t.store.Instance(inst.GetID()); !ok {
		t.logger.WarnOnce(ctx, logging.CallSite(1), "instance not in store",
			"instance", inst.GetID(),
			"name", inst.Name,
		)
		return Rejected
	}

	result := t.root.Insert(inst)
	if result == Rejected {
		t.logger.WarnOnce(ctx, logging.CallSite(1), "instance outside tree region",
			"instance", inst.GetID(),
			"name", inst.Name,
			"bounds", inst.Bounds(),
			"region", t.root.region,
		)
	}
	t.check()
	return result
}

// Remove drops inst from the tree and returns the number of distinct
// instances left.
func (t *Tree) Remove(inst *entity.Instance) int {
	remaining := t.root.Remove(inst.GetID())
	t.check()
	return remaining
}

// Instances returns every distinct instance in the tree, in depth order.
func (t *Tree) Instances() []*entity.Instance {
	ids := t.root.Instances()
	instances := make([]*entity.Instance, 0, len(ids))
	for _, id := range ids {
		if inst, ok := t.store.Instance(id); ok {
			instances = append(instances, inst)
		}
	}
	return instances
}

// Len returns the number of distinct instances in the tree.
func (t *Tree) Len() int {
	return len(t.root.Instances())
}

// Contacts returns the segment intersections found by the last
// CheckCollisions run in ReportAllOverlaps mode.
func (t *Tree) Contacts() []physics.Contact {
	return append([]physics.Contact(nil), t.contacts...)
}

// DrawFunc receives each node's region during Draw.
type DrawFunc func(region physics.Rect, depth int, leaf bool)

// Draw visits every node in pre-order.
func (t *Tree) Draw(fn DrawFunc) {
	t.root.walk(func(n *Node) {
		fn(n.region, n.depth, n.IsLeaf())
	})
}

// Validate checks the structural invariants of every node.
func (t *Tree) Validate() error {
	var err error
	t.root.walk(func(n *Node) {
		if err == nil {
			err = t.validateNode(n)
		}
	})
	return err
}

func (t *Tree) validateNode(n *Node) error {
	if n.depth > t.maxDepth {
		return fmt.Errorf("node %v: depth %d exceeds max depth %d", n.region, n.depth, t.maxDepth)
	}

	switch s := n.state.(type) {
	case *leaf:
		if s == nil {
			return fmt.Errorf("node %v: nil leaf state", n.region)
		}
		if n.depth < t.maxDepth && len(s.refs) > t.capacity {
			return fmt.Errorf("node %v: leaf at depth %d holds %d references, capacity %d",
				n.region, n.depth, len(s.refs), t.capacity)
		}
		seen := make(map[entity.ID]struct{}, len(s.refs))
		for _, id := range s.refs {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("node %v: duplicate reference %d", n.region, id)
			}
			seen[id] = struct{}{}
		}
	case *internal:
		if s == nil {
			return fmt.Errorf("node %v: nil internal state", n.region)
		}
		quadrants := n.region.Quadrants()
		for i, child := range s.children {
			if child == nil {
				return fmt.Errorf("node %v: missing child %d", n.region, i)
			}
			if child.depth != n.depth+1 {
				return fmt.Errorf("node %v: child %d at depth %d, expected %d",
					n.region, i, child.depth, n.depth+1)
			}
			if child.region != quadrants[i] {
				return fmt.Errorf("node %v: child %d covers %v, expected %v",
					n.region, i, child.region, quadrants[i])
			}
		}
	default:
		return fmt.Errorf("node %v: no state", n.region)
	}
	return nil
}

// check panics on a broken invariant when the tree runs in debug mode.
func (t *Tree) check() {
	if !t.debug {
		return
	}
	if err := t.Validate(); err != nil {
		panic(logging.WrapError(err, "quadtree invariant violated"))
	}
}

// String prints the node hierarchy, one node per line.
func (t *Tree) String() string {
	var b strings.Builder
	t.root.walk(func(n *Node) {
		b.WriteString(strings.Repeat("  ", n.depth))
		r := n.region
		fmt.Fprintf(&b, "[%g,%g %gx%g] depth=%d", r.X, r.Y, r.Width, r.Height, n.depth)
		if l, ok := n.state.(*leaf); ok {
			fmt.Fprintf(&b, " leaf refs=%v\n", l.refs)
		} else {
			b.WriteString(" internal\n")
		}
	})
	return b.String()
}
