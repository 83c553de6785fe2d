// pkg/collision/node.go
package collision

import (
	"sort"

	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// InsertResult reports the outcome of an insert.
type InsertResult int

const (
	// Inserted means the instance is indexed by every leaf it overlaps.
	Inserted InsertResult = iota
	// Rejected means the instance does not overlap the node's region or is
	// unknown to the tree's store.
	Rejected
	// SubdivisionFailed means a leaf at maximum depth took the instance
	// beyond its capacity.
	SubdivisionFailed
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Rejected:
		return "rejected"
	case SubdivisionFailed:
		return "subdivision_failed"
	default:
		return "unknown"
	}
}

// Stored reports whether the instance ended up in the tree.
func (r InsertResult) Stored() bool {
	return r != Rejected
}

// nodeState is either *leaf or *internal. A node holds exactly one of them,
// so a node can never have both references and children.
type nodeState interface {
	isNodeState()
}

// leaf holds borrowed references, ordered by depth descending then ID.
type leaf struct {
	refs []entity.ID
}

// internal owns exactly four children: top-left, top-right, bottom-left,
// bottom-right.
type internal struct {
	children [4]*Node
}

func (*leaf) isNodeState()     {}
func (*internal) isNodeState() {}

// Node is a region of the tree.
type Node struct {
	tree   *Tree
	region physics.Rect
	depth  int
	state  nodeState
}

func newNode(tree *Tree, region physics.Rect, depth int) *Node {
	return &Node{tree: tree, region: region, depth: depth, state: &leaf{}}
}

// Region returns the area covered by the node.
func (n *Node) Region() physics.Rect {
	return n.region
}

// Depth returns the distance from the root.
func (n *Node) Depth() int {
	return n.depth
}

// IsLeaf reports whether the node holds references rather than children.
func (n *Node) IsLeaf() bool {
	_, ok := n.state.(*leaf)
	return ok
}

// Children returns the four children of an internal node.
func (n *Node) Children() ([4]*Node, bool) {
	if in, ok := n.state.(*internal); ok {
		return in.children, true
	}
	return [4]*Node{}, false
}

// Refs returns a copy of a leaf's references in order.
func (n *Node) Refs() []entity.ID {
	if l, ok := n.state.(*leaf); ok {
		return append([]entity.ID(nil), l.refs...)
	}
	return nil
}

// Insert indexes inst in every leaf below n whose region it overlaps.
func (n *Node) Insert(inst *entity.Instance) InsertResult {
	bounds := inst.Bounds()
	if !physics.Overlaps(bounds, n.region) {
		return Rejected
	}

	switch s := n.state.(type) {
	case *leaf:
		id := inst.GetID()
		if s.contains(id) {
			return Inserted
		}
		if _, ok := n.tree.store.Instance(id); !ok {
			return Rejected
		}
		if len(s.refs) < n.tree.capacity {
			s.refs = n.tree.insertSorted(s.refs, id)
			return Inserted
		}
		if n.Divide() {
			return n.Insert(inst)
		}
		s.refs = n.tree.insertSorted(s.refs, id)
		return SubdivisionFailed

	case *internal:
		result := Rejected
		for _, child := range s.children {
			if !physics.Overlaps(bounds, child.region) {
				continue
			}
			switch child.Insert(inst) {
			case SubdivisionFailed:
				result = SubdivisionFailed
			case Inserted:
				if result == Rejected {
					result = Inserted
				}
			}
		}
		return result
	}
	return Rejected
}

// Remove drops id from every leaf below n and returns how many distinct
// instances remain. An internal node whose remaining instances fit in one
// leaf collapses back into a leaf.
func (n *Node) Remove(id entity.ID) int {
	switch s := n.state.(type) {
	case *leaf:
		for i, ref := range s.refs {
			if ref == id {
				s.refs = append(s.refs[:i], s.refs[i+1:]...)
				break
			}
		}
		return len(s.refs)

	case *internal:
		for _, child := range s.children {
			child.Remove(id)
		}
		remaining := len(n.Instances())
		if remaining <= n.tree.capacity {
			n.Combine()
		}
		return remaining
	}
	return 0
}

// Divide turns a leaf into an internal node with four quadrant children and
// redistributes its references. It fails on internal nodes and on leaves
// whose children would lie below the maximum depth. A leaf at depth
// MaxDepth-1 may still divide, so leaves reach depth MaxDepth and only those
// can hold more than the capacity. Stopping at depth+1 >= MaxDepth instead
// would let leaves one level up overflow as well.
// References the store no longer resolves are dropped.
func (n *Node) Divide() bool {
	l, ok := n.state.(*leaf)
	if !ok || n.depth >= n.tree.maxDepth {
		return false
	}

	var in internal
	for i, region := range n.region.Quadrants() {
		in.children[i] = newNode(n.tree, region, n.depth+1)
	}
	n.state = &in

	for _, id := range l.refs {
		inst, ok := n.tree.store.Instance(id)
		if !ok {
			continue
		}
		for _, child := range in.children {
			if physics.Overlaps(inst.Bounds(), child.region) {
				child.Insert(inst)
			}
		}
	}
	return true
}

// Combine collapses the subtree below n into a single leaf when every child
// ends up a leaf and their distinct references fit within capacity.
func (n *Node) Combine() bool {
	in, ok := n.state.(*internal)
	if !ok {
		return false
	}

	for _, child := range in.children {
		child.Combine()
	}

	seen := make(map[entity.ID]struct{})
	var refs []entity.ID
	for _, child := range in.children {
		l, ok := child.state.(*leaf)
		if !ok {
			return false
		}
		for _, id := range l.refs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			refs = append(refs, id)
		}
	}
	if len(refs) > n.tree.capacity {
		return false
	}

	n.tree.sortRefs(refs)
	n.state = &leaf{refs: refs}
	return true
}

// Reset discards children and references and makes n a root leaf over region.
func (n *Node) Reset(region physics.Rect) {
	n.region = region
	n.depth = 0
	n.state = &leaf{}
}

// Instances returns the distinct IDs indexed below n, in sorted order.
func (n *Node) Instances() []entity.ID {
	seen := make(map[entity.ID]struct{})
	var ids []entity.ID
	n.walk(func(node *Node) {
		l, ok := node.state.(*leaf)
		if !ok {
			return
		}
		for _, id := range l.refs {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	})
	n.tree.sortRefs(ids)
	return ids
}

// walk visits n and its descendants in pre-order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	if in, ok := n.state.(*internal); ok {
		for _, child := range in.children {
			child.walk(fn)
		}
	}
}

func (l *leaf) contains(id entity.ID) bool {
	for _, ref := range l.refs {
		if ref == id {
			return true
		}
	}
	return false
}

// less orders references the way leaves keep them. References the store no
// longer knows sort after known ones, by ID.
func (t *Tree) less(a, b entity.ID) bool {
	ia, okA := t.store.Instance(a)
	ib, okB := t.store.Instance(b)
	switch {
	case okA && okB:
		return entity.Less(ia, ib)
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func (t *Tree) sortRefs(refs []entity.ID) {
	sort.SliceStable(refs, func(i, j int) bool {
		return t.less(refs[i], refs[j])
	})
}

func (t *Tree) insertSorted(refs []entity.ID, id entity.ID) []entity.ID {
	i := sort.Search(len(refs), func(i int) bool {
		return t.less(id, refs[i])
	})
	refs = append(refs, 0)
	copy(refs[i+1:], refs[i:])
	refs[i] = id
	return refs
}
