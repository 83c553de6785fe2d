package collision

import (
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/physics"
)

// Stats summarizes one CheckCollisions run.
type Stats struct {
	// Pairs is the number of distinct pairs sent to the narrow phase.
	Pairs int
	// Collisions is the number of pairs whose shapes intersect.
	Collisions int
	// Resolved is the number of instances given a proposed position.
	Resolved int
}

type pairKey struct {
	lo, hi entity.ID
}

func makePairKey(a, b entity.ID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// CheckCollisions tests every pair of instances sharing a leaf. Each unordered
// pair is tested once per call even when both instances straddle several
// leaves. When both instances of a colliding pair are solid, resolver
// proposes new positions for the ones that moved; handler is then called for
// each side. Proposals are left for the caller to commit once the whole tree
// has been processed. resolver and handler may be nil.
func (t *Tree) CheckCollisions(resolver *Resolver, handler HandlerFunc, mode physics.Mode) Stats {
	var stats Stats
	visited := make(map[pairKey]struct{})
	t.contacts = t.contacts[:0]

	var report physics.ReportFunc
	if mode == physics.ReportAllOverlaps {
		report = func(c physics.Contact) {
			t.contacts = append(t.contacts, c)
		}
	}

	t.root.walk(func(n *Node) {
		l, ok := n.state.(*leaf)
		if !ok || len(l.refs) < 2 {
			return
		}
		for i := 0; i < len(l.refs)-1; i++ {
			a, ok := t.store.Instance(l.refs[i])
			if !ok {
				continue
			}
			for j := i + 1; j < len(l.refs); j++ {
				key := makePairKey(l.refs[i], l.refs[j])
				if _, done := visited[key]; done {
					continue
				}
				visited[key] = struct{}{}

				b, ok := t.store.Instance(l.refs[j])
				if !ok || !a.CanCollideWith(b) {
					continue
				}
				stats.Pairs++
				if !physics.PolygonCollision(a.Body(), b.Body(), mode, report) {
					continue
				}
				stats.Collisions++

				if resolver != nil && a.Solid && b.Solid {
					if a.Moved() && resolver.Resolve(a, b) {
						stats.Resolved++
					}
					if b.Moved() && resolver.Resolve(b, a) {
						stats.Resolved++
					}
				}
				if handler != nil {
					handler(a, b)
					handler(b, a)
				}
			}
		}
	})
	return stats
}
