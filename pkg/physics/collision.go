// pkg/physics/collision.go
package physics

// Mode selects how much work the narrow phase does once a hit is found.
type Mode int

const (
	// Normal stops at the first intersecting segment pair.
	Normal Mode = iota
	// ReportAllOverlaps evaluates every segment pair so that each
	// intersection can be visualized.
	ReportAllOverlaps
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case ReportAllOverlaps:
		return "report_all_overlaps"
	default:
		return "unknown"
	}
}

// Body is a collidable shape placed in the room: a bounding rectangle of the
// given size at Position, optionally refined by a polygon mask.
type Body struct {
	Position Vector2D
	Width    float64
	Height   float64
	Mask     *Mask
}

// Bounds returns the body's absolute bounding rectangle.
func (b Body) Bounds() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, Width: b.Width, Height: b.Height}
}

// At returns a copy of the body moved to pos.
func (b Body) At(pos Vector2D) Body {
	b.Position = pos
	return b
}

// Center returns the center of the bounding rectangle.
func (b Body) Center() Vector2D {
	return b.Bounds().Center()
}

// Contact is a pair of intersecting segments in absolute coordinates.
type Contact struct {
	A Segment
	B Segment
}

// ReportFunc receives every contact found in ReportAllOverlaps mode.
type ReportFunc func(Contact)

// PolygonCollision reports whether two bodies overlap. Bodies whose masks are
// missing or degenerate are treated as their bounding rectangles. Otherwise the
// bounding rectangles act as a fast reject before every segment of a is tested
// against every segment of b. A polygon lying entirely inside the other also
// counts as a collision.
func PolygonCollision(a, b Body, mode Mode, report ReportFunc) bool {
	if !Overlaps(a.Bounds(), b.Bounds()) {
		return false
	}
	if !a.Mask.Valid() || !b.Mask.Valid() {
		return true
	}

	hit := false
	for _, sa := range a.Mask.Segments() {
		sa = sa.Translate(a.Position)
		for _, sb := range b.Mask.Segments() {
			sb = sb.Translate(b.Position)
			if !SegmentsIntersect(sa, sb) {
				continue
			}
			if mode == Normal {
				return true
			}
			hit = true
			if report != nil {
				report(Contact{A: sa, B: sb})
			}
		}
	}
	if hit {
		return true
	}

	return containsVertex(a, b) || containsVertex(b, a)
}

// Collides is PolygonCollision in Normal mode.
func Collides(a, b Body) bool {
	return PolygonCollision(a, b, Normal, nil)
}

// containsVertex reports whether the first vertex of inner lies inside outer.
// With no crossing edges one vertex decides containment for the whole polygon.
func containsVertex(outer, inner Body) bool {
	segs := inner.Mask.Segments()
	p := segs[0].Start().Add(inner.Position).Sub(outer.Position)
	return outer.Mask.Contains(p)
}
