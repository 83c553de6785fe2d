package physics

// Mask is a closed polygon describing the collidable silhouette of an
// instance. Segments are stored relative to the owning instance's position.
type Mask struct {
	segments  []Segment
	first     Vector2D
	finalized bool
}

// NewMask creates an empty mask.
func NewMask() *Mask {
	return &Mask{}
}

// NewRectMask creates a finalized rectangular mask of the given size with its
// top-left corner at the origin.
func NewRectMask(width, height float64) *Mask {
	m := NewMask()
	m.AddVertex(0, 0)
	m.AddVertex(width, 0)
	m.AddVertex(width, height)
	m.AddVertex(0, height)
	m.Finalize()
	return m
}

// AddVertex appends a vertex in winding order. The first vertex produces a
// degenerate segment that Finalize later turns into the closing edge.
// Adding a vertex to a finalized mask reopens it.
func (m *Mask) AddVertex(vx, vy float64) {
	if m.finalized {
		m.segments[0].X1, m.segments[0].Y1 = m.first.X, m.first.Y
		m.finalized = false
	}

	if len(m.segments) == 0 {
		m.first = Vector2D{X: vx, Y: vy}
		m.segments = append(m.segments, Segment{X1: vx, Y1: vy, X2: vx, Y2: vy})
		return
	}

	last := m.segments[len(m.segments)-1]
	m.segments = append(m.segments, Segment{X1: last.X2, Y1: last.Y2, X2: vx, Y2: vy})
}

// Finalize closes the polygon by starting the first segment at the end of
// the last one. It is a no-op on an empty mask.
func (m *Mask) Finalize() {
	if len(m.segments) == 0 {
		return
	}
	last := m.segments[len(m.segments)-1]
	m.segments[0].X1, m.segments[0].Y1 = last.X2, last.Y2
	m.finalized = true
}

// Finalized reports whether the polygon has been closed.
func (m *Mask) Finalized() bool {
	return m != nil && m.finalized
}

// SegmentCount returns the number of segments, which equals the number of
// vertices added.
func (m *Mask) SegmentCount() int {
	if m == nil {
		return 0
	}
	return len(m.segments)
}

// Segments returns the mask's segments relative to its owner.
func (m *Mask) Segments() []Segment {
	if m == nil {
		return nil
	}
	return m.segments
}

// Valid reports whether the mask describes a usable polygon. Invalid masks
// make the narrow phase fall back to rectangle testing.
func (m *Mask) Valid() bool {
	return m.Finalized() && len(m.segments) >= 3
}

// Contains reports whether a point relative to the owner lies inside the
// polygon, using an even-odd ray cast.
func (m *Mask) Contains(p Vector2D) bool {
	if !m.Valid() {
		return false
	}
	inside := false
	for _, s := range m.segments {
		if (s.Y1 > p.Y) != (s.Y2 > p.Y) {
			x := s.X1 + (p.Y-s.Y1)*(s.X2-s.X1)/(s.Y2-s.Y1)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
