package physics

// Segment is a line segment between two endpoints.
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Start returns the first endpoint.
func (s Segment) Start() Vector2D {
	return Vector2D{X: s.X1, Y: s.Y1}
}

// End returns the second endpoint.
func (s Segment) End() Vector2D {
	return Vector2D{X: s.X2, Y: s.Y2}
}

// Translate returns the segment moved by the given offset.
func (s Segment) Translate(offset Vector2D) Segment {
	return Segment{
		X1: s.X1 + offset.X, Y1: s.Y1 + offset.Y,
		X2: s.X2 + offset.X, Y2: s.Y2 + offset.Y,
	}
}

// orientation returns 1 for a counter-clockwise turn p->q->r, -1 for clockwise
// and 0 when the three points are collinear.
func orientation(p, q, r Vector2D) int {
	v := q.Sub(p).Cross(r.Sub(p))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether q lies within the bounding box of p-r. Only valid
// when p, q and r are known to be collinear.
func onSegment(p, q, r Vector2D) bool {
	return q.X <= max(p.X, r.X) && q.X >= min(p.X, r.X) &&
		q.Y <= max(p.Y, r.Y) && q.Y >= min(p.Y, r.Y)
}

// SegmentsIntersect reports whether two segments share at least one point.
// Touching endpoints and collinear overlaps count as intersections.
func SegmentsIntersect(s1, s2 Segment) bool {
	p1, q1 := s1.Start(), s1.End()
	p2, q2 := s2.Start(), s2.End()

	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}

	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, q2, q1):
		return true
	case o3 == 0 && onSegment(p2, p1, q2):
		return true
	case o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}
