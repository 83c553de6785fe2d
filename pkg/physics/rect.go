package physics

// Rect represents an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Vector2D {
	return Vector2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate returns the rectangle moved by the given offset.
func (r Rect) Translate(offset Vector2D) Rect {
	r.X += offset.X
	r.Y += offset.Y
	return r
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether two rectangles share any area. Edges are
// half-open, so rectangles that merely touch do not overlap.
func Overlaps(a, b Rect) bool {
	switch {
	case a.Bottom() <= b.Y:
		return false
	case a.Y >= b.Bottom():
		return false
	case a.Right() <= b.X:
		return false
	case a.X >= b.Right():
		return false
	}
	return true
}

// Overlaps reports whether r shares any area with other.
func (r Rect) Overlaps(other Rect) bool {
	return Overlaps(r, other)
}

// Quadrants splits the rectangle into four equal parts ordered top-left,
// top-right, bottom-left, bottom-right.
func (r Rect) Quadrants() [4]Rect {
	w, h := r.Width/2, r.Height/2
	return [4]Rect{
		{X: r.X, Y: r.Y, Width: w, Height: h},
		{X: r.X + w, Y: r.Y, Width: w, Height: h},
		{X: r.X, Y: r.Y + h, Width: w, Height: h},
		{X: r.X + w, Y: r.Y + h, Width: w, Height: h},
	}
}
