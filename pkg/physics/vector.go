// pkg/physics/vector.go
package physics

import "math"

// Vector2D represents a 2D vector with x and y components.
// Screen coordinates are used throughout: y grows downward.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the same direction
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of two vectors.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Direction returns the direction of the vector in degrees within [0, 360).
// 0 points right and 90 points up the screen.
func (v Vector2D) Direction() float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return AbsoluteAngle(math.Atan2(-v.Y, v.X) * 180 / math.Pi)
}

// FromDirection creates a vector from a direction in degrees and a magnitude.
// Axis-aligned directions are exact so that movements along the axes never
// accumulate rounding drift.
func FromDirection(direction, magnitude float64) Vector2D {
	cos, sin := cosSin(direction)
	return Vector2D{
		X: magnitude * cos,
		Y: -magnitude * sin,
	}
}

func cosSin(direction float64) (float64, float64) {
	switch AbsoluteAngle(direction) {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := direction * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}
