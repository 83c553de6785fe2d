package physics

import "math"

// AbsoluteAngle maps any angle in degrees into [0, 360).
func AbsoluteAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a == 360 {
		return 0
	}
	return a
}

// DirectionOf returns the direction in degrees from one point to another.
func DirectionOf(from, to Vector2D) float64 {
	return to.Sub(from).Direction()
}

// AngleHBounce reflects an angle over the y-axis, as when bouncing off a
// vertical wall.
func AngleHBounce(a float64) float64 {
	a = AbsoluteAngle(a)
	switch {
	case a > 0 && a < 180:
		a = (90 - a) + 90
	case a > 180 && a < 360:
		a = (270 - a) + 270
	default:
		a += 180
	}
	return AbsoluteAngle(a)
}

// AngleVBounce reflects an angle over the x-axis, as when bouncing off a
// horizontal wall.
func AngleVBounce(a float64) float64 {
	a = AbsoluteAngle(a)
	switch {
	case a > 0 && a < 90:
		a = (90 - a) + 270
	case a > 270 && a < 360:
		a = 90 - (a - 270)
	case a > 90 && a < 270:
		a = (180 - a) + 180
	case a == 90 || a == 270:
		a += 180
	}
	return AbsoluteAngle(a)
}
