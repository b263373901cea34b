package sim

import "math"

// normalize returns the unit vector of (x, y), or (0, 0) for the zero
// vector so callers never divide by zero.
func normalize(x, y float32) (float32, float32) {
	d := float32(math.Hypot(float64(x), float64(y)))
	if d == 0 {
		return 0, 0
	}
	return x / d, y / d
}

// clampMagnitude scales (x, y) down to maxMag if it is longer.
func clampMagnitude(x, y, maxMag float32) (float32, float32) {
	d2 := x*x + y*y
	if d2 <= maxMag*maxMag {
		return x, y
	}
	d := float32(math.Sqrt(float64(d2)))
	return x / d * maxMag, y / d * maxMag
}

// rotate turns (x, y) by angle radians.
func rotate(x, y float32, angle float64) (float32, float32) {
	sin, cos := math.Sincos(angle)
	return x*float32(cos) - y*float32(sin), x*float32(sin) + y*float32(cos)
}

func distSq(x1, y1, x2, y2 float32) float32 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

func dist(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distSq(x1, y1, x2, y2))))
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp64(a, b, t float64) float64 {
	return a + (b-a)*t
}
