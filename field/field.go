// Package field implements the attractor fields that bias branch steering.
//
// Three behaviors cover the simulation variants: a single fixed sink, a
// chain of waypoints each drifting toward its successor until it retires,
// and a cloud of attractors random-walking inside the world bounds.
// Nearest always has an answer: the sink is the fallback once every
// waypoint has retired.
package field

import (
	"math"
	"math/rand"
)

// Attractor is a steering target in world space.
type Attractor struct {
	X, Y float32
}

// Mode selects the attractor behavior.
type Mode uint8

const (
	Fixed Mode = iota // single stationary sink
	Chain             // waypoints advance toward the final sink
	Cloud             // constant set of drifting attractors
)

// Field is a set of attractors advanced once per simulation tick.
type Field struct {
	mode   Mode
	sink   Attractor
	points []Attractor
	width  float32
	height float32
	drift  float32 // units per tick
	arrive float32 // waypoint retirement distance
	rng    *rand.Rand
}

// NewFixed creates a field with a single stationary sink.
func NewFixed(sink Attractor, width, height float32) *Field {
	return &Field{
		mode:   Fixed,
		sink:   sink,
		width:  width,
		height: height,
	}
}

// NewChain creates a field of n waypoints jittered along the origin-sink
// line. Advance drifts each waypoint toward its successor (the next
// waypoint, or the sink for the last) and retires arrivals.
func NewChain(origin, sink Attractor, n int, spread, width, height, drift, arrive float32, rng *rand.Rand) *Field {
	f := &Field{
		mode:   Chain,
		sink:   sink,
		points: make([]Attractor, 0, n),
		width:  width,
		height: height,
		drift:  drift,
		arrive: arrive,
		rng:    rng,
	}
	for i := 0; i < n; i++ {
		t := float32(i+1) / float32(n+1)
		p := Attractor{
			X: origin.X + (sink.X-origin.X)*t + f.jitter(spread),
			Y: origin.Y + (sink.Y-origin.Y)*t + f.jitter(spread),
		}
		p.X = clamp32(p.X, 0, width)
		p.Y = clamp32(p.Y, 0, height)
		f.points = append(f.points, p)
	}
	return f
}

// NewCloud creates a field of n attractors random-walking inside the
// bounds. Cloud attractors never retire. The world center stands in as
// the sink so Nearest stays total even with n == 0.
func NewCloud(n int, width, height, drift float32, rng *rand.Rand) *Field {
	f := &Field{
		mode:   Cloud,
		sink:   Attractor{X: width / 2, Y: height / 2},
		points: make([]Attractor, 0, n),
		width:  width,
		height: height,
		drift:  drift,
		rng:    rng,
	}
	for i := 0; i < n; i++ {
		f.points = append(f.points, Attractor{
			X: rng.Float32() * width,
			Y: rng.Float32() * height,
		})
	}
	return f
}

// Mode reports the field's behavior.
func (f *Field) Mode() Mode { return f.mode }

// Sink returns the contraction target.
func (f *Field) Sink() Attractor { return f.sink }

// WaypointCount reports the number of attractors still in flight,
// excluding the sink.
func (f *Field) WaypointCount() int { return len(f.points) }

// Advance moves the field one tick.
func (f *Field) Advance() {
	switch f.mode {
	case Chain:
		f.advanceChain()
	case Cloud:
		f.advanceCloud()
	}
}

func (f *Field) advanceChain() {
	for i := range f.points {
		next := f.sink
		if i+1 < len(f.points) {
			next = f.points[i+1]
		}
		dx := next.X - f.points[i].X
		dy := next.Y - f.points[i].Y
		d := float32(math.Hypot(float64(dx), float64(dy)))
		if d > 0 {
			step := f.drift
			if step > d {
				step = d
			}
			f.points[i].X += dx / d * step
			f.points[i].Y += dy / d * step
		}
	}

	// Retire waypoints that reached their successor, rebuilding in place.
	alive := f.points[:0]
	for i, p := range f.points {
		next := f.sink
		if i+1 < len(f.points) {
			next = f.points[i+1]
		}
		if distSq(p.X, p.Y, next.X, next.Y) > f.arrive*f.arrive {
			alive = append(alive, p)
		}
	}
	f.points = alive
}

func (f *Field) advanceCloud() {
	for i := range f.points {
		theta := f.rng.Float64() * 2 * math.Pi
		f.points[i].X += float32(math.Cos(theta)) * f.drift
		f.points[i].Y += float32(math.Sin(theta)) * f.drift
		f.points[i].X = clamp32(f.points[i].X, 0, f.width)
		f.points[i].Y = clamp32(f.points[i].Y, 0, f.height)
	}
}

// Nearest returns the attractor closest to (x, y). Fixed and chain fields
// always include the sink as a candidate; a cloud falls back to the world
// center only when empty.
func (f *Field) Nearest(x, y float32) Attractor {
	best := f.sink
	bestD := float32(math.MaxFloat32)
	if f.mode != Cloud {
		bestD = distSq(x, y, f.sink.X, f.sink.Y)
	}
	for _, p := range f.points {
		if d := distSq(x, y, p.X, p.Y); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// AppendPositions appends the current steering candidates to dst and
// returns it, reusing dst's backing array across ticks.
func (f *Field) AppendPositions(dst []Attractor) []Attractor {
	dst = append(dst, f.points...)
	if f.mode != Cloud {
		dst = append(dst, f.sink)
	}
	return dst
}

// SetBounds updates the world bounds and clamps attractors into them.
// Chain fields are instead rebuilt by the caller on resize.
func (f *Field) SetBounds(width, height float32) {
	f.width = width
	f.height = height
	for i := range f.points {
		f.points[i].X = clamp32(f.points[i].X, 0, width)
		f.points[i].Y = clamp32(f.points[i].Y, 0, height)
	}
	if f.mode == Cloud {
		f.sink = Attractor{X: width / 2, Y: height / 2}
	}
}

// SetSink moves the contraction target, used when the world is resized.
func (f *Field) SetSink(sink Attractor) {
	f.sink = sink
}

func (f *Field) jitter(spread float32) float32 {
	if spread <= 0 {
		return 0
	}
	return (f.rng.Float32()*2 - 1) * spread
}

func distSq(x1, y1, x2, y2 float32) float32 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
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
