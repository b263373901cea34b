package field

import (
	"math/rand"
	"testing"
)

func TestFixedNearestIsAlwaysSink(t *testing.T) {
	sink := Attractor{X: 320, Y: 240}
	f := NewFixed(sink, 640, 480)

	queries := []Attractor{{0, 0}, {640, 480}, {320, 240}, {1, 479}}
	for _, q := range queries {
		if got := f.Nearest(q.X, q.Y); got != sink {
			t.Errorf("Nearest(%v, %v) = %v, want sink %v", q.X, q.Y, got, sink)
		}
	}

	pos := f.AppendPositions(nil)
	if len(pos) != 1 || pos[0] != sink {
		t.Errorf("AppendPositions = %v, want [sink]", pos)
	}
}

func TestChainNearestPicksClosestWaypoint(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	origin := Attractor{X: 0, Y: 50}
	sink := Attractor{X: 100, Y: 50}
	// spread 0 puts waypoints exactly at 25, 50, 75 along the line
	f := NewChain(origin, sink, 3, 0, 100, 100, 10, 5, rng)

	if f.WaypointCount() != 3 {
		t.Fatalf("WaypointCount = %d, want 3", f.WaypointCount())
	}
	got := f.Nearest(24, 50)
	if got.X != 25 || got.Y != 50 {
		t.Errorf("Nearest(24, 50) = %v, want {25 50}", got)
	}
	got = f.Nearest(98, 50)
	if got != sink {
		t.Errorf("Nearest(98, 50) = %v, want sink", got)
	}
}

func TestChainAdvanceRetiresAllWaypoints(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	origin := Attractor{X: 0, Y: 50}
	sink := Attractor{X: 100, Y: 50}
	f := NewChain(origin, sink, 3, 0, 100, 100, 10, 5, rng)

	for i := 0; i < 100; i++ {
		f.Advance()
	}

	if f.WaypointCount() != 0 {
		t.Errorf("WaypointCount after 100 ticks = %d, want 0", f.WaypointCount())
	}
	if got := f.Nearest(10, 10); got != sink {
		t.Errorf("Nearest with empty chain = %v, want sink fallback", got)
	}
}

func TestChainWaypointsMoveTowardSuccessors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	origin := Attractor{X: 0, Y: 50}
	sink := Attractor{X: 100, Y: 50}
	f := NewChain(origin, sink, 2, 0, 100, 100, 2, 1, rng)

	before := f.AppendPositions(nil)
	f.Advance()
	after := f.AppendPositions(nil)

	// Both waypoints advance along +X; the sink stays put.
	for i := 0; i < 2; i++ {
		if after[i].X <= before[i].X {
			t.Errorf("waypoint %d X = %v, want > %v", i, after[i].X, before[i].X)
		}
	}
	if after[2] != sink {
		t.Errorf("sink moved to %v", after[2])
	}
}

func TestCloudStaysInBoundsAndKeepsCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := NewCloud(6, 200, 120, 3, rng)

	for i := 0; i < 500; i++ {
		f.Advance()
		pos := f.AppendPositions(nil)
		if len(pos) != 6 {
			t.Fatalf("tick %d: attractor count = %d, want 6", i, len(pos))
		}
		for _, p := range pos {
			if p.X < 0 || p.X > 200 || p.Y < 0 || p.Y > 120 {
				t.Fatalf("tick %d: attractor %v escaped bounds", i, p)
			}
		}
	}
}

func TestSetBoundsClampsAttractors(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := NewCloud(8, 400, 400, 2, rng)

	f.SetBounds(100, 50)

	for _, p := range f.AppendPositions(nil) {
		if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 50 {
			t.Errorf("attractor %v outside new bounds", p)
		}
	}
}

func TestChainDeterministicForSeed(t *testing.T) {
	build := func() []Attractor {
		rng := rand.New(rand.NewSource(42))
		f := NewChain(Attractor{0, 100}, Attractor{300, 100}, 4, 60, 300, 200, 1.5, 8, rng)
		for i := 0; i < 50; i++ {
			f.Advance()
		}
		return f.AppendPositions(nil)
	}

	a := build()
	b := build()
	if len(a) != len(b) {
		t.Fatalf("runs diverged in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("attractor %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}
