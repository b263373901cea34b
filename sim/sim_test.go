package sim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mycelia/components"
	"github.com/pthm-cable/mycelia/config"
)

// testConfig loads defaults overlaid with the given YAML snippet.
func testConfig(t *testing.T, overrides string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(overrides), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading test config: %v", err)
	}
	return cfg
}

// drainPool removes every live branch so a test can place its own.
func drainPool(s *Simulation) {
	var entities []ecs.Entity
	query := s.pool.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		s.pool.remove(e)
	}
}

// placeBranch inserts a stationary branch directly into the pool.
func placeBranch(s *Simulation, x, y float32, depth, life int32, lineage uint8) {
	s.pool.spawnNow(birth{
		pos:     components.Position{X: x, Y: y},
		depth:   depth,
		life:    life,
		lineage: lineage,
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"zero cap", func(c *config.Config) { c.Branch.MaxBranches = 0 }, config.ErrMaxBranches},
		{"negative depth", func(c *config.Config) { c.Branch.MaxDepth = -1 }, config.ErrMaxDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			if err != nil {
				t.Fatalf("loading defaults: %v", err)
			}
			tt.mutate(cfg)
			if _, err := New(cfg, Options{Seed: 1}); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Long-running sweep: the population cap, the depth bounds, and the life
// floor hold on every tick, across cycle resets and variant rules.
func TestInvariantsHoldAcrossTicks(t *testing.T) {
	tests := []struct {
		name      string
		overrides string
	}{
		{
			"tribes under pressure",
			`
screen: {width: 300, height: 300}
sim: {variant: tribes, tps: 60}
branch: {max_branches: 60, max_depth: 5, grow_speed: 2, life_min: 30, life_max: 80}
spawn: {base_prob: 0.5, elite_bias: 1.0, elite_multiplier: 2.0}
collision: {distance: 10, reproduction_rate: 0.5}
tribes: {lineages: 3, inject_seconds: 0.5, inject_count: 4}
`,
		},
		{
			"pulse across cycles",
			`
screen: {width: 300, height: 300}
sim: {variant: pulse, tps: 60}
phase: {cycle_seconds: 4}
branch: {max_branches: 80, max_depth: 4, grow_speed: 2, shrink_speed: 5, life_min: 60, life_max: 150}
spawn: {base_prob: 0.1}
collision: {distance: 8, reproduction_rate: 0.3}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.overrides)
			s, err := New(cfg, Options{Seed: 11})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			maxDepth := int32(cfg.Branch.MaxDepth)
			var states []BranchState
			for i := 0; i < 1500; i++ {
				st := s.Step()
				if s.Count() > cfg.Branch.MaxBranches {
					t.Fatalf("tick %d: population %d exceeds cap %d", st.Tick, s.Count(), cfg.Branch.MaxBranches)
				}
				if st.Population != s.Count() {
					t.Fatalf("tick %d: stats population %d != Count %d", st.Tick, st.Population, s.Count())
				}
				states = s.AppendBranchStates(states[:0])
				for _, b := range states {
					if b.Depth < 0 || b.Depth > maxDepth {
						t.Fatalf("tick %d: depth %d outside [0, %d]", st.Tick, b.Depth, maxDepth)
					}
					if b.Life < 0 {
						t.Fatalf("tick %d: negative life %d", st.Tick, b.Life)
					}
				}
			}
		})
	}
}

func TestLifeCountsDownToRemoval(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 200, height: 200}
sim: {variant: pulse, tps: 60}
phase: {cycle_seconds: 1000}
branch: {grow_speed: 1, max_branches: 5, max_depth: 2, life_min: 25, life_max: 25}
spawn: {base_prob: 0}
collision: {reproduction_rate: 0}
`)
	s, err := New(cfg, Options{Seed: 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	prev := int32(25)
	for i := 0; i < 24; i++ {
		s.Step()
		states := s.AppendBranchStates(nil)
		if len(states) != 1 {
			t.Fatalf("tick %d: population = %d, want 1", i+1, len(states))
		}
		if states[0].Life != prev-1 {
			t.Fatalf("tick %d: life = %d, want %d", i+1, states[0].Life, prev-1)
		}
		prev = states[0].Life
	}

	st := s.Step()
	if st.ExpiredDeaths != 1 {
		t.Errorf("ExpiredDeaths = %d, want 1", st.ExpiredDeaths)
	}
	if s.Count() != 0 {
		t.Errorf("population after expiry = %d, want 0", s.Count())
	}
}

// A full cycle with spawning disabled: the lone seed expands away from the
// sink, the contraction pulls it monotonically back, it dies within the
// sink epsilon, and the next cycle re-seeds the empty pool.
func TestCycleContractsToSinkAndReseeds(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 400, height: 400}
sim: {variant: convergent, tps: 60}
phase: {cycle_seconds: 2}
branch: {grow_speed: 2, shrink_speed: 6, max_branches: 10, max_depth: 3, life_min: 100000, life_max: 100000}
growth: {wander: 0}
spawn: {base_prob: 0}
collision: {reproduction_rate: 0}
field: {waypoints: 0, sink_epsilon: 10}
`)
	s, err := New(cfg, Options{Seed: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sink := s.field.Sink()

	// First half: expanding, one branch, no spawns.
	for i := 0; i < 59; i++ {
		st := s.Step()
		if !st.Expanding {
			t.Fatalf("tick %d: contracting during first half-cycle", st.Tick)
		}
		if s.Count() != 1 {
			t.Fatalf("tick %d: population = %d, want 1", st.Tick, s.Count())
		}
	}

	// Second half: distance to the sink shrinks every tick until arrival.
	arrived := false
	prevDist := float32(1e9)
	for i := 0; i < 60; i++ {
		st := s.Step()
		if st.Expanding {
			t.Fatalf("tick %d: expanding during second half-cycle", st.Tick)
		}
		if st.ArrivedDeaths > 0 {
			arrived = true
			if s.Count() != 0 {
				t.Fatalf("tick %d: population = %d after arrival, want 0", st.Tick, s.Count())
			}
			continue
		}
		if arrived {
			if s.Count() != 0 {
				t.Fatalf("tick %d: branch resurrected after arrival", st.Tick)
			}
			continue
		}
		states := s.AppendBranchStates(nil)
		if len(states) != 1 {
			t.Fatalf("tick %d: population = %d, want 1", st.Tick, len(states))
		}
		d := dist(states[0].X, states[0].Y, sink.X, sink.Y)
		if d >= prevDist {
			t.Fatalf("tick %d: distance to sink %v did not shrink from %v", st.Tick, d, prevDist)
		}
		prevDist = d
	}
	if !arrived {
		t.Fatal("branch never arrived at the sink during contraction")
	}

	// Cycle boundary: empty pool triggers a fresh field and a fresh seed.
	st := s.Step()
	if !st.CycleReset {
		t.Errorf("tick %d: expected a cycle reset", st.Tick)
	}
	if !st.Expanding {
		t.Errorf("tick %d: expected expansion after reset", st.Tick)
	}
	if s.Count() != 1 {
		t.Errorf("population after reset = %d, want 1", s.Count())
	}
}

// Certain spawning with a small cap: the seed doubles on the first tick,
// the population saturates at the cap, and the cap is never pierced.
func TestGuaranteedSpawnSaturatesCap(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 400, height: 400}
sim: {variant: convergent, tps: 60}
phase: {cycle_seconds: 10000}
branch: {grow_speed: 2, max_branches: 50, max_depth: 2, life_min: 100000, life_max: 100000}
growth: {wander: 0}
spawn: {base_prob: 1}
collision: {reproduction_rate: 0}
field: {waypoints: 0}
`)
	s, err := New(cfg, Options{Seed: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	st := s.Step()
	if st.SpawnBirths != 1 {
		t.Errorf("first tick SpawnBirths = %d, want 1", st.SpawnBirths)
	}
	if s.Count() != 2 {
		t.Errorf("population after first tick = %d, want 2", s.Count())
	}

	for i := 0; i < 30 && s.Count() < 50; i++ {
		s.Step()
	}
	if s.Count() != 50 {
		t.Fatalf("population = %d, want saturated cap 50", s.Count())
	}

	for i := 0; i < 20; i++ {
		st := s.Step()
		if s.Count() > 50 {
			t.Fatalf("tick %d: population %d pierced the cap", st.Tick, s.Count())
		}
		if st.CapBlocked == 0 {
			t.Errorf("tick %d: expected cap pressure at saturation", st.Tick)
		}
	}
}

func TestMaxDepthZeroNeverSpawns(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 400, height: 400}
sim: {variant: convergent, tps: 60}
phase: {cycle_seconds: 10000}
branch: {grow_speed: 2, max_branches: 50, max_depth: 0, life_min: 100000, life_max: 100000}
spawn: {base_prob: 1}
collision: {reproduction_rate: 0}
field: {waypoints: 0}
`)
	s, err := New(cfg, Options{Seed: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		st := s.Step()
		if st.SpawnBirths != 0 {
			t.Fatalf("tick %d: SpawnBirths = %d, want 0 at max depth 0", st.Tick, st.SpawnBirths)
		}
	}
	if s.Count() != 1 {
		t.Errorf("population = %d, want 1", s.Count())
	}
}

func TestSameSeedSameTrajectories(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 300, height: 300}
sim: {variant: tribes, tps: 60}
branch: {max_branches: 80, max_depth: 4, life_min: 40, life_max: 90}
spawn: {base_prob: 0.05}
collision: {distance: 8, reproduction_rate: 0.3}
tribes: {lineages: 3, inject_seconds: 1, inject_count: 2}
`)
	a, err := New(cfg, Options{Seed: 99})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(cfg, Options{Seed: 99})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 400; i++ {
		sa, sb := a.Step(), b.Step()
		if sa != sb {
			t.Fatalf("tick %d: stats diverged: %+v vs %+v", i+1, sa, sb)
		}
	}

	fa := a.AppendBranchStates(nil)
	fb := b.AppendBranchStates(nil)
	if len(fa) != len(fb) {
		t.Fatalf("final populations diverged: %d vs %d", len(fa), len(fb))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("branch %d diverged: %+v vs %+v", i, fa[i], fb[i])
		}
	}

	c, err := New(cfg, Options{Seed: 100})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	fc := c.AppendBranchStates(nil)
	fresh, err := New(cfg, Options{Seed: 99})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f99 := fresh.AppendBranchStates(nil)
	same := len(fc) == len(f99)
	if same {
		for i := range fc {
			if fc[i] != f99[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical founding states")
	}
}

func TestTribesNeverContractsAndInjectsLineages(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 300, height: 300}
sim: {variant: tribes, tps: 60}
phase: {cycle_seconds: 1}
branch: {max_branches: 100, max_depth: 3, grow_speed: 2, life_min: 100000, life_max: 100000}
spawn: {base_prob: 0}
collision: {reproduction_rate: 0}
tribes: {lineages: 1, inject_seconds: 1, inject_count: 2}
`)
	s, err := New(cfg, Options{Seed: 8})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	totalInjected := 0
	var states []BranchState
	for i := 0; i < 130; i++ {
		st := s.Step()
		if !st.Expanding {
			t.Fatalf("tick %d: tribes contracted", st.Tick)
		}
		if st.ArrivedDeaths != 0 {
			t.Fatalf("tick %d: sink deaths in tribes", st.Tick)
		}
		totalInjected += st.Injected
		switch st.Tick {
		case 60, 120:
			if st.Injected != 2 {
				t.Errorf("tick %d: Injected = %d, want 2", st.Tick, st.Injected)
			}
		default:
			if st.Injected != 0 {
				t.Errorf("tick %d: unexpected injection", st.Tick)
			}
		}

		// Positions stay clamped to the world bounds.
		states = s.AppendBranchStates(states[:0])
		for _, b := range states {
			if b.X < 0 || b.X > 300 || b.Y < 0 || b.Y > 300 {
				t.Fatalf("tick %d: branch at (%v, %v) escaped bounds", st.Tick, b.X, b.Y)
			}
		}
	}
	if totalInjected != 4 {
		t.Errorf("total injected = %d, want 4", totalInjected)
	}

	// Founder is lineage 0; the two injections took 1 and 2.
	seen := map[uint8]bool{}
	for _, b := range s.AppendBranchStates(nil) {
		seen[b.Lineage] = true
	}
	for want := uint8(0); want <= 2; want++ {
		if !seen[want] {
			t.Errorf("lineage %d missing from population", want)
		}
	}
}

func TestResizePreservesBranchesAndReseedsChain(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 400, height: 400}
sim: {variant: convergent, tps: 60}
phase: {cycle_seconds: 10000}
branch: {grow_speed: 2, max_branches: 10, max_depth: 3, life_min: 100000, life_max: 100000}
spawn: {base_prob: 0}
collision: {reproduction_rate: 0}
field: {waypoints: 4, waypoint_spread: 0, drift_speed: 5, arrive_distance: 10}
`)
	s, err := New(cfg, Options{Seed: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 30; i++ {
		s.Step()
	}
	if got := s.field.WaypointCount(); got >= 4 {
		t.Fatalf("waypoints before resize = %d, want some retired", got)
	}

	before := s.Count()
	s.Resize(800, 600)

	if s.Count() != before {
		t.Errorf("population after resize = %d, want %d", s.Count(), before)
	}
	if got := s.field.WaypointCount(); got != 4 {
		t.Errorf("waypoints after resize = %d, want fresh chain of 4", got)
	}
	if sink := s.field.Sink(); sink.X != 800 || sink.Y != 300 {
		t.Errorf("sink after resize = %v, want {800 300}", sink)
	}
	if w, h := s.WorldSize(); w != 800 || h != 600 {
		t.Errorf("world size = %v x %v, want 800 x 600", w, h)
	}
}

func TestResizeMovesPulseSink(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 400, height: 400}
sim: {variant: pulse, tps: 60}
branch: {max_branches: 10, max_depth: 3, life_min: 100000, life_max: 100000}
spawn: {base_prob: 0}
collision: {reproduction_rate: 0}
`)
	s, err := New(cfg, Options{Seed: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	before := s.Count()
	s.Resize(800, 600)
	if s.Count() != before {
		t.Errorf("population after resize = %d, want %d", s.Count(), before)
	}
	if sink := s.field.Sink(); sink.X != 400 || sink.Y != 300 {
		t.Errorf("sink after resize = %v, want new center {400 300}", sink)
	}
}

func TestAppendSegmentsMatchesPopulation(t *testing.T) {
	cfg := testConfig(t, `
screen: {width: 300, height: 300}
sim: {variant: tribes, tps: 60}
branch: {max_branches: 40, max_depth: 4, life_min: 50, life_max: 100}
spawn: {base_prob: 0.3}
tribes: {lineages: 2, inject_seconds: 100, inject_count: 1}
`)
	s, err := New(cfg, Options{Seed: 21})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var segs []Segment
	for i := 0; i < 200; i++ {
		s.Step()
		segs = s.AppendSegments(segs[:0])
		if len(segs) != s.Count() {
			t.Fatalf("tick %d: %d segments for %d branches", i+1, len(segs), s.Count())
		}
	}
}
