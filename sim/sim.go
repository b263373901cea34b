// Package sim implements the branching-network simulation core.
//
// A Simulation owns a pool of branch entities, an attractor field, and a
// phase clock, and advances them one fixed tick at a time. It is
// deterministic for a given seed and configuration, single-threaded, and
// free of any drawing or I/O; callers pull drawable segments out of it
// after each step.
package sim

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/mycelia/components"
	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/field"
)

// Point is a position in world space.
type Point struct {
	X, Y float32
}

// Segment is one drawable branch segment for the current tick.
type Segment struct {
	From    Point
	To      Point
	Lineage uint8
	Depth   int32
}

// BranchState is a full per-branch dump for diagnostics and snapshots.
type BranchState struct {
	X, Y         float32
	PrevX, PrevY float32
	VelX, VelY   float32
	Depth        int32
	Life         int32
	Lineage      uint8
}

// StepStats reports what a single tick did.
type StepStats struct {
	Tick            int
	Expanding       bool
	Population      int // live branches after the tick
	SpawnBirths     int
	CollisionBirths int
	ExpiredDeaths   int // life ran out
	ArrivedDeaths   int // reached the sink while contracting
	Injected        int // fresh-lineage branches added (tribes)
	CapBlocked      int // spawn decisions gated off by the population cap
	CycleReset      bool
}

// Options carries run-scoped knobs that are not configuration.
type Options struct {
	Seed int64
}

// Simulation is a single independent instance of the model. Instances
// share nothing; running several side by side is safe.
type Simulation struct {
	cfg   *config.Config
	seed  int64
	rng   *rand.Rand
	noise opensimplex.Noise

	pool  *pool
	field *field.Field
	clock phaseClock

	worldW, worldH float32
	origin         Point
	noiseZ         float64
	nextLineage    uint8

	clampToBounds    bool
	crossLineageOnly bool

	pairs []pairSnapshot // collision scratch, reused across ticks
}

// New builds a simulation from the given configuration, failing fast on
// anything Validate rejects. The seed is used verbatim.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:              cfg,
		seed:             opts.Seed,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		noise:            opensimplex.NewNormalized(opts.Seed),
		pool:             newPool(cfg.Branch.MaxBranches),
		worldW:           cfg.Derived.WorldW32,
		worldH:           cfg.Derived.WorldH32,
		clampToBounds:    cfg.Sim.Variant == config.VariantTribes,
		crossLineageOnly: cfg.Sim.Variant == config.VariantTribes,
	}
	s.clock = phaseClock{
		cycleTicks: cfg.Derived.CycleTicks,
		endless:    cfg.Sim.Variant == config.VariantTribes,
	}
	s.resetField()
	s.seedPopulation()
	return s, nil
}

// Step advances the simulation one tick and reports what happened.
//
// Order within a tick: clock, field drift, per-branch growth (births go to
// a side buffer), removal of dead branches, collision reproduction,
// lineage injection, then the side buffer merges under the cap. Branches
// born this tick first move next tick.
func (s *Simulation) Step() StepStats {
	var stats StepStats

	if s.clock.Advance() && s.pool.count == 0 {
		// Contraction drained the pool; start the next cycle fresh.
		s.resetField()
		s.seedPopulation()
		stats.CycleReset = true
	}
	expanding := s.clock.Expanding()

	s.field.Advance()
	s.noiseZ += s.cfg.Growth.NoiseStep

	s.growthPass(expanding, &stats)
	s.cleanupPass(expanding, &stats)
	if expanding {
		s.collisionPass(&stats)
		s.injectPass(&stats)
	}
	s.pool.flush()

	stats.Tick = s.clock.Tick()
	stats.Expanding = expanding
	stats.Population = s.pool.count
	return stats
}

// cleanupPass removes branches whose life ran out and, while contracting,
// branches that arrived at the sink. Removal happens strictly after the
// query finishes.
func (s *Simulation) cleanupPass(expanding bool, stats *StepStats) {
	sink := s.field.Sink()
	epsSq := float32(s.cfg.Field.SinkEpsilon * s.cfg.Field.SinkEpsilon)

	type deadInfo struct {
		entity  ecs.Entity
		arrived bool
	}
	var toRemove []deadInfo

	query := s.pool.filter.Query()
	for query.Next() {
		pos, _, _, br := query.Get()
		switch {
		case br.Life <= 0:
			toRemove = append(toRemove, deadInfo{entity: query.Entity()})
		case !expanding && distSq(pos.X, pos.Y, sink.X, sink.Y) <= epsSq:
			toRemove = append(toRemove, deadInfo{entity: query.Entity(), arrived: true})
		}
	}

	for _, dead := range toRemove {
		s.pool.remove(dead.entity)
		if dead.arrived {
			stats.ArrivedDeaths++
		} else {
			stats.ExpiredDeaths++
		}
	}
}

// injectPass periodically introduces a fresh lineage so the population's
// composition keeps turning over. Tribes only.
func (s *Simulation) injectPass(stats *StepStats) {
	if !s.crossLineageOnly {
		return
	}
	interval := s.cfg.Derived.InjectTicks
	if interval <= 0 || s.clock.Tick()%interval != 0 {
		return
	}

	lineage := s.nextLineage
	s.nextLineage++
	for i := 0; i < s.cfg.Tribes.InjectCount; i++ {
		if !s.pool.hasRoom() {
			break
		}
		vx, vy := s.randHeading(float32(s.cfg.Branch.GrowSpeed))
		if s.pool.add(birth{
			pos:     components.Position{X: s.rng.Float32() * s.worldW, Y: s.rng.Float32() * s.worldH},
			vel:     components.Velocity{X: vx, Y: vy},
			life:    s.drawLife(),
			lineage: lineage,
		}) {
			stats.Injected++
		}
	}
}

// resetField rebuilds the attractor field for the configured variant.
// The branch pool is untouched.
func (s *Simulation) resetField() {
	w, h := s.worldW, s.worldH
	switch s.cfg.Sim.Variant {
	case config.VariantPulse:
		center := field.Attractor{X: w / 2, Y: h / 2}
		s.origin = Point{X: center.X, Y: center.Y}
		s.field = field.NewFixed(center, w, h)
	case config.VariantConvergent:
		origin := field.Attractor{X: 0, Y: h / 2}
		sink := field.Attractor{X: w, Y: h / 2}
		s.origin = Point{X: origin.X, Y: origin.Y}
		s.field = field.NewChain(origin, sink, s.cfg.Field.Waypoints,
			float32(s.cfg.Field.WaypointSpread), w, h,
			float32(s.cfg.Field.DriftSpeed), float32(s.cfg.Field.ArriveDistance), s.rng)
	case config.VariantTribes:
		s.origin = Point{X: w / 2, Y: h / 2}
		s.field = field.NewCloud(s.cfg.Field.CloudCount, w, h,
			float32(s.cfg.Field.DriftSpeed), s.rng)
	}
}

// seedPopulation plants the founding branches. Seeds get the full maximum
// lifespan so a fresh cycle cannot fizzle before its first spawn.
func (s *Simulation) seedPopulation() int {
	if s.cfg.Sim.Variant == config.VariantTribes {
		seeded := 0
		for i := 0; i < s.cfg.Tribes.Lineages; i++ {
			vx, vy := s.randHeading(float32(s.cfg.Branch.GrowSpeed))
			if s.pool.spawnNow(birth{
				pos:     components.Position{X: s.rng.Float32() * s.worldW, Y: s.rng.Float32() * s.worldH},
				vel:     components.Velocity{X: vx, Y: vy},
				life:    int32(s.cfg.Branch.LifeMax),
				lineage: uint8(i),
			}) {
				seeded++
			}
		}
		s.nextLineage = uint8(s.cfg.Tribes.Lineages)
		return seeded
	}

	vx, vy := s.seedVelocity()
	if s.pool.spawnNow(birth{
		pos:  components.Position{X: s.origin.X, Y: s.origin.Y},
		vel:  components.Velocity{X: vx, Y: vy},
		life: int32(s.cfg.Branch.LifeMax),
	}) {
		return 1
	}
	return 0
}

// seedVelocity aims the convergent seed at its first waypoint; everything
// else launches in a random direction.
func (s *Simulation) seedVelocity() (float32, float32) {
	grow := float32(s.cfg.Branch.GrowSpeed)
	if s.cfg.Sim.Variant == config.VariantConvergent {
		target := s.field.Nearest(s.origin.X, s.origin.Y)
		dx, dy := normalize(target.X-s.origin.X, target.Y-s.origin.Y)
		if dx != 0 || dy != 0 {
			return dx * grow, dy * grow
		}
	}
	return s.randHeading(grow)
}

// randHeading returns a uniformly random direction scaled to mag.
func (s *Simulation) randHeading(mag float32) (float32, float32) {
	theta := s.rng.Float64() * 2 * math.Pi
	sin, cos := math.Sincos(theta)
	return float32(cos) * mag, float32(sin) * mag
}

// Resize updates the world bounds, preserving live branches. The
// convergent chain is rebuilt since its waypoints are laid out relative to
// the world edges; the other variants keep their field state.
func (s *Simulation) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.worldW, s.worldH = width, height
	switch s.cfg.Sim.Variant {
	case config.VariantPulse:
		s.origin = Point{X: width / 2, Y: height / 2}
		s.field.SetSink(field.Attractor{X: width / 2, Y: height / 2})
		s.field.SetBounds(width, height)
	case config.VariantConvergent:
		s.resetField()
	case config.VariantTribes:
		s.origin = Point{X: width / 2, Y: height / 2}
		s.field.SetBounds(width, height)
	}
}

// Count returns the number of live branches.
func (s *Simulation) Count() int { return s.pool.count }

// Seed returns the seed the simulation was built with.
func (s *Simulation) Seed() int64 { return s.seed }

// TickCount returns the number of completed ticks.
func (s *Simulation) TickCount() int { return s.clock.Tick() }

// Expanding reports the current phase.
func (s *Simulation) Expanding() bool { return s.clock.Expanding() }

// WorldSize returns the current world bounds.
func (s *Simulation) WorldSize() (float32, float32) { return s.worldW, s.worldH }

// AppendSegments appends one drawable segment per live branch to dst and
// returns it. Callers reuse dst across frames.
func (s *Simulation) AppendSegments(dst []Segment) []Segment {
	query := s.pool.filter.Query()
	for query.Next() {
		pos, _, trail, br := query.Get()
		dst = append(dst, Segment{
			From:    Point{X: trail.X, Y: trail.Y},
			To:      Point{X: pos.X, Y: pos.Y},
			Lineage: br.Lineage,
			Depth:   br.Depth,
		})
	}
	return dst
}

// AppendAttractors appends the current attractor positions to dst and
// returns it.
func (s *Simulation) AppendAttractors(dst []field.Attractor) []field.Attractor {
	return s.field.AppendPositions(dst)
}

// AppendBranchStates appends a full state dump of every live branch to dst
// and returns it.
func (s *Simulation) AppendBranchStates(dst []BranchState) []BranchState {
	query := s.pool.filter.Query()
	for query.Next() {
		pos, vel, trail, br := query.Get()
		dst = append(dst, BranchState{
			X: pos.X, Y: pos.Y,
			PrevX: trail.X, PrevY: trail.Y,
			VelX: vel.X, VelY: vel.Y,
			Depth:   br.Depth,
			Life:    br.Life,
			Lineage: br.Lineage,
		})
	}
	return dst
}
