package sim

import (
	"math"

	"github.com/pthm-cable/mycelia/components"
)

// growthPass advances every branch one tick. While expanding, velocity
// integrates attractor steering plus coherent wander noise, clamped to the
// grow speed, and branches may queue a child. While contracting, branches
// head straight for the sink and never spawn. Life counts down in both
// phases.
func (s *Simulation) growthPass(expanding bool, stats *StepStats) {
	cfg := s.cfg
	growSpeed := float32(cfg.Branch.GrowSpeed)
	steerGain := float32(cfg.Growth.SteerGain)
	wander := float32(cfg.Growth.Wander)
	shrinkSpeed := float32(cfg.Branch.ShrinkSpeed)
	noiseScale := cfg.Growth.NoiseScale
	clampToBounds := s.clampToBounds
	sink := s.field.Sink()

	query := s.pool.filter.Query()
	for query.Next() {
		pos, vel, trail, br := query.Get()

		br.Life--
		trail.X, trail.Y = pos.X, pos.Y

		if !expanding {
			d := dist(pos.X, pos.Y, sink.X, sink.Y)
			if d > 0 {
				step := shrinkSpeed
				if step > d {
					step = d
				}
				dx, dy := normalize(sink.X-pos.X, sink.Y-pos.Y)
				vel.X = dx * step
				vel.Y = dy * step
				pos.X += vel.X
				pos.Y += vel.Y
			}
			continue
		}

		target := s.field.Nearest(pos.X, pos.Y)
		targetDist := dist(pos.X, pos.Y, target.X, target.Y)
		sx, sy := normalize(target.X-pos.X, target.Y-pos.Y)

		theta := s.noise.Eval3(float64(pos.X)*noiseScale, float64(pos.Y)*noiseScale, s.noiseZ) * 4 * math.Pi
		nsin, ncos := math.Sincos(theta)

		vel.X += sx*steerGain + float32(ncos)*wander
		vel.Y += sy*steerGain + float32(nsin)*wander
		vel.X, vel.Y = clampMagnitude(vel.X, vel.Y, growSpeed)

		pos.X += vel.X
		pos.Y += vel.Y
		if clampToBounds {
			pos.X = clamp32(pos.X, 0, s.worldW)
			pos.Y = clamp32(pos.Y, 0, s.worldH)
		}

		s.maybeSpawn(pos, vel, br, targetDist, stats)
	}
}

// maybeSpawn queues a child branch with probability scaled by the parent's
// fitness. The cap and depth gates close before any randomness is drawn,
// so a saturated pool consumes nothing from the stream.
func (s *Simulation) maybeSpawn(pos *components.Position, vel *components.Velocity, br *components.Branch, targetDist float32, stats *StepStats) {
	if int(br.Depth) >= s.cfg.Branch.MaxDepth {
		return
	}
	if !s.pool.hasRoom() {
		stats.CapBlocked++
		return
	}
	if s.rng.Float64() >= s.spawnProbability(targetDist) {
		return
	}

	angle := (s.rng.Float64()*2 - 1) * s.cfg.Growth.BranchAngle
	scale := float32(0.6 + s.rng.Float64()*0.6)
	cvx, cvy := rotate(vel.X, vel.Y, angle)

	if s.pool.add(birth{
		pos:     components.Position{X: pos.X, Y: pos.Y},
		vel:     components.Velocity{X: cvx * scale, Y: cvy * scale},
		depth:   br.Depth + 1,
		life:    s.drawLife(),
		lineage: br.Lineage,
	}) {
		stats.SpawnBirths++
	}
}

// spawnProbability interpolates between the base and elite spawn rates.
// Fitness is proximity to the nearest attractor normalized by the world
// width, so branches that found their target branch hardest.
func (s *Simulation) spawnProbability(targetDist float32) float64 {
	fitness := 1 - clamp32(targetDist/s.worldW, 0, 1)
	base := s.cfg.Spawn.BaseProb
	elite := base * s.cfg.Spawn.EliteMultiplier
	return lerp64(base, elite, float64(fitness)*s.cfg.Spawn.EliteBias)
}

// drawLife samples a lifespan from the configured range.
func (s *Simulation) drawLife() int32 {
	lo := s.cfg.Branch.LifeMin
	hi := s.cfg.Branch.LifeMax
	if hi <= lo {
		return int32(lo)
	}
	return int32(lo + s.rng.Intn(hi-lo+1))
}
