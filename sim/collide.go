package sim

import "github.com/pthm-cable/mycelia/components"

// pairSnapshot is the immutable view of a live branch taken at the start
// of the collision pass. Offspring created during the pass never appear in
// the snapshot, so a tick's collisions only ever involve branches that
// existed when the pass began.
type pairSnapshot struct {
	x, y    float32
	depth   int32
	lineage uint8
}

// collisionPass breeds offspring from branch pairs that drifted within
// collision distance. It only runs while expanding and stops the moment
// the cap leaves no headroom. The scan is brute-force over all unordered
// pairs, which holds up fine at the caps this runs with; past a few
// thousand branches it would need a spatial index.
func (s *Simulation) collisionPass(stats *StepStats) {
	cfg := s.cfg
	if cfg.Collision.ReproductionRate <= 0 || !s.pool.hasRoom() {
		return
	}

	s.pairs = s.pairs[:0]
	query := s.pool.filter.Query()
	for query.Next() {
		pos, _, _, br := query.Get()
		s.pairs = append(s.pairs, pairSnapshot{
			x:       pos.X,
			y:       pos.Y,
			depth:   br.Depth,
			lineage: br.Lineage,
		})
	}

	growSpeed := float32(cfg.Branch.GrowSpeed)
	limSq := float32(cfg.Collision.Distance * cfg.Collision.Distance)
	crossLineageOnly := s.crossLineageOnly

	for i := 0; i < len(s.pairs); i++ {
		if !s.pool.hasRoom() {
			return
		}
		for j := i + 1; j < len(s.pairs); j++ {
			a, b := &s.pairs[i], &s.pairs[j]
			if crossLineageOnly && a.lineage == b.lineage {
				continue
			}
			childDepth := min(a.depth, b.depth) + 1
			if int(childDepth) > cfg.Branch.MaxDepth {
				continue
			}
			if distSq(a.x, a.y, b.x, b.y) > limSq {
				continue
			}
			if s.rng.Float64() >= cfg.Collision.ReproductionRate {
				continue
			}

			lineage := a.lineage
			if s.rng.Float64() < 0.5 {
				lineage = b.lineage
			}
			vx, vy := s.randHeading(growSpeed)
			if !s.pool.add(birth{
				pos:     components.Position{X: (a.x + b.x) / 2, Y: (a.y + b.y) / 2},
				vel:     components.Velocity{X: vx, Y: vy},
				depth:   childDepth,
				life:    s.drawLife(),
				lineage: lineage,
			}) {
				return
			}
			stats.CollisionBirths++
			if !s.pool.hasRoom() {
				return
			}
		}
	}
}
