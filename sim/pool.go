package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/mycelia/components"
)

// birth describes a branch to create at the end of the tick. New branches
// never participate in the tick that created them.
type birth struct {
	pos     components.Position
	vel     components.Velocity
	depth   int32
	life    int32
	lineage uint8
}

// pool owns every branch entity. The population cap is enforced at
// admission: once live branches plus pending births reach the cap, add
// rejects new entries. Live branches are never culled to make room, since
// removing visible branches mid-flight reads as flicker.
type pool struct {
	world  ecs.World
	mapper ecs.Map4[
		components.Position,
		components.Velocity,
		components.Trail,
		components.Branch,
	]
	filter ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Trail,
		components.Branch,
	]

	count       int
	maxBranches int
	pending     []birth
}

func newPool(maxBranches int) *pool {
	p := &pool{maxBranches: maxBranches}
	p.world = ecs.NewWorld()
	p.mapper = ecs.NewMap4[
		components.Position,
		components.Velocity,
		components.Trail,
		components.Branch,
	](&p.world)
	p.filter = *ecs.NewFilter4[
		components.Position,
		components.Velocity,
		components.Trail,
		components.Branch,
	](&p.world)
	return p
}

// effective counts live branches plus births already queued this tick.
func (p *pool) effective() int { return p.count + len(p.pending) }

// hasRoom reports whether one more branch can be admitted this tick.
func (p *pool) hasRoom() bool { return p.effective() < p.maxBranches }

// add queues a branch for creation at the end of the tick. It returns
// false when the cap leaves no room.
func (p *pool) add(b birth) bool {
	if !p.hasRoom() {
		return false
	}
	p.pending = append(p.pending, b)
	return true
}

// spawnNow creates a branch entity immediately. Only seeding calls this,
// outside any tick; everything mid-tick goes through add.
func (p *pool) spawnNow(b birth) bool {
	if p.count >= p.maxBranches {
		return false
	}
	p.create(&b)
	return true
}

// flush creates entities for all pending births and clears the buffer,
// returning the number created. The cap re-check is the final guard;
// admission control keeps it from triggering.
func (p *pool) flush() int {
	created := 0
	for i := range p.pending {
		if p.count >= p.maxBranches {
			break
		}
		p.create(&p.pending[i])
		created++
	}
	p.pending = p.pending[:0]
	return created
}

func (p *pool) create(b *birth) {
	pos := b.pos
	vel := b.vel
	trail := components.Trail{X: b.pos.X, Y: b.pos.Y}
	br := components.Branch{Depth: b.depth, Life: b.life, Lineage: b.lineage}
	p.mapper.NewEntity(&pos, &vel, &trail, &br)
	p.count++
}

// remove deletes a branch entity. Never call while a query is iterating.
func (p *pool) remove(e ecs.Entity) {
	p.world.RemoveEntity(e)
	p.count--
}
