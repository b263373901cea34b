package telemetry

import "github.com/pthm-cable/mycelia/sim"

// Collector accumulates per-tick events within time windows and produces
// WindowStats.
type Collector struct {
	windowTicks int
	tps         int

	windowStartTick int

	// Event counters for current window
	spawnBirths     int
	collisionBirths int
	expiredDeaths   int
	arrivedDeaths   int
	injected        int
	capBlocked      int
	cycleResets     int

	depths []float64 // flush scratch, reused across windows
}

// NewCollector creates a new stats collector.
// windowSec: how long each stats window lasts in simulation seconds
// tps: simulation ticks per second (used for tick-to-time conversion)
func NewCollector(windowSec float64, tps int) *Collector {
	ticksPerWindow := int(windowSec * float64(tps))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowTicks: ticksPerWindow,
		tps:         tps,
	}
}

// Record accumulates one tick's events into the current window.
func (c *Collector) Record(s sim.StepStats) {
	c.spawnBirths += s.SpawnBirths
	c.collisionBirths += s.CollisionBirths
	c.expiredDeaths += s.ExpiredDeaths
	c.arrivedDeaths += s.ArrivedDeaths
	c.injected += s.Injected
	c.capBlocked += s.CapBlocked
	if s.CycleReset {
		c.cycleResets++
	}
}

// ShouldFlush returns true if the current window is complete.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces stats for the completed window and resets the counters.
// branches is the population sampled at the window end; the depth
// distribution and lineage count are derived from it.
func (c *Collector) Flush(currentTick int, expanding bool, branches []sim.BranchState) WindowStats {
	c.depths = c.depths[:0]
	var seen [256]bool
	lineages := 0
	depthMax := 0
	lifeSum := 0.0
	for _, b := range branches {
		c.depths = append(c.depths, float64(b.Depth))
		if int(b.Depth) > depthMax {
			depthMax = int(b.Depth)
		}
		if !seen[b.Lineage] {
			seen[b.Lineage] = true
			lineages++
		}
		lifeSum += float64(b.Life)
	}
	depthMean, depthStd, depthP50, depthP90 := ComputeDepthStats(c.depths)
	lifeMean := 0.0
	if len(branches) > 0 {
		lifeMean = lifeSum / float64(len(branches))
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) / float64(c.tps),

		Expanding:  expanding,
		Population: len(branches),

		SpawnBirths:     c.spawnBirths,
		CollisionBirths: c.collisionBirths,
		ExpiredDeaths:   c.expiredDeaths,
		ArrivedDeaths:   c.arrivedDeaths,
		Injected:        c.injected,
		CapBlocked:      c.capBlocked,
		CycleResets:     c.cycleResets,

		DepthMean: depthMean,
		DepthStd:  depthStd,
		DepthP50:  depthP50,
		DepthP90:  depthP90,
		DepthMax:  depthMax,

		LifeMean: lifeMean,

		ActiveLineages: lineages,
	}

	// Reset for next window
	c.spawnBirths = 0
	c.collisionBirths = 0
	c.expiredDeaths = 0
	c.arrivedDeaths = 0
	c.injected = 0
	c.capBlocked = 0
	c.cycleResets = 0
	c.windowStartTick = currentTick

	return stats
}

// WindowTicks returns the window duration in ticks.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
