package sim

// phaseClock derives the expand/contract phase from the tick count alone.
// The first half of each cycle expands, the second half contracts. An
// endless clock never contracts; the tribes variant runs on one.
type phaseClock struct {
	tick       int
	cycleTicks int
	endless    bool
}

// Advance moves the clock one tick and reports whether this tick starts a
// new cycle, which is the re-entry point into the expanding phase.
func (c *phaseClock) Advance() bool {
	c.tick++
	if c.endless || c.cycleTicks <= 0 {
		return false
	}
	return c.tick%c.cycleTicks == 0
}

// Expanding reports whether branches grow this tick.
func (c *phaseClock) Expanding() bool {
	if c.endless || c.cycleTicks <= 0 {
		return true
	}
	return c.tick%c.cycleTicks < c.cycleTicks/2
}

// Tick returns the current tick count.
func (c *phaseClock) Tick() int { return c.tick }
