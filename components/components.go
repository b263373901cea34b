// Package components defines ECS components for the simulation.
package components

// Position represents a branch tip's world position.
type Position struct {
	X, Y float32
}

// Velocity represents a branch tip's velocity in world units per tick.
type Velocity struct {
	X, Y float32
}

// Trail holds the tip position from the previous tick. The segment drawn
// each tick runs from Trail to Position.
type Trail struct {
	X, Y float32
}

// Branch holds branch lifecycle state.
type Branch struct {
	Depth   int32 // Branching generation, 0 for seeds
	Life    int32 // Remaining ticks; the branch is removed when this reaches 0
	Lineage uint8 // Colour tribe; children inherit
}
