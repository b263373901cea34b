package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/sim"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the visible simulation state at one tick, for offline
// inspection and for reproducing a run from its seed.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Variant string `json:"variant"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`

	Tick      int  `json:"tick"`
	Expanding bool `json:"expanding"`

	Branches   []BranchRecord    `json:"branches"`
	Attractors []AttractorRecord `json:"attractors"`
}

// BranchRecord holds one branch's complete state.
type BranchRecord struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	PrevX   float32 `json:"prev_x"`
	PrevY   float32 `json:"prev_y"`
	VelX    float32 `json:"vel_x"`
	VelY    float32 `json:"vel_y"`
	Depth   int32   `json:"depth"`
	Life    int32   `json:"life"`
	Lineage uint8   `json:"lineage"`
}

// AttractorRecord holds one attractor position.
type AttractorRecord struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// BuildSnapshot captures the current state of a simulation.
func BuildSnapshot(s *sim.Simulation, cfg *config.Config) *Snapshot {
	w, h := s.WorldSize()
	snap := &Snapshot{
		Version:     SnapshotVersion,
		Seed:        s.Seed(),
		Variant:     cfg.Sim.Variant,
		WorldWidth:  w,
		WorldHeight: h,
		Tick:        s.TickCount(),
		Expanding:   s.Expanding(),
	}

	for _, b := range s.AppendBranchStates(nil) {
		snap.Branches = append(snap.Branches, BranchRecord{
			X: b.X, Y: b.Y,
			PrevX: b.PrevX, PrevY: b.PrevY,
			VelX: b.VelX, VelY: b.VelY,
			Depth:   b.Depth,
			Life:    b.Life,
			Lineage: b.Lineage,
		})
	}
	for _, a := range s.AppendAttractors(nil) {
		snap.Attractors = append(snap.Attractors, AttractorRecord{X: a.X, Y: a.Y})
	}

	return snap
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Tick)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
