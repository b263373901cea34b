package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/sim"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		Seed:        42,
		Variant:     config.VariantPulse,
		WorldWidth:  1280,
		WorldHeight: 720,
		Tick:        1000,
		Expanding:   true,
		Branches: []BranchRecord{
			{X: 150, Y: 250, PrevX: 149, PrevY: 249, VelX: 0.5, VelY: -0.3, Depth: 2, Life: 80, Lineage: 1},
			{X: 400, Y: 300, PrevX: 401, PrevY: 301, VelX: -1.5, VelY: 0.75, Depth: 0, Life: 200, Lineage: 0},
		},
		Attractors: []AttractorRecord{{X: 640, Y: 360}},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.Seed != snapshot.Seed {
		t.Errorf("Seed mismatch: got %d, want %d", loaded.Seed, snapshot.Seed)
	}
	if loaded.Variant != snapshot.Variant {
		t.Errorf("Variant mismatch: got %s, want %s", loaded.Variant, snapshot.Variant)
	}
	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if !loaded.Expanding {
		t.Error("Expanding not loaded")
	}
	if len(loaded.Branches) != len(snapshot.Branches) {
		t.Fatalf("Branches count mismatch: got %d, want %d", len(loaded.Branches), len(snapshot.Branches))
	}
	for i := range snapshot.Branches {
		if loaded.Branches[i] != snapshot.Branches[i] {
			t.Errorf("Branch %d mismatch: got %+v, want %+v", i, loaded.Branches[i], snapshot.Branches[i])
		}
	}
	if len(loaded.Attractors) != 1 || loaded.Attractors[0] != snapshot.Attractors[0] {
		t.Errorf("Attractors mismatch: got %+v, want %+v", loaded.Attractors, snapshot.Attractors)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    3000,
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestBuildSnapshotFromSimulation(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s, err := sim.New(cfg, sim.Options{Seed: 7})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		s.Step()
	}

	snap := BuildSnapshot(s, cfg)

	if snap.Version != SnapshotVersion {
		t.Errorf("Version = %d, want %d", snap.Version, SnapshotVersion)
	}
	if snap.Seed != 7 {
		t.Errorf("Seed = %d, want 7", snap.Seed)
	}
	if snap.Variant != cfg.Sim.Variant {
		t.Errorf("Variant = %s, want %s", snap.Variant, cfg.Sim.Variant)
	}
	if snap.Tick != s.TickCount() {
		t.Errorf("Tick = %d, want %d", snap.Tick, s.TickCount())
	}
	if len(snap.Branches) != s.Count() {
		t.Errorf("Branches = %d, want %d", len(snap.Branches), s.Count())
	}
	if len(snap.Attractors) != 1 {
		t.Errorf("Attractors = %d, want 1 for the pulse sink", len(snap.Attractors))
	}
	w, h := s.WorldSize()
	if snap.WorldWidth != w || snap.WorldHeight != h {
		t.Errorf("world = %vx%v, want %vx%v", snap.WorldWidth, snap.WorldHeight, w, h)
	}
}
