package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Sim.Variant != VariantPulse {
		t.Errorf("default variant = %q, want %q", cfg.Sim.Variant, VariantPulse)
	}
	if cfg.Branch.MaxBranches <= 0 {
		t.Errorf("default max_branches = %d, want positive", cfg.Branch.MaxBranches)
	}
	if cfg.Branch.GrowSpeed <= 0 {
		t.Errorf("default grow_speed = %v, want positive", cfg.Branch.GrowSpeed)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("sim:\n  variant: tribes\nbranch:\n  max_branches: 120\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}

	if cfg.Sim.Variant != VariantTribes {
		t.Errorf("variant = %q, want tribes", cfg.Sim.Variant)
	}
	if cfg.Branch.MaxBranches != 120 {
		t.Errorf("max_branches = %d, want 120", cfg.Branch.MaxBranches)
	}
	// Keys absent from the override keep their defaults
	if cfg.Branch.MaxDepth != 7 {
		t.Errorf("max_depth = %d, want default 7", cfg.Branch.MaxDepth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load with missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults pass", func(c *Config) {}, nil},
		{"zero max branches", func(c *Config) { c.Branch.MaxBranches = 0 }, ErrMaxBranches},
		{"negative max branches", func(c *Config) { c.Branch.MaxBranches = -5 }, ErrMaxBranches},
		{"negative max depth", func(c *Config) { c.Branch.MaxDepth = -1 }, ErrMaxDepth},
		{"zero max depth ok", func(c *Config) { c.Branch.MaxDepth = 0 }, nil},
		{"unknown variant", func(c *Config) { c.Sim.Variant = "spiral" }, ErrVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load(\"\") failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Derived.WorldW32 != float32(cfg.Screen.Width) {
		t.Errorf("WorldW32 = %v, want screen width %d", cfg.Derived.WorldW32, cfg.Screen.Width)
	}
	wantCycle := int(cfg.Phase.CycleSeconds * float64(cfg.Sim.TPS))
	if cfg.Derived.CycleTicks != wantCycle {
		t.Errorf("CycleTicks = %d, want %d", cfg.Derived.CycleTicks, wantCycle)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	cfg.Branch.MaxBranches = 333

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config failed: %v", err)
	}
	if loaded.Branch.MaxBranches != 333 {
		t.Errorf("round-trip max_branches = %d, want 333", loaded.Branch.MaxBranches)
	}
}
