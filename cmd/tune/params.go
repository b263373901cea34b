// Package main provides CMA-ES tuning for the stochastic growth constants.
package main

import (
	"github.com/pthm-cable/mycelia/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Spawning
			{Name: "spawn_base_prob", Path: "spawn.base_prob", Min: 0.002, Max: 0.08, Default: 0.02},
			{Name: "spawn_elite_bias", Path: "spawn.elite_bias", Min: 0.0, Max: 1.0, Default: 0.85},
			{Name: "spawn_elite_mult", Path: "spawn.elite_multiplier", Min: 1.0, Max: 12.0, Default: 6.0},
			// Collision reproduction
			{Name: "collision_repro", Path: "collision.reproduction_rate", Min: 0.0, Max: 1.0, Default: 0.25},
			// Lifespan range
			{Name: "life_min", Path: "branch.life_min", Min: 40, Max: 400, Default: 140},
			{Name: "life_max", Path: "branch.life_max", Min: 120, Max: 900, Default: 320},
			// Steering noise
			{Name: "wander", Path: "growth.wander", Min: 0.0, Max: 2.0, Default: 0.6},
			{Name: "branch_angle", Path: "growth.branch_angle", Min: 0.1, Max: 1.6, Default: 0.9},
			// Lineage injection
			{Name: "inject_seconds", Path: "tribes.inject_seconds", Min: 2.0, Max: 30.0, Default: 7.0},
			{Name: "inject_count", Path: "tribes.inject_count", Min: 1, Max: 12, Default: 3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct and recomputes
// its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	// Clamp values to ensure they're within bounds
	clamped := pv.Clamp(values)

	// Order must match Specs order.
	cfg.Spawn.BaseProb = clamped[0]
	cfg.Spawn.EliteBias = clamped[1]
	cfg.Spawn.EliteMultiplier = clamped[2]

	cfg.Collision.ReproductionRate = clamped[3]

	cfg.Branch.LifeMin = int(clamped[4])
	cfg.Branch.LifeMax = int(clamped[5])
	// Independent draws can invert the range; keep it ordered.
	if cfg.Branch.LifeMax < cfg.Branch.LifeMin {
		cfg.Branch.LifeMax = cfg.Branch.LifeMin
	}

	cfg.Growth.Wander = clamped[6]
	cfg.Growth.BranchAngle = clamped[7]

	cfg.Tribes.InjectSeconds = clamped[8]
	cfg.Tribes.InjectCount = int(clamped[9])

	// inject_seconds feeds a derived tick interval
	cfg.ComputeDerived()
}
