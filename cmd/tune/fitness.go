package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/sim"
	"github.com/pthm-cable/mycelia/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	targetPop   float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
		targetPop:   float64(baseCfg.Branch.MaxBranches) * targetOccupancy,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A run counts as functionally extinct when the population stays below
// minViablePop for extinctionGraceSec consecutive sim-seconds. The warmup
// gives the founding lineages time to establish before the check applies.
const (
	minViablePop       = 8
	extinctionGraceSec = 15.0
	warmupSec          = 10.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int // ticks before extinction (or maxTicks if survived)
	windows       []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := fe.computeQuality(result.windows)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result.survivalTicks, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until extinction or
// maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	s, err := sim.New(cfg, sim.Options{Seed: seed})
	if err != nil {
		// A vector the bounds let through but Validate rejects scores worst.
		return result
	}

	collector := telemetry.NewCollector(fe.statsWindow, cfg.Sim.TPS)

	warmupTicks := int(warmupSec * float64(cfg.Sim.TPS))
	graceTicks := int(extinctionGraceSec * float64(cfg.Sim.TPS))
	belowTicks := 0

	var states []sim.BranchState
	for s.TickCount() < fe.maxTicks {
		stats := s.Step()
		collector.Record(stats)
		if collector.ShouldFlush(stats.Tick) {
			states = s.AppendBranchStates(states[:0])
			result.windows = append(result.windows, collector.Flush(stats.Tick, stats.Expanding, states))
		}

		if stats.Tick < warmupTicks {
			continue
		}

		// Hard extinction. Injection could eventually refill the world,
		// but a visual that goes fully dark has already failed.
		if stats.Population == 0 {
			result.survivalTicks = stats.Tick
			return result
		}

		// Functional extinction: population pinned below viability too long
		if stats.Population < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= graceTicks {
			result.survivalTicks = stats.Tick
			return result
		}
	}

	// Survived the full run
	result.survivalTicks = fe.maxTicks
	return result
}

// copyConfig clones the base config. Config carries only value fields, so a
// shallow copy is a deep one.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cp := *fe.baseConfig
	return &cp
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.5 × quality))
// Tribes never contracts, so most viable vectors survive the full run and
// quality is what separates them; survival still dominates when a vector
// collapses early.
func (fe *FitnessEvaluator) computeFitness(survivalTicks int, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.5*quality))
}

// Quality component weights.
const (
	qualityWeightOccupancy = 0.45
	qualityWeightStability = 0.35
	qualityWeightLineages  = 0.20

	qualityWarmupWindows = 3    // skip first N windows (warmup)
	qualityMinPop        = 8    // exclude windows below this population
	targetOccupancy      = 0.65 // desired fraction of the branch cap
	stabilityScale       = 0.25 // population CV at which stability falls to 1/e
)

// computeQuality computes steady-state quality ∈ [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	founding := float64(fe.baseConfig.Tribes.Lineages)

	var occupancySum, lineageSum float64
	var count int
	pops := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Population < qualityMinPop {
			continue
		}
		pops = append(pops, float64(w.Population))

		// 1. Occupancy: log-space distance from the target population
		logErr := math.Log(float64(w.Population) / fe.targetPop)
		occupancySum += math.Exp(-logErr * logErr)

		// 3. Lineage turnover, saturating in the live lineage count
		lineageSum += 1.0 - math.Exp(-float64(w.ActiveLineages)/founding)

		count++
	}

	// No valid windows → zero quality
	if count == 0 {
		return 0
	}

	occupancyScore := occupancySum / float64(count)
	lineageScore := lineageSum / float64(count)

	// 2. Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-(cv / stabilityScale) * (cv / stabilityScale))
		}
	}

	quality := qualityWeightOccupancy*occupancyScore +
		qualityWeightStability*stabilityScore +
		qualityWeightLineages*lineageScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
