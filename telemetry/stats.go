package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// State sampled at window end
	Expanding  bool `csv:"expanding"`
	Population int  `csv:"population"`

	// Events during window
	SpawnBirths     int `csv:"spawn_births"`
	CollisionBirths int `csv:"collision_births"`
	ExpiredDeaths   int `csv:"expired_deaths"`
	ArrivedDeaths   int `csv:"arrived_deaths"`
	Injected        int `csv:"injected"`
	CapBlocked      int `csv:"cap_blocked"`
	CycleResets     int `csv:"cycle_resets"`

	// Depth distribution (sampled at window end)
	DepthMean float64 `csv:"depth_mean"`
	DepthStd  float64 `csv:"depth_std"`
	DepthP50  float64 `csv:"depth_p50"`
	DepthP90  float64 `csv:"depth_p90"`
	DepthMax  int     `csv:"depth_max"`

	// Remaining life (sampled at window end)
	LifeMean float64 `csv:"life_mean"`

	// Lineage tracking
	ActiveLineages int `csv:"active_lineages"`
}

// ComputeDepthStats calculates mean, standard deviation, and percentiles
// from depth values. Returns zeros for an empty slice.
func ComputeDepthStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Bool("expanding", s.Expanding),
		slog.Int("population", s.Population),
		slog.Int("spawn_births", s.SpawnBirths),
		slog.Int("collision_births", s.CollisionBirths),
		slog.Int("expired_deaths", s.ExpiredDeaths),
		slog.Int("arrived_deaths", s.ArrivedDeaths),
		slog.Int("injected", s.Injected),
		slog.Int("cap_blocked", s.CapBlocked),
		slog.Int("cycle_resets", s.CycleResets),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_std", s.DepthStd),
		slog.Float64("depth_p50", s.DepthP50),
		slog.Float64("depth_p90", s.DepthP90),
		slog.Int("depth_max", s.DepthMax),
		slog.Float64("life_mean", s.LifeMean),
		slog.Int("active_lineages", s.ActiveLineages),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"expanding", s.Expanding,
		"population", s.Population,
		"spawn_births", s.SpawnBirths,
		"collision_births", s.CollisionBirths,
		"expired_deaths", s.ExpiredDeaths,
		"arrived_deaths", s.ArrivedDeaths,
		"injected", s.Injected,
		"cap_blocked", s.CapBlocked,
		"cycle_resets", s.CycleResets,
		"depth_mean", s.DepthMean,
		"depth_std", s.DepthStd,
		"depth_p50", s.DepthP50,
		"depth_p90", s.DepthP90,
		"depth_max", s.DepthMax,
		"life_mean", s.LifeMean,
		"active_lineages", s.ActiveLineages,
	)
}
