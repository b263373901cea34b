package viewer

import (
	"log/slog"

	"github.com/pthm-cable/mycelia/telemetry"
)

// flushTelemetry emits a stats window when one is due.
func (v *Viewer) flushTelemetry() {
	if !v.collector.ShouldFlush(v.sim.TickCount()) {
		return
	}

	v.branches = v.sim.AppendBranchStates(v.branches[:0])
	stats := v.collector.Flush(v.sim.TickCount(), v.sim.Expanding(), v.branches)
	perfStats := v.perf.Stats()
	v.lastWindow = stats

	if v.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if v.output != nil {
		if err := v.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := v.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot writes the full simulation state to the snapshot directory.
func (v *Viewer) saveSnapshot() {
	dir := v.opts.SnapshotDir
	if dir == "" {
		dir = "snapshots"
	}

	snapshot := telemetry.BuildSnapshot(v.sim, v.cfg)
	path, err := telemetry.SaveSnapshot(snapshot, dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", v.sim.TickCount())
}
