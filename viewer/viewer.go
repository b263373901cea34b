// Package viewer owns the run loop: a fixed-tick simulation driving the
// trail renderer, camera, HUD, and telemetry output. Headless mode runs
// the same simulation and telemetry path without a window.
package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/mycelia/camera"
	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/renderer"
	"github.com/pthm-cable/mycelia/sim"
	"github.com/pthm-cable/mycelia/telemetry"
	"github.com/pthm-cable/mycelia/ui"
)

const (
	panelWidth     = 240
	perfWindow     = 120 // step samples retained for perf stats
	maxStepsPerUpd = 10

	controlsLegend = "space pause | , . speed | 1/2/3 variant | arrows pan | wheel zoom | home reset | " +
		"a attractors | t stats | c controls | r reseed | s snapshot | f11 fullscreen"
)

// Options carries run-scoped settings from the command line.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	StepsPerUpdate int
	Headless       bool
}

// Viewer drives the simulation and, unless headless, the window.
type Viewer struct {
	cfg  *config.Config
	opts Options
	seed int64

	sim *sim.Simulation

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	lastWindow telemetry.WindowStats
	branches   []sim.BranchState // flush scratch

	// Graphics state, nil when headless
	camera        *camera.Camera
	trails        *renderer.Renderer
	hud           *ui.HUD
	statsPanel    *ui.StatsPanel
	controls      *ui.ControlsPanel
	controlsState ui.ControlsState

	paused         bool
	stepsPerUpdate int

	screenWidth  float32
	screenHeight float32
}

// New builds a viewer. In graphical mode the raylib window must already
// exist; headless mode never touches the GPU.
func New(cfg *config.Config, opts Options) (*Viewer, error) {
	// Private copy so variant switches don't leak into the caller's config.
	own := *cfg

	v := &Viewer{
		cfg:            &own,
		opts:           opts,
		seed:           opts.Seed,
		collector:      telemetry.NewCollector(opts.StatsWindowSec, own.Sim.TPS),
		perf:           telemetry.NewPerfCollector(perfWindow),
		stepsPerUpdate: opts.StepsPerUpdate,
	}
	if v.stepsPerUpdate < 1 {
		v.stepsPerUpdate = 1
	}
	if v.stepsPerUpdate > maxStepsPerUpd {
		v.stepsPerUpdate = maxStepsPerUpd
	}

	s, err := sim.New(v.cfg, sim.Options{Seed: v.seed})
	if err != nil {
		return nil, err
	}
	v.sim = s

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	v.output = out
	if err := v.output.WriteConfig(v.cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		v.initGraphics()
	}

	return v, nil
}

// initGraphics builds the window-dependent pieces.
func (v *Viewer) initGraphics() {
	v.screenWidth = float32(rl.GetScreenWidth())
	v.screenHeight = float32(rl.GetScreenHeight())

	worldW, worldH := v.sim.WorldSize()
	v.camera = camera.New(v.screenWidth, v.screenHeight, worldW, worldH)
	v.trails = renderer.New(int32(v.screenWidth), int32(v.screenHeight), v.cfg)
	v.hud = ui.NewHUD()

	panelX := int32(v.screenWidth) - panelWidth - 10
	v.statsPanel = ui.NewStatsPanel(panelX, 10, panelWidth)
	v.controls = ui.NewControlsPanel(panelX, 10, panelWidth)
	v.controlsState = ui.ControlsState{
		StepsPerUpdate: v.stepsPerUpdate,
		TrailOpacity:   v.trails.TrailOpacity(),
		ShowAttractors: v.cfg.Render.ShowAttractors,
		Variant:        v.cfg.Sim.Variant,
	}
}

// Update processes input and advances the simulation. One call per frame.
func (v *Viewer) Update() {
	v.handleInput()

	if v.paused {
		return
	}

	for i := 0; i < v.stepsPerUpdate; i++ {
		v.stepOnce()
	}
}

// UpdateHeadless advances the simulation without any window machinery.
func (v *Viewer) UpdateHeadless() {
	for i := 0; i < v.stepsPerUpdate; i++ {
		v.stepOnce()
	}
}

// stepOnce runs a single tick and feeds trails and telemetry.
func (v *Viewer) stepOnce() {
	v.perf.StartStep()
	stats := v.sim.Step()
	v.perf.EndStep()

	v.collector.Record(stats)
	if v.trails != nil {
		v.trails.Accumulate(v.sim, v.camera)
	}
	v.flushTelemetry()
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.perf.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(renderer.Background)

	v.trails.Present(v.sim, v.camera, v.controlsState.ShowAttractors)

	v.hud.Draw(v.hudData())
	v.hud.DrawControls(int32(v.screenWidth), int32(v.screenHeight), controlsLegend)

	v.drawPanels()

	rl.EndDrawing()
}

// drawPanels lays out the right-side panels and applies any edits made
// through the controls panel.
func (v *Viewer) drawPanels() {
	panelX := int32(v.screenWidth) - panelWidth - 10

	y := int32(10)
	v.statsPanel.SetPosition(panelX, y)
	if v.statsPanel.IsVisible() {
		y = v.statsPanel.Draw(v.statsData()) + 14
	}

	v.controls.SetPosition(panelX, y)
	if !v.controls.IsVisible() {
		return
	}

	v.controlsState.StepsPerUpdate = v.stepsPerUpdate
	prevOpacity := v.controlsState.TrailOpacity
	state := v.controls.Draw(v.controlsState)

	v.stepsPerUpdate = state.StepsPerUpdate
	if state.TrailOpacity != prevOpacity {
		v.trails.SetTrailOpacity(state.TrailOpacity)
	}
	if state.VariantRequested {
		state.VariantRequested = false
		v.switchVariant(state.Variant)
	}
	if state.ReseedRequested {
		state.ReseedRequested = false
		v.reseed()
	}
	if state.SnapshotRequested {
		state.SnapshotRequested = false
		v.saveSnapshot()
	}
	v.controlsState = state
}

// hudData assembles the per-frame HUD contents.
func (v *Viewer) hudData() ui.HUDData {
	windowSec := float64(v.collector.WindowTicks()) / float64(v.cfg.Sim.TPS)
	var birthsPerSec, deathsPerSec float64
	if windowSec > 0 {
		birthsPerSec = float64(v.lastWindow.SpawnBirths+v.lastWindow.CollisionBirths) / windowSec
		deathsPerSec = float64(v.lastWindow.ExpiredDeaths+v.lastWindow.ArrivedDeaths) / windowSec
	}

	return ui.HUDData{
		Title:         "Mycelia [" + v.cfg.Sim.Variant + "]",
		Tick:          v.sim.TickCount(),
		Expanding:     v.sim.Expanding(),
		Population:    v.sim.Count(),
		MaxBranches:   v.cfg.Branch.MaxBranches,
		Lineages:      v.lastWindow.ActiveLineages,
		BirthsPerSec:  birthsPerSec,
		DeathsPerSec:  deathsPerSec,
		Speed:         v.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		AvgStepMicros: v.perf.Stats().AvgStepDuration.Microseconds(),
		Paused:        v.paused,
		ScreenWidth:   int32(v.screenWidth),
		ScreenHeight:  int32(v.screenHeight),
	}
}

// statsData maps the last flushed window onto the stats panel.
func (v *Viewer) statsData() ui.StatsPanelData {
	w := v.lastWindow
	return ui.StatsPanelData{
		WindowEndTick:   w.WindowEndTick,
		Population:      v.sim.Count(),
		MaxBranches:     v.cfg.Branch.MaxBranches,
		SpawnBirths:     w.SpawnBirths,
		CollisionBirths: w.CollisionBirths,
		ExpiredDeaths:   w.ExpiredDeaths,
		ArrivedDeaths:   w.ArrivedDeaths,
		Injected:        w.Injected,
		CapBlocked:      w.CapBlocked,
		CycleResets:     w.CycleResets,
		DepthMean:       w.DepthMean,
		DepthStd:        w.DepthStd,
		DepthP50:        w.DepthP50,
		DepthP90:        w.DepthP90,
		DepthMax:        w.DepthMax,
		ActiveLineages:  w.ActiveLineages,
	}
}

// rebuildSim replaces the simulation and resets per-run telemetry.
func (v *Viewer) rebuildSim() {
	s, err := sim.New(v.cfg, sim.Options{Seed: v.seed})
	if err != nil {
		slog.Error("failed to rebuild simulation", "error", err)
		return
	}
	v.sim = s
	v.collector = telemetry.NewCollector(v.opts.StatsWindowSec, v.cfg.Sim.TPS)
	v.lastWindow = telemetry.WindowStats{}
	if v.trails != nil {
		v.trails.ClearTrails()
	}
}

// reseed restarts the run on the next seed in the sequence, keeping runs
// reproducible from the CLI seed.
func (v *Viewer) reseed() {
	v.seed++
	v.rebuildSim()
	slog.Info("reseeded", "seed", v.seed)
}

// switchVariant rebuilds the simulation under a different variant.
func (v *Viewer) switchVariant(variant string) {
	if variant == v.cfg.Sim.Variant {
		return
	}
	v.cfg.Sim.Variant = variant
	v.controlsState.Variant = variant
	v.rebuildSim()
	slog.Info("variant switched", "variant", variant, "seed", v.seed)
}

// Tick returns the current simulation tick.
func (v *Viewer) Tick() int {
	return v.sim.TickCount()
}

// Unload releases GPU resources and closes output files.
func (v *Viewer) Unload() {
	if v.trails != nil {
		v.trails.Unload()
	}
	if err := v.output.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
}
