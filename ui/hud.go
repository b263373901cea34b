package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Tick          int
	Expanding     bool
	Population    int
	MaxBranches   int
	Lineages      int
	BirthsPerSec  float64
	DeathsPerSec  float64
	Speed         int
	FPS           int32
	AvgStepMicros int64
	Paused        bool
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	// Population and churn
	rl.DrawText(
		fmt.Sprintf("Branches: %d / %d | Lineages: %d | Births/s: %.1f | Deaths/s: %.1f",
			data.Population, data.MaxBranches, data.Lineages, data.BirthsPerSec, data.DeathsPerSec),
		10, 35, 16, rl.LightGray,
	)

	// Simulation info
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Step: %dus",
			data.Tick, data.Speed, data.FPS, data.AvgStepMicros),
		10, 55, 16, rl.LightGray,
	)

	// Phase status
	statusText := "Expanding"
	statusColor := rl.Green
	if !data.Expanding {
		statusText = "Contracting"
		statusColor = rl.Orange
	}
	if data.Paused {
		statusText = "PAUSED"
		statusColor = rl.Yellow
	}
	rl.DrawText(statusText, 10, 75, 16, statusColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanelData holds the last flushed telemetry window for display.
type StatsPanelData struct {
	WindowEndTick   int
	Population      int
	MaxBranches     int
	SpawnBirths     int
	CollisionBirths int
	ExpiredDeaths   int
	ArrivedDeaths   int
	Injected        int
	CapBlocked      int
	CycleResets     int
	DepthMean       float64
	DepthStd        float64
	DepthP50        float64
	DepthP90        float64
	DepthMax        int
	ActiveLineages  int
}

// StatsPanel renders the last telemetry window as a side panel.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewStatsPanel creates a new telemetry stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *StatsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *StatsPanel) IsVisible() bool {
	return p.visible
}

// Draw renders the stats panel and returns the Y below it.
func (p *StatsPanel) Draw(data StatsPanelData) int32 {
	if !p.visible {
		return p.y
	}

	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := lineHeight*17 + padding*2
	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding
	w := p.width - padding*2

	rl.DrawText("Telemetry", x, y, 16, rl.White)
	y += lineHeight + 4

	frac := float32(0)
	if data.MaxBranches > 0 {
		frac = float32(data.Population) / float32(data.MaxBranches)
	}
	y = r.DrawBar(x, y, "Pop", frac, w)

	y = r.DrawSectionHeader(x, y, "Window")
	y = r.DrawLabelValue(x, y, "End tick", fmt.Sprintf("%d", data.WindowEndTick))
	y = r.DrawLabelValue(x, y, "Spawned", fmt.Sprintf("%d", data.SpawnBirths))
	y = r.DrawLabelValue(x, y, "Collided", fmt.Sprintf("%d", data.CollisionBirths))
	y = r.DrawLabelValue(x, y, "Expired", fmt.Sprintf("%d", data.ExpiredDeaths))
	y = r.DrawLabelValue(x, y, "Arrived", fmt.Sprintf("%d", data.ArrivedDeaths))
	y = r.DrawLabelValue(x, y, "Injected", fmt.Sprintf("%d", data.Injected))
	y = r.DrawLabelValue(x, y, "Blocked", fmt.Sprintf("%d", data.CapBlocked))
	y = r.DrawLabelValue(x, y, "Resets", fmt.Sprintf("%d", data.CycleResets))

	y = r.DrawSectionHeader(x, y, "Depth")
	y = r.DrawLabelValue(x, y, "Mean", fmt.Sprintf("%.2f", data.DepthMean))
	y = r.DrawLabelValue(x, y, "Std", fmt.Sprintf("%.2f", data.DepthStd))
	y = r.DrawLabelValue(x, y, "P50 / P90", fmt.Sprintf("%.0f / %.0f", data.DepthP50, data.DepthP90))
	y = r.DrawLabelValue(x, y, "Max", fmt.Sprintf("%d", data.DepthMax))
	y = r.DrawLabelValue(x, y, "Lineages", fmt.Sprintf("%d", data.ActiveLineages))

	return y
}
