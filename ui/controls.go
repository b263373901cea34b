package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/mycelia/config"
)

// ControlsState carries the adjustable settings through a Draw call. Draw
// returns a copy with any edits applied; the request flags are one-shot
// and the caller clears them once handled.
type ControlsState struct {
	StepsPerUpdate int
	TrailOpacity   float32
	ShowAttractors bool
	Variant        string

	VariantRequested  bool
	ReseedRequested   bool
	SnapshotRequested bool
}

// ControlsPanel renders the interactive settings panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the possibly edited state.
func (c *ControlsPanel) Draw(state ControlsState) ControlsState {
	if !c.visible {
		return state
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := padding*2 + lineHeight + 4 + 40*2 + 30*2 + 24
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	w := c.width - padding*2

	y := c.y + padding
	rl.DrawText("Controls", x, y, 16, rl.White)
	y += lineHeight + 4

	// Steps per frame
	rl.DrawText("Steps per frame", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	steps := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w - 40), Height: 16},
		"1", "10",
		float32(state.StepsPerUpdate), 1, 10,
	)
	rl.DrawText(fmt.Sprintf("%d", state.StepsPerUpdate), x+w-30, y+2, r.Theme.FontSize, r.Theme.ValueColor)
	if int(steps) != state.StepsPerUpdate {
		state.StepsPerUpdate = int(steps)
	}
	y += 24

	// Trail fade
	rl.DrawText("Trail fade", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	fade := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w - 40), Height: 16},
		"slow", "fast",
		state.TrailOpacity, 0.005, 0.25,
	)
	rl.DrawText(fmt.Sprintf("%.3f", state.TrailOpacity), x+w-38, y+2, r.Theme.FontSize, r.Theme.ValueColor)
	if fade != state.TrailOpacity {
		state.TrailOpacity = fade
	}
	y += 24

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: 24}, "Variant: "+state.Variant) {
		state.Variant = nextVariant(state.Variant)
		state.VariantRequested = true
	}
	y += 30

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(w), Height: 24},
		toggleText(state.ShowAttractors, "Attractors: on", "Attractors: off")) {
		state.ShowAttractors = !state.ShowAttractors
	}
	y += 30

	half := float32(w-6) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 24}, "Reseed") {
		state.ReseedRequested = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 6, Y: float32(y), Width: half, Height: 24}, "Snapshot") {
		state.SnapshotRequested = true
	}

	return state
}

// nextVariant cycles pulse, convergent, tribes.
func nextVariant(v string) string {
	switch v {
	case config.VariantPulse:
		return config.VariantConvergent
	case config.VariantConvergent:
		return config.VariantTribes
	default:
		return config.VariantPulse
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
