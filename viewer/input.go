package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/mycelia/config"
)

// handleInput processes keyboard input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < maxStepsPerUpd {
		v.stepsPerUpdate++
	}

	// Variant hotkeys
	if rl.IsKeyPressed(rl.KeyOne) {
		v.switchVariant(config.VariantPulse)
	}
	if rl.IsKeyPressed(rl.KeyTwo) {
		v.switchVariant(config.VariantConvergent)
	}
	if rl.IsKeyPressed(rl.KeyThree) {
		v.switchVariant(config.VariantTribes)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.reseed()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		v.saveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		v.controlsState.ShowAttractors = !v.controlsState.ShowAttractors
	}
	if rl.IsKeyPressed(rl.KeyT) {
		v.statsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.controls.Toggle()
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	// A world sized to the screen follows the window; a fixed world keeps
	// its size and only the viewport changes.
	if v.cfg.World.Width == 0 || v.cfg.World.Height == 0 {
		v.sim.Resize(w, h)
		v.camera.SetWorld(v.sim.WorldSize())
	}
	v.camera.Resize(w, h)
	v.trails.Resize(int32(w), int32(h))
}

// handleCameraInput processes camera pan/zoom controls. Any camera change
// invalidates the accumulated trails, which live in screen space.
func (v *Viewer) handleCameraInput() {
	prevX, prevY, prevZoom := v.camera.X, v.camera.Y, v.camera.Zoom

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		v.camera.ZoomBy(1.0 + wheelMove*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}

	if v.camera.X != prevX || v.camera.Y != prevY || v.camera.Zoom != prevZoom {
		v.trails.ClearTrails()
	}
}
