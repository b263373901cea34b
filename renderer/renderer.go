// Package renderer draws the branch network into an accumulating trail canvas.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/mycelia/camera"
	"github.com/pthm-cable/mycelia/config"
	"github.com/pthm-cable/mycelia/field"
	"github.com/pthm-cable/mycelia/sim"
)

// cullMargin pads visibility checks so segments straddling the viewport
// edge still draw. World units, before zoom.
const cullMargin = 8.0

// Renderer accumulates branch segments into an offscreen canvas so trails
// persist between frames, then composites the canvas to the screen.
type Renderer struct {
	canvas rl.RenderTexture2D
	width  int32
	height int32

	trailOpacity    float32
	lineThickness   float32
	attractorRadius float32
	maxDepth        int32

	segs       []sim.Segment
	attractors []field.Attractor
}

// New creates a renderer with a canvas matching the current screen size.
// Must be called after the raylib window is created.
func New(width, height int32, cfg *config.Config) *Renderer {
	r := &Renderer{
		canvas:          rl.LoadRenderTexture(width, height),
		width:           width,
		height:          height,
		trailOpacity:    float32(cfg.Render.TrailOpacity),
		lineThickness:   float32(cfg.Render.LineThickness),
		attractorRadius: float32(cfg.Render.AttractorRadius),
		maxDepth:        int32(cfg.Branch.MaxDepth),
	}
	r.ClearTrails()
	return r
}

// SetTrailOpacity adjusts the per-frame fade. Lower values leave longer trails.
func (r *Renderer) SetTrailOpacity(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	r.trailOpacity = v
}

// TrailOpacity returns the current per-frame fade alpha.
func (r *Renderer) TrailOpacity() float32 { return r.trailOpacity }

// Accumulate fades the canvas one step toward the background and strokes
// the current tick's segments on top. Call once per simulation advance;
// skipping it while paused freezes the trails in place.
func (r *Renderer) Accumulate(s *sim.Simulation, cam *camera.Camera) {
	r.segs = s.AppendSegments(r.segs[:0])

	rl.BeginTextureMode(r.canvas)

	rl.DrawRectangle(0, 0, r.width, r.height, rl.Fade(Background, r.trailOpacity))

	thick := r.lineThickness * cam.Zoom
	if thick < 1 {
		thick = 1
	}

	for i := range r.segs {
		seg := &r.segs[i]
		if !cam.IsVisible(seg.To.X, seg.To.Y, cullMargin) {
			continue
		}

		x1, y1 := cam.WorldToScreen(seg.From.X, seg.From.Y)
		x2, y2 := cam.WorldToScreen(seg.To.X, seg.To.Y)
		color := lineageColor(seg.Lineage, seg.Depth, r.maxDepth)
		rl.DrawLineEx(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, thick, color)
	}

	rl.EndTextureMode()
}

// Present composites the trail canvas to the screen and overlays attractor
// markers when requested. Call between BeginDrawing and EndDrawing.
func (r *Renderer) Present(s *sim.Simulation, cam *camera.Camera, showAttractors bool) {
	// Render textures are stored bottom-up; the negative source height flips them.
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.width), Height: -float32(r.height)}
	rl.DrawTextureRec(r.canvas.Texture, src, rl.Vector2{X: 0, Y: 0}, rl.White)

	if !showAttractors {
		return
	}

	r.attractors = s.AppendAttractors(r.attractors[:0])
	radius := r.attractorRadius * cam.Zoom
	marker := rl.Fade(attractorColor, 0.6)
	for _, a := range r.attractors {
		if !cam.IsVisible(a.X, a.Y, r.attractorRadius) {
			continue
		}
		sx, sy := cam.WorldToScreen(a.X, a.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), radius, marker)
	}
}

// ClearTrails resets the canvas to the background color. Use after camera
// moves, reseeds, or variant switches so stale strokes don't linger.
func (r *Renderer) ClearTrails() {
	rl.BeginTextureMode(r.canvas)
	rl.ClearBackground(Background)
	rl.EndTextureMode()
}

// Resize recreates the canvas for a new screen size. Trails are lost.
func (r *Renderer) Resize(width, height int32) {
	if width == r.width && height == r.height {
		return
	}

	rl.UnloadRenderTexture(r.canvas)
	r.canvas = rl.LoadRenderTexture(width, height)
	r.width = width
	r.height = height
	r.ClearTrails()
}

// Unload frees GPU resources.
func (r *Renderer) Unload() {
	rl.UnloadRenderTexture(r.canvas)
}
