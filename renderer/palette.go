package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// Background is the canvas clear color. Trails fade toward it each frame.
var Background = rl.Color{R: 10, G: 12, B: 16, A: 255}

// attractorColor marks attractor positions when the overlay is enabled.
var attractorColor = rl.Color{R: 210, G: 185, B: 140, A: 255}

// lineagePalette colors branches by lineage. Tribes cycles through all
// eight entries; pulse and convergent only ever use the first.
var lineagePalette = [8]rl.Color{
	{R: 120, G: 220, B: 160, A: 255},
	{R: 240, G: 120, B: 100, A: 255},
	{R: 110, G: 170, B: 240, A: 255},
	{R: 240, G: 190, B: 90, A: 255},
	{R: 180, G: 130, B: 230, A: 255},
	{R: 90, G: 210, B: 210, A: 255},
	{R: 235, G: 130, B: 180, A: 255},
	{R: 180, G: 220, B: 100, A: 255},
}

// lineageColor returns the stroke color for a branch segment, dimmed by
// generation so deep branches read as finer filaments.
func lineageColor(lineage uint8, depth, maxDepth int32) rl.Color {
	c := lineagePalette[int(lineage)%len(lineagePalette)]
	if maxDepth <= 0 || depth <= 0 {
		return c
	}

	dim := 1.0 - 0.6*float32(depth)/float32(maxDepth)
	if dim < 0.4 {
		dim = 0.4
	}

	c.R = uint8(float32(c.R) * dim)
	c.G = uint8(float32(c.G) * dim)
	c.B = uint8(float32(c.B) * dim)
	return c
}
