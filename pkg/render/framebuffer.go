// Package render turns a transformed triangle mesh into a color image with an
// orthographic projection, flat per-face shading and a depth buffer.
package render

import (
	"image"
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// Framebuffer holds the color and depth buffers for one frame, both
// row-major with Width*Height entries.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color
	Depth  []float64 // +Inf means nothing written yet
}

// NewFramebuffer creates a framebuffer with an empty depth buffer and
// transparent black pixels.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		Depth:  make([]float64, width*height),
	}
	fb.ClearDepth()
	return fb
}

// Reset prepares both buffers for a new frame.
func (fb *Framebuffer) Reset(bg Color) {
	fb.Clear(bg)
	fb.ClearDepth()
}

// Clear fills the color buffer.
func (fb *Framebuffer) Clear(c Color) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// ClearDepth sets every depth entry to +Inf.
func (fb *Framebuffer) ClearDepth() {
	// copy-doubling
	n := len(fb.Depth)
	if n == 0 {
		return
	}
	fb.Depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

// SetPixel sets a pixel at (x, y). Out-of-bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black when out of
// bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DepthAt returns the stored depth at (x, y), or +Inf when out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return math.Inf(1)
	}
	return fb.Depth[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. The depth buffer is not touched.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage copies the color buffer into a standard image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}
