package render

import "math"

// edge is the signed parallelogram area of (a, b, p). Its sign says which
// side of the directed line a→b the point p lies on.
func edge(ax, ay, bx, by, px, py float64) float64 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}

// SignedArea returns edge(v0, v1, v2) for a projected triangle. Zero means
// the triangle is collinear on screen and covers no pixels.
func SignedArea(v [3]ScreenVertex) float64 {
	return edge(v[0].X, v[0].Y, v[1].X, v[1].Y, v[2].X, v[2].Y)
}

// FillTriangle scan-converts one flat-colored triangle into fb, writing a
// pixel only when its interpolated depth is strictly less than the stored
// one. Either winding fills. Returns the number of pixels written.
func FillTriangle(fb *Framebuffer, v [3]ScreenVertex, c Color) int {
	area := SignedArea(v)
	if area == 0 {
		return 0
	}
	if fb.Width == 0 || fb.Height == 0 {
		return 0
	}

	minX := clampIndex(math.Floor(min(v[0].X, v[1].X, v[2].X)), fb.Width-1)
	maxX := clampIndex(math.Ceil(max(v[0].X, v[1].X, v[2].X)), fb.Width-1)
	minY := clampIndex(math.Floor(min(v[0].Y, v[1].Y, v[2].Y)), fb.Height-1)
	maxY := clampIndex(math.Ceil(max(v[0].Y, v[1].Y, v[2].Y)), fb.Height-1)

	invArea := 1 / area
	written := 0
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		row := y * fb.Width
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			w0 := edge(v[1].X, v[1].Y, v[2].X, v[2].Y, px, py)
			w1 := edge(v[2].X, v[2].Y, v[0].X, v[0].Y, px, py)
			w2 := edge(v[0].X, v[0].Y, v[1].X, v[1].Y, px, py)

			inside := (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
			if !inside {
				continue
			}

			z := w0*invArea*v[0].Z + w1*invArea*v[1].Z + w2*invArea*v[2].Z
			idx := row + x
			if z < fb.Depth[idx] {
				fb.Depth[idx] = z
				fb.Pixels[idx] = c
				written++
			}
		}
	}
	return written
}

// clampIndex clamps f to [0, hi] before converting, so off-screen
// coordinates never overflow int.
func clampIndex(f float64, hi int) int {
	if !(f > 0) {
		return 0
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}
