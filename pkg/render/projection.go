package render

import (
	"math"

	"github.com/taigrr/flatshade/pkg/math3d"
)

// depthEpsilon is the smallest depth span treated as non-degenerate. A
// flatter frame is widened by depthWiden so normalization never divides by
// zero.
const (
	depthEpsilon = 1e-9
	depthWiden   = 1e-6
)

// ScreenVertex is a projected vertex: pixel position plus normalized depth
// in [0,1], where 0 is the smallest view-space Z of the frame.
type ScreenVertex struct {
	X, Y float64
	Z    float64
}

// Projection maps view-space positions to pixels. There is no perspective
// divide; X and Y scale uniformly around Center, with Y growing downward.
type Projection struct {
	Width    int
	Height   int
	Center   math3d.Vec3
	Scale    float64
	Subpixel bool // keep fractional pixel positions instead of rounding
}

// Project returns the pixel position of v.
func (p Projection) Project(v math3d.Vec3) (x, y float64) {
	x = (v.X-p.Center.X)*p.Scale + float64(p.Width)*0.5
	y = float64(p.Height)*0.5 - (v.Y-p.Center.Y)*p.Scale
	if !p.Subpixel {
		x, y = math.Round(x), math.Round(y)
	}
	return x, y
}

// DepthRange is the view-space Z extent of one frame.
type DepthRange struct {
	Min, Max float64
	Widened  bool // the span was below depthEpsilon and Max was pushed out
}

// NewDepthRange scans view-space positions for their Z extent. An empty
// slice yields the unit range.
func NewDepthRange(view []math3d.Vec3) DepthRange {
	if len(view) == 0 {
		return DepthRange{Min: 0, Max: 1}
	}

	d := DepthRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range view {
		d.Min = min(d.Min, v.Z)
		d.Max = max(d.Max, v.Z)
	}
	if math.Abs(d.Max-d.Min) < depthEpsilon {
		d.Max = d.Min + depthWiden
		d.Widened = true
	}
	return d
}

// Normalize maps z into [0,1] for any z inside the range.
func (d DepthRange) Normalize(z float64) float64 {
	return (z - d.Min) / (d.Max - d.Min)
}
