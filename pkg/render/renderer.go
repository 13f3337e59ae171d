package render

import (
	"log/slog"

	"github.com/taigrr/flatshade/pkg/math3d"
)

// MeshSource is what the renderer reads from a loaded mesh. It is declared
// here so render does not depend on a particular loader.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) math3d.Vec3
	GetFace(i int) [3]int
	Framing() (center math3d.Vec3, scale float64)
}

// Options configures a Renderer.
type Options struct {
	Width      int
	Height     int
	Background Color
	WireColor  Color

	// View scale multiplies the mesh fit scale and is clamped to this range.
	MinViewScale float64
	MaxViewScale float64

	Subpixel bool // keep fractional projected positions

	Shader   Shader // nil selects MetalLambert
	Uniforms Uniforms
}

// DefaultOptions returns a 900x700 frame on a near-black background.
func DefaultOptions() Options {
	return Options{
		Width:        900,
		Height:       700,
		Background:   RGB(8, 10, 14),
		WireColor:    RGB(235, 235, 235),
		MinViewScale: 0.5,
		MaxViewScale: 2.0,
		Uniforms:     DefaultUniforms(),
	}
}

// FrameParams are the per-frame inputs that change while viewing.
type FrameParams struct {
	Model         math3d.Mat4
	ViewScale     float64
	CullBackfaces bool
	Wireframe     bool
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Triangles    int // faces in the mesh
	Culled       int // skipped as back-facing
	Degenerate   int // zero screen area
	Drawn        int // passed to the rasterizer
	Pixels       int // color writes that won the depth test
	ZMin, ZMax   float64
	RangeWidened bool
}

// Renderer owns the framebuffer and per-vertex caches for one mesh. It is
// not safe for concurrent use; frames are rendered one after another.
type Renderer struct {
	mesh   MeshSource
	opts   Options
	shader Shader
	fb     *Framebuffer

	view   []math3d.Vec3  // view-space positions, rebuilt every frame
	screen []ScreenVertex // projected positions, rebuilt every frame
	drawn  []bool         // faces that survived culling, for the wireframe pass
	edges  []wireEdge     // built on first wireframe frame
	stats  FrameStats
}

// NewRenderer creates a renderer for mesh. The shader is fixed for the
// renderer's lifetime.
func NewRenderer(mesh MeshSource, opts Options) *Renderer {
	shader := opts.Shader
	if shader == nil {
		shader = MetalLambert{}
	}
	if opts.MaxViewScale < opts.MinViewScale {
		opts.MinViewScale, opts.MaxViewScale = opts.MaxViewScale, opts.MinViewScale
	}
	n := mesh.VertexCount()
	return &Renderer{
		mesh:   mesh,
		opts:   opts,
		shader: shader,
		fb:     NewFramebuffer(opts.Width, opts.Height),
		view:   make([]math3d.Vec3, n),
		screen: make([]ScreenVertex, n),
		drawn:  make([]bool, mesh.TriangleCount()),
	}
}

// Resize reallocates the buffers when the output size changes.
func (r *Renderer) Resize(width, height int) {
	if width == r.opts.Width && height == r.opts.Height {
		return
	}
	r.opts.Width, r.opts.Height = width, height
	r.fb = NewFramebuffer(width, height)
}

// Framebuffer returns the buffers of the last frame.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// Stats returns statistics for the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// ClampViewScale limits s to the configured view-scale range.
func (r *Renderer) ClampViewScale(s float64) float64 {
	return min(max(s, r.opts.MinViewScale), r.opts.MaxViewScale)
}

// Projection returns the projection used for a frame at viewScale.
func (r *Renderer) Projection(viewScale float64) Projection {
	center, scale := r.mesh.Framing()
	return Projection{
		Width:    r.opts.Width,
		Height:   r.opts.Height,
		Center:   center,
		Scale:    scale * r.ClampViewScale(viewScale),
		Subpixel: r.opts.Subpixel,
	}
}

// Render draws one frame and returns the framebuffer, which stays owned by
// the renderer and is overwritten by the next call.
func (r *Renderer) Render(p FrameParams) *Framebuffer {
	r.fb.Reset(r.opts.Background)
	r.stats = FrameStats{Triangles: r.mesh.TriangleCount()}

	r.transform(p.Model)
	depth := NewDepthRange(r.view)
	r.stats.ZMin, r.stats.ZMax, r.stats.RangeWidened = depth.Min, depth.Max, depth.Widened
	if depth.Widened {
		Logger().Debug("depth range widened", slog.Float64("z", depth.Min))
	}
	r.project(r.Projection(p.ViewScale), depth)

	for i := range r.stats.Triangles {
		r.drawn[i] = false
		f := r.mesh.GetFace(i)
		tri := TriInput{P0: r.view[f[0]], P1: r.view[f[1]], P2: r.view[f[2]]}

		if p.CullBackfaces && FaceNormal(tri).Z >= 0 {
			r.stats.Culled++
			continue
		}

		sv := [3]ScreenVertex{r.screen[f[0]], r.screen[f[1]], r.screen[f[2]]}
		if SignedArea(sv) == 0 {
			r.stats.Degenerate++
			continue
		}

		c := r.shader.Shade(r.opts.Uniforms, tri)
		r.stats.Pixels += FillTriangle(r.fb, sv, c)
		r.stats.Drawn++
		r.drawn[i] = true
	}

	if p.Wireframe {
		r.drawWireframe()
	}

	Logger().Debug("frame",
		slog.Int("triangles", r.stats.Triangles),
		slog.Int("culled", r.stats.Culled),
		slog.Int("degenerate", r.stats.Degenerate),
		slog.Int("drawn", r.stats.Drawn),
		slog.Int("pixels", r.stats.Pixels),
	)
	return r.fb
}

// transform applies the model matrix to every position. W is discarded.
func (r *Renderer) transform(model math3d.Mat4) {
	for i := range r.view {
		r.view[i] = model.MulPoint(r.mesh.GetVertex(i))
	}
}

func (r *Renderer) project(proj Projection, depth DepthRange) {
	for i, v := range r.view {
		x, y := proj.Project(v)
		r.screen[i] = ScreenVertex{X: x, Y: y, Z: depth.Normalize(v.Z)}
	}
}
