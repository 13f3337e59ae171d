package render

import (
	"math"

	"github.com/taigrr/flatshade/pkg/math3d"
)

const (
	normalEpsilon = 1e-9
	rimExponent   = 1.3
)

// viewDir points from the surface toward the orthographic viewer.
var viewDir = math3d.V3(0, 0, 1)

// Uniforms are the lighting constants shared by every triangle of a frame.
type Uniforms struct {
	BaseColor    Color
	LightDir     math3d.Vec3 // direction the light travels; need not be normalized
	Ambient      float64
	SpecPower    float64
	SpecStrength float64
	RimStrength  float64
}

// DefaultUniforms returns a cool blue-grey metal lit from the upper left.
func DefaultUniforms() Uniforms {
	return Uniforms{
		BaseColor:    RGB(128, 160, 220),
		LightDir:     math3d.V3(-0.35, 0.75, 0.25).Normalize(),
		Ambient:      0.22,
		SpecPower:    32,
		SpecStrength: 0.15,
		RimStrength:  0.12,
	}
}

// TriInput is one triangle's view-space corners.
type TriInput struct {
	P0, P1, P2 math3d.Vec3
}

// Shader computes the single color of a triangle.
type Shader interface {
	Shade(u Uniforms, tri TriInput) Color
}

// FaceNormal returns the unit normal (P1-P0)×(P2-P0), or +Z when the
// triangle has no area to speak of.
func FaceNormal(tri TriInput) math3d.Vec3 {
	n := tri.P1.Sub(tri.P0).Cross(tri.P2.Sub(tri.P0))
	l := n.Len()
	if l <= normalEpsilon {
		return viewDir
	}
	return n.Scale(1 / l)
}

// MetalLambert is flat Lambert diffuse with an ambient floor, a Blinn-Phong
// highlight and a rim term that brightens silhouettes.
type MetalLambert struct{}

// Shade implements Shader.
func (MetalLambert) Shade(u Uniforms, tri TriInput) Color {
	n := FaceNormal(tri)
	l := u.LightDir.Negate().Normalize()

	diffuse := clamp01(n.Dot(l))
	rim := math.Pow(clamp01(1-n.Dot(viewDir)), rimExponent) * u.RimStrength

	spec := 0.0
	if diffuse > 0 {
		h := l.Add(viewDir).Normalize()
		spec = u.SpecStrength * math.Pow(clamp01(n.Dot(h)), u.SpecPower)
	}

	intensity := clamp01(u.Ambient + (1-u.Ambient)*diffuse + rim + spec)
	return Color{
		R: scaleChannel(u.BaseColor.R, intensity),
		G: scaleChannel(u.BaseColor.G, intensity),
		B: scaleChannel(u.BaseColor.B, intensity),
		A: 255,
	}
}

// clamp01 maps NaN to 0.
func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func scaleChannel(c uint8, intensity float64) uint8 {
	return uint8(min(max(float64(c)*intensity, 0), 255))
}
