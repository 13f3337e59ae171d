// Package models loads triangle meshes and prepares them for the
// orthographic pipeline: merged positions, index triples, a bounding-box
// center and a uniform fit scale.
package models

import (
	"fmt"

	"github.com/taigrr/flatshade/pkg/math3d"
)

// minExtent keeps the fit scale finite for meshes that are a single point.
const minExtent = 1e-6

// Mesh is an immutable-after-load list of positions and triangles.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Faces     [][3]int // Indices into Positions, winding not normalized

	// Bounding box (set by CalculateBounds)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// Framing (set by Fit)
	Center math3d.Vec3
	Scale  float64
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:  name,
		Scale: 1,
	}
}

// AddObject appends one object's positions and faces, rebasing the face
// indices so several objects can share one mesh.
func (m *Mesh) AddObject(positions []math3d.Vec3, faces [][3]int) {
	base := len(m.Positions)
	m.Positions = append(m.Positions, positions...)
	for _, f := range faces {
		m.Faces = append(m.Faces, [3]int{base + f[0], base + f[1], base + f[2]})
	}
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// GetVertex returns the model-space position of vertex i.
func (m *Mesh) GetVertex(i int) math3d.Vec3 {
	return m.Positions[i]
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i]
}

// Framing returns the fit center and scale.
func (m *Mesh) Framing() (center math3d.Vec3, scale float64) {
	return m.Center, m.Scale
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Size returns the bounding box dimensions.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Fit sets Center to the bounding-box center and Scale so the largest
// dimension spans targetPixels. CalculateBounds must run first.
func (m *Mesh) Fit(targetPixels float64) {
	m.Center = m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
	maxDim := max(m.Size().MaxComponent(), minExtent)
	m.Scale = targetPixels / maxDim
}

// Validate reports why the mesh cannot be rendered, if it cannot.
// Every coordinate must be finite and every face index must address a
// position.
func (m *Mesh) Validate() error {
	if len(m.Positions) == 0 {
		return ErrNoVertices
	}
	if len(m.Faces) == 0 {
		return ErrNoTriangles
	}
	for i, p := range m.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("vertex %d %v: %w", i, p, ErrNonFinite)
		}
	}
	n := len(m.Positions)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("face %d references vertex %d of %d: %w", i, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}
