package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/flatshade/pkg/math3d"
)

// LoadGLTF loads a binary (.glb) or JSON (.gltf) glTF file. Every triangle
// primitive of every mesh is merged; node transforms are not applied.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return meshFromDocument(doc, filepath.Base(path))
}

func meshFromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	for _, m := range doc.Meshes {
		for i, prim := range m.Primitives {
			if err := addPrimitive(doc, prim, mesh); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
			}
		}
	}
	return mesh, nil
}

func addPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) error {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		// Lines and points have no area to fill
		return nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	if posIdx < 0 || posIdx >= len(doc.Accessors) {
		return fmt.Errorf("position accessor %d: %w", posIdx, ErrIndexOutOfRange)
	}

	raw, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	positions := make([]math3d.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	var faces [][3]int
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return fmt.Errorf("index accessor %d: %w", *prim.Indices, ErrIndexOutOfRange)
		}
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return fmt.Errorf("index %d of %d positions: %w", idx, len(positions), ErrIndexOutOfRange)
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])})
		}
	} else {
		// Non-indexed: consecutive triples
		for i := 0; i+2 < len(positions); i += 3 {
			faces = append(faces, [3]int{i, i + 1, i + 2})
		}
	}

	mesh.AddObject(positions, faces)
	return nil
}
