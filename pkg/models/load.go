package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Load reads the mesh at path, picking the decoder from the file extension,
// validates it, and frames it so its largest dimension covers targetPixels.
// All failures are returned as *GeometryError.
func Load(path string, targetPixels float64) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = LoadOBJ(path)
	case ".glb", ".gltf":
		mesh, err = LoadGLTF(path)
	case ".stl":
		mesh, err = LoadSTL(path)
	default:
		err = fmt.Errorf("%q (use .obj, .glb, .gltf or .stl): %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, &GeometryError{Path: path, Err: err}
	}

	if err := mesh.Validate(); err != nil {
		return nil, &GeometryError{Path: path, Err: err}
	}

	mesh.CalculateBounds()
	mesh.Fit(targetPixels)

	return mesh, nil
}
