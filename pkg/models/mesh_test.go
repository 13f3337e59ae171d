package models

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/flatshade/pkg/math3d"
)

func TestAddObjectRebasesIndices(t *testing.T) {
	mesh := NewMesh("test")
	tri := []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)}

	mesh.AddObject(tri, [][3]int{{0, 1, 2}})
	mesh.AddObject(tri, [][3]int{{0, 1, 2}})

	if mesh.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6", mesh.VertexCount())
	}
	if mesh.Faces[1] != [3]int{3, 4, 5} {
		t.Errorf("Faces[1] = %v, want [3 4 5]", mesh.Faces[1])
	}
}

func TestFit(t *testing.T) {
	mesh := NewMesh("box")
	mesh.Positions = []math3d.Vec3{math3d.V3(-1, 0, 2), math3d.V3(3, 1, 4)}
	mesh.CalculateBounds()
	mesh.Fit(336)

	if mesh.Center != math3d.V3(1, 0.5, 3) {
		t.Errorf("Center = %v, want (1, 0.5, 3)", mesh.Center)
	}
	if mesh.Scale != 84 {
		t.Errorf("Scale = %v, want 84", mesh.Scale)
	}
}

func TestFitSinglePoint(t *testing.T) {
	mesh := NewMesh("point")
	mesh.Positions = []math3d.Vec3{math3d.V3(2, 2, 2)}
	mesh.CalculateBounds()
	mesh.Fit(1)

	if mesh.Scale != 1/minExtent {
		t.Errorf("Scale = %v, want %v", mesh.Scale, 1/minExtent)
	}
}

func TestValidate(t *testing.T) {
	tri := []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)}

	tests := []struct {
		name      string
		positions []math3d.Vec3
		faces     [][3]int
		want      error
	}{
		{"valid", tri, [][3]int{{0, 1, 2}}, nil},
		{"no vertices", nil, [][3]int{{0, 1, 2}}, ErrNoVertices},
		{"no triangles", tri, nil, ErrNoTriangles},
		{"index too large", tri, [][3]int{{0, 1, 3}}, ErrIndexOutOfRange},
		{"negative index", tri, [][3]int{{-1, 1, 2}}, ErrIndexOutOfRange},
		{"nan coordinate", []math3d.Vec3{tri[0], math3d.V3(math.NaN(), 0, 0), tri[2]}, [][3]int{{0, 1, 2}}, ErrNonFinite},
		{"infinite coordinate", []math3d.Vec3{tri[0], tri[1], math3d.V3(0, math.Inf(-1), 0)}, [][3]int{{0, 1, 2}}, ErrNonFinite},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mesh := &Mesh{Positions: tc.positions, Faces: tc.faces}
			err := mesh.Validate()
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty obj", write("empty.obj", "# nothing\n"), ErrNoVertices},
		{"points only", write("points.obj", "v 0 0 0\nv 1 0 0\n"), ErrNoTriangles},
		{"bad index", write("bad.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 7\n"), ErrIndexOutOfRange},
		{"nan vertex", write("nan.obj", "v nan 0 0\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 2 3 4\n"), ErrNonFinite},
		{"inf vertex stl", write("inf.stl", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex inf 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid x\n"), ErrNonFinite},
		{"unknown extension", write("mesh.ply", "ply\n"), ErrUnsupportedFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path, 100)
			var gerr *GeometryError
			if !errors.As(err, &gerr) {
				t.Fatalf("Load() error = %v, want *GeometryError", err)
			}
			if gerr.Path != tc.path {
				t.Errorf("Path = %q, want %q", gerr.Path, tc.path)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Load() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/model.obj", 100)
	var gerr *GeometryError
	if !errors.As(err, &gerr) {
		t.Errorf("Load() error = %v, want *GeometryError", err)
	}
}
