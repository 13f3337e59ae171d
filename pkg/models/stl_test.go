package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
)

func binarySTL(header string, tris [][3][3]float32) []byte {
	var buf bytes.Buffer
	h := make([]byte, stlHeaderSize)
	copy(h, header)
	buf.Write(h)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		// normal
		for range 3 {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(0))
		}
		for _, v := range tri {
			for _, c := range v {
				_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(c))
			}
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

var stlQuad = [][3][3]float32{
	{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
	{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
}

func TestReadBinarySTLWelds(t *testing.T) {
	mesh, err := ReadSTL(bytes.NewReader(binarySTL("binary", stlQuad)), "quad")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4 after welding", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
}

func TestReadBinarySTLSolidHeader(t *testing.T) {
	// Binary files whose header starts with "solid" must not be parsed as text.
	mesh, err := ReadSTL(bytes.NewReader(binarySTL("solid exported", stlQuad)), "quad")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
}

func TestReadBinarySTLTruncated(t *testing.T) {
	data := binarySTL("binary", stlQuad)
	if _, err := ReadSTL(bytes.NewReader(data[:len(data)-10]), "short"); err == nil {
		t.Error("expected error for truncated body")
	}
}

func TestReadASCIISTL(t *testing.T) {
	src := `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	mesh, err := ReadSTL(strings.NewReader(src), "tri")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Errorf("got %d vertices / %d triangles, want 4 / 2", mesh.VertexCount(), mesh.TriangleCount())
	}
	if mesh.Faces[1] != [3]int{1, 3, 2} {
		t.Errorf("Faces[1] = %v, want [1 3 2]", mesh.Faces[1])
	}
}

func TestBinarySTLNaNRejected(t *testing.T) {
	nan := float32(math.NaN())
	data := binarySTL("binary", [][3][3]float32{{{0, 0, 0}, {1, nan, 0}, {0, 1, 0}}})

	mesh, err := ReadSTL(bytes.NewReader(data), "nan")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if err := mesh.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Validate() = %v, want ErrNonFinite", err)
	}
}
