package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/flatshade/pkg/math3d"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal + 3 vertices (12 float32) + attribute count
)

// LoadSTL loads a binary or ASCII STL file. Shared corners are welded so
// each distinct position is transformed once per frame.
func LoadSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	defer f.Close()

	return ReadSTL(f, filepath.Base(path))
}

// ReadSTL decodes STL data from r.
func ReadSTL(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}

	w := newWelder(name)
	if isASCIISTL(data) {
		err = readASCIISTL(data, w)
	} else {
		err = readBinarySTL(data, w)
	}
	if err != nil {
		return nil, err
	}
	return w.mesh, nil
}

// isASCIISTL reports whether data looks like text STL. Some binary
// exporters also start their header with "solid", so the size of a binary
// body is checked too.
func isASCIISTL(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(data) >= stlHeaderSize+4 {
		n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if stlHeaderSize+4+int(n)*stlTriangleSize == len(data) {
			return false
		}
	}
	return true
}

func readBinarySTL(data []byte, w *welder) error {
	if len(data) < stlHeaderSize+4 {
		return fmt.Errorf("binary stl: short header (%d bytes)", len(data))
	}
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body) < n*stlTriangleSize {
		return fmt.Errorf("binary stl: %d triangles declared, %d bytes present", n, len(body))
	}

	for i := range n {
		tri := body[i*stlTriangleSize:]
		var face [3]int
		for v := range 3 {
			const start = 12 // skip the stored normal
			var c [3]float64
			for k := range 3 {
				off := start + 12*v + 4*k
				c[k] = float64(math.Float32frombits(binary.LittleEndian.Uint32(tri[off:])))
			}
			face[v] = w.add(math3d.V3(c[0], c[1], c[2]))
		}
		w.mesh.Faces = append(w.mesh.Faces, face)
	}
	return nil
}

func readASCIISTL(data []byte, w *welder) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	var corners []int
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "vertex":
			if len(fields) < 4 {
				return fmt.Errorf("ascii stl line %d: vertex needs 3 coordinates", lineNo)
			}
			var c [3]float64
			for k := range 3 {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return fmt.Errorf("ascii stl line %d: %w", lineNo, err)
				}
				c[k] = v
			}
			corners = append(corners, w.add(math3d.V3(c[0], c[1], c[2])))
		case "endloop":
			for i := 1; i+1 < len(corners); i++ {
				w.mesh.Faces = append(w.mesh.Faces, [3]int{corners[0], corners[i], corners[i+1]})
			}
			corners = corners[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ascii stl: %w", err)
	}
	return nil
}

// welder deduplicates exactly equal positions.
type welder struct {
	mesh  *Mesh
	index map[math3d.Vec3]int
}

func newWelder(name string) *welder {
	return &welder{
		mesh:  NewMesh(name),
		index: make(map[math3d.Vec3]int),
	}
}

func (w *welder) add(p math3d.Vec3) int {
	if i, ok := w.index[p]; ok {
		return i
	}
	i := len(w.mesh.Positions)
	w.mesh.Positions = append(w.mesh.Positions, p)
	w.index[p] = i
	return i
}
