package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/flatshade/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file. All objects and groups are merged
// into one mesh and polygons are fan-triangulated.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ReadOBJ(f, filepath.Base(path))
}

// ReadOBJ parses OBJ text from r. Only "v" and "f" records matter here;
// texture coordinates, normals, materials and grouping are skipped.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	lineNo := 0
	var poly []int
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			mesh.Positions = append(mesh.Positions, p)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 vertices, got %d", lineNo, len(fields)-1)
			}
			poly = poly[:0]
			for _, ref := range fields[1:] {
				idx, err := parseOBJIndex(ref, len(mesh.Positions))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
				}
				poly = append(poly, idx)
			}
			// Fan around the first corner
			for i := 1; i+1 < len(poly); i++ {
				mesh.Faces = append(mesh.Faces, [3]int{poly[0], poly[i], poly[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return mesh, nil
}

func parseOBJVertex(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("vertex coordinate %q: %w", fields[i], err)
		}
		c[i] = v
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// parseOBJIndex resolves the position part of a "v", "v/vt", "v//vn" or
// "v/vt/vn" reference. OBJ indices are 1-based; negative indices count back
// from the most recent vertex.
func parseOBJIndex(ref string, count int) (int, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", ref, err)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return count + n, nil
	default:
		return 0, fmt.Errorf("face index %q: %w", ref, ErrIndexOutOfRange)
	}
}
