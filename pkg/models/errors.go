package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoVertices        = errors.New("no vertices")
	ErrNoTriangles       = errors.New("no triangles after triangulation")
	ErrIndexOutOfRange   = errors.New("vertex index out of range")
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrNonFinite         = errors.New("non-finite vertex coordinate")
)

// GeometryError is returned when a mesh cannot be loaded or fails
// validation. Nothing can be drawn without a mesh, so callers treat it as
// fatal.
type GeometryError struct {
	Path string
	Err  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("load geometry %s: %v", e.Path, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}
