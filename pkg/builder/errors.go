// Package builder implements the two supported ways of producing a CMap2
// from scratch: a regular grid of quad cells (spec.md §4.7 grid descriptor)
// and ingestion of a VTK unstructured mesh (spec.md §4.7 / §6 external
// interfaces).
package builder

import "errors"

// ErrMissingGridParameters is returned when fewer than two of
// {NCells, LenPerCell, Lens} are set on a GridDescriptor.
var ErrMissingGridParameters = errors.New("builder: grid descriptor needs at least two of NCells/LenPerCell/Lens")

// ErrInvalidGridParameters is returned when a supplied length (per-cell or
// total) is zero or negative.
var ErrInvalidGridParameters = errors.New("builder: grid length must be strictly positive")

// ErrUnsupportedCellType is returned by BuildFromCells for any VTK cell type
// other than Triangle, Quad, or Polygon (spec.md §4.7 "rejection of
// unsupported cell types").
var ErrUnsupportedCellType = errors.New("builder: unsupported VTK cell type for a 2-map")

// ErrInvalidCellVertexCount is returned when a cell's vertex list doesn't
// match the count its declared type requires (3 for Triangle, 4 for Quad,
// >=3 for Polygon).
var ErrInvalidCellVertexCount = errors.New("builder: cell vertex count doesn't match its declared type")
