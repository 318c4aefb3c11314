// Package vtkio implements the legacy (non-XML) VTK ASCII file format as an
// input/output surface for pkg/builder: ReadLegacy parses an
// UNSTRUCTURED_GRID dataset into the points/cells shape BuildFromCells wants,
// and WriteLegacy is its round-trip counterpart (spec.md §6 external
// interfaces).
package vtkio

import "errors"

// ErrUnsupportedDataset is returned for any DATASET other than
// UNSTRUCTURED_GRID.
var ErrUnsupportedDataset = errors.New("vtkio: only DATASET UNSTRUCTURED_GRID is supported")

// ErrUnsupportedCellType is returned for a VTK legacy cell type this library
// cannot represent: poly-vertex, poly-line, triangle strip, or pixel
// (spec.md §6 "Unsupported: ... each is a hard build error").
var ErrUnsupportedCellType = errors.New("vtkio: unsupported VTK legacy cell type")

// ErrMalformedFile is returned when the legacy file doesn't parse as a
// well-formed ASCII VTK file (missing header, truncated section, bad token).
var ErrMalformedFile = errors.New("vtkio: malformed legacy VTK file")
