package vtkio

import (
	"fmt"
	"io"

	"github.com/orneryd/cmap2/pkg/grisubal"
)

// ReadLegacyPolyline parses an ASCII VTK legacy file as grisubal geometry
// input: a closed 2D polyline (or several disjoint ones) to overlay on a
// grid-map (spec.md §4.8, §6 "Grisubal CLI surface"). Unlike ReadLegacy,
// which builds 2-map faces and therefore rejects poly-line cells, this
// reader is specifically for line geometry: VTK_LINE and VTK_POLY_LINE
// cells become grisubal.Geometry segments, and any other cell type present
// in the file is ignored (a geometry file may come from the same VTK export
// pipeline as a mesh file, with face cells alongside the boundary lines).
func ReadLegacyPolyline(r io.Reader) (*grisubal.Geometry, error) {
	w := newWordReader(r)

	for i := 0; i < 2; i++ {
		if !w.sc.Scan() {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedFile)
		}
	}
	if !w.sc.Scan() {
		return nil, fmt.Errorf("%w: missing ASCII/BINARY marker", ErrMalformedFile)
	}

	var points []grisubal.Point
	var cellIndices [][]int
	var cellTypes []legacyCellType

	for {
		keyword, ok := w.word()
		if !ok {
			break
		}
		switch keyword {
		case "DATASET":
			if _, ok := w.word(); !ok {
				return nil, fmt.Errorf("%w: missing DATASET value", ErrMalformedFile)
			}
		case "POINTS":
			n, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: POINTS count: %v", ErrMalformedFile, err)
			}
			if _, ok := w.word(); !ok {
				return nil, fmt.Errorf("%w: POINTS missing datatype", ErrMalformedFile)
			}
			points = make([]grisubal.Point, 0, n)
			for i := 0; i < n; i++ {
				x, err := w.float()
				if err != nil {
					return nil, fmt.Errorf("%w: point %d x: %v", ErrMalformedFile, i, err)
				}
				y, err := w.float()
				if err != nil {
					return nil, fmt.Errorf("%w: point %d y: %v", ErrMalformedFile, i, err)
				}
				if _, err := w.float(); err != nil {
					return nil, fmt.Errorf("%w: point %d z: %v", ErrMalformedFile, i, err)
				}
				points = append(points, grisubal.Point{X: x, Y: y})
			}
		case "CELLS":
			n, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: CELLS count: %v", ErrMalformedFile, err)
			}
			if _, err := w.int(); err != nil {
				return nil, fmt.Errorf("%w: CELLS missing size: %v", ErrMalformedFile, err)
			}
			cellIndices, err = w.readCells(n)
			if err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			n, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: CELL_TYPES count: %v", ErrMalformedFile, err)
			}
			cellTypes, err = w.readCellTypes(n)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(cellIndices) != len(cellTypes) {
		return nil, fmt.Errorf("%w: CELLS count (%d) != CELL_TYPES count (%d)", ErrMalformedFile, len(cellIndices), len(cellTypes))
	}

	var segments [][2]int
	for i, ct := range cellTypes {
		idx := cellIndices[i]
		switch ct {
		case vtkLine:
			if len(idx) != 2 {
				return nil, fmt.Errorf("%w: VTK_LINE cell with %d vertices", ErrMalformedFile, len(idx))
			}
			segments = append(segments, [2]int{idx[0], idx[1]})
		case vtkPolyLine:
			for j := 0; j+1 < len(idx); j++ {
				segments = append(segments, [2]int{idx[j], idx[j+1]})
			}
		default:
			continue
		}
	}

	return &grisubal.Geometry{Vertices: points, Segments: segments}, nil
}
