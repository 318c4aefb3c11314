package vtkio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/orneryd/cmap2/pkg/builder"
	"github.com/orneryd/cmap2/pkg/cmap"
)

// legacyCellType is a VTK legacy-format cell type code, as written after
// DATASET UNSTRUCTURED_GRID's CELL_TYPES block.
type legacyCellType int

const (
	vtkVertex        legacyCellType = 1
	vtkPolyVertex    legacyCellType = 2
	vtkLine          legacyCellType = 3
	vtkPolyLine      legacyCellType = 4
	vtkTriangle      legacyCellType = 5
	vtkTriangleStrip legacyCellType = 6
	vtkPolygon       legacyCellType = 7
	vtkPixel         legacyCellType = 8
	vtkQuad          legacyCellType = 9
)

// Mesh is a parsed VTK unstructured mesh, ready for builder.BuildFromCells.
type Mesh struct {
	Points []cmap.Point
	Cells  []builder.Cell
}

// wordReader flattens an ASCII VTK file into a stream of whitespace-separated
// words, read line by line so an arbitrary-length title line or comment
// doesn't desynchronize the keyword/count tokens that follow it.
type wordReader struct {
	sc      *bufio.Scanner
	pending []string
}

func newWordReader(r io.Reader) *wordReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &wordReader{sc: sc}
}

func (w *wordReader) word() (string, bool) {
	for len(w.pending) == 0 {
		if !w.sc.Scan() {
			return "", false
		}
		w.pending = strings.Fields(w.sc.Text())
	}
	word := w.pending[0]
	w.pending = w.pending[1:]
	return word, true
}

// ReadLegacy parses an ASCII VTK legacy file. DATASET must be
// UNSTRUCTURED_GRID. vertex and line cells are recognized but dropped (a
// 2-map has no 0- or 1-cell-only faces to build from them); triangle, quad,
// and polygon cells become builder.Cell entries. poly-vertex, poly-line,
// triangle-strip, and pixel cells are hard errors.
func ReadLegacy(r io.Reader) (*Mesh, error) {
	w := newWordReader(r)

	// Line 1: "# vtk DataFile Version x.x". Line 2: title (any content).
	// Line 3: "ASCII". None of these carry data this builder needs, but all
	// three must be present for the file to be a legacy VTK file at all.
	for i := 0; i < 2; i++ {
		if !w.sc.Scan() {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedFile)
		}
	}
	if !w.sc.Scan() {
		return nil, fmt.Errorf("%w: missing ASCII/BINARY marker", ErrMalformedFile)
	}
	if format := strings.ToUpper(strings.TrimSpace(w.sc.Text())); format != "ASCII" {
		return nil, fmt.Errorf("%w: only ASCII encoding is supported, got %q", ErrUnsupportedDataset, format)
	}

	var points []cmap.Point
	var cellIndices [][]int
	var cellTypes []legacyCellType

	for {
		keyword, ok := w.word()
		if !ok {
			break
		}
		switch strings.ToUpper(keyword) {
		case "DATASET":
			dataset, ok := w.word()
			if !ok || strings.ToUpper(dataset) != "UNSTRUCTURED_GRID" {
				return nil, ErrUnsupportedDataset
			}
		case "POINTS":
			n, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: POINTS count: %v", ErrMalformedFile, err)
			}
			if _, ok := w.word(); !ok { // datatype (float/double), unused
				return nil, fmt.Errorf("%w: POINTS missing datatype", ErrMalformedFile)
			}
			points, err = w.readPoints(n)
			if err != nil {
				return nil, err
			}
		case "CELLS":
			n, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: CELLS count: %v", ErrMalformedFile, err)
			}
			if _, err := w.int(); err != nil { // total integer count, unused
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

	cells := make([]builder.Cell, 0, len(cellIndices))
	for i, ct := range cellTypes {
		switch ct {
		case vtkVertex, vtkLine:
			continue
		case vtkTriangle:
			cells = append(cells, builder.Cell{Type: builder.Triangle, Indices: cellIndices[i]})
		case vtkQuad:
			cells = append(cells, builder.Cell{Type: builder.Quad, Indices: cellIndices[i]})
		case vtkPolygon:
			cells = append(cells, builder.Cell{Type: builder.Polygon, Indices: cellIndices[i]})
		case vtkPolyVertex, vtkPolyLine, vtkTriangleStrip, vtkPixel:
			return nil, ErrUnsupportedCellType
		default:
			return nil, fmt.Errorf("%w: cell type %d", ErrUnsupportedCellType, ct)
		}
	}

	return &Mesh{Points: points, Cells: cells}, nil
}

func (w *wordReader) int() (int, error) {
	word, ok := w.word()
	if !ok {
		return 0, fmt.Errorf("unexpected end of file")
	}
	return strconv.Atoi(word)
}

func (w *wordReader) float() (float64, error) {
	word, ok := w.word()
	if !ok {
		return 0, fmt.Errorf("unexpected end of file")
	}
	return strconv.ParseFloat(word, 64)
}

func (w *wordReader) readPoints(n int) ([]cmap.Point, error) {
	pts := make([]cmap.Point, 0, n)
	for i := 0; i < n; i++ {
		x, err := w.float()
		if err != nil {
			return nil, fmt.Errorf("%w: point %d x: %v", ErrMalformedFile, i, err)
		}
		y, err := w.float()
		if err != nil {
			return nil, fmt.Errorf("%w: point %d y: %v", ErrMalformedFile, i, err)
		}
		if _, err := w.float(); err != nil { // z, dropped: cmap2 is 2D
			return nil, fmt.Errorf("%w: point %d z: %v", ErrMalformedFile, i, err)
		}
		pts = append(pts, cmap.Point{X: x, Y: y})
	}
	return pts, nil
}

func (w *wordReader) readCells(n int) ([][]int, error) {
	cells := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		count, err := w.int()
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d vertex count: %v", ErrMalformedFile, i, err)
		}
		idx := make([]int, count)
		for j := 0; j < count; j++ {
			v, err := w.int()
			if err != nil {
				return nil, fmt.Errorf("%w: cell %d vertex %d: %v", ErrMalformedFile, i, j, err)
			}
			idx[j] = v
		}
		cells = append(cells, idx)
	}
	return cells, nil
}

func (w *wordReader) readCellTypes(n int) ([]legacyCellType, error) {
	types := make([]legacyCellType, 0, n)
	for i := 0; i < n; i++ {
		v, err := w.int()
		if err != nil {
			return nil, fmt.Errorf("%w: cell type %d: %v", ErrMalformedFile, i, err)
		}
		types = append(types, legacyCellType(v))
	}
	return types, nil
}
