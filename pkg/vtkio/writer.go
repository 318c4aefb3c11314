package vtkio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/orneryd/cmap2/pkg/cmap"
)

// OutputFace is one polygon/quad/triangle face to emit in a WriteLegacy
// CELLS block, as a list of point indices in winding order.
type OutputFace struct {
	Indices []int
}

// OutputEdge is one boundary or grid edge to emit as a VTK line cell.
type OutputEdge struct {
	A, B int
}

// WriteLegacy writes points/edges/faces as an ASCII VTK legacy
// UNSTRUCTURED_GRID file (spec.md §6 "VTK legacy output"): the POINTS block
// lists vertex coordinates, CELLS lists vertices per edge and per face, and
// CELL_TYPES tags each cell (edges as VTK_LINE, faces as VTK_QUAD when they
// have 4 vertices and VTK_POLYGON otherwise; see faceCellType). Cell order in the
// output mirrors the order of edges then faces as given; the caller decides
// what that order is.
func WriteLegacy(w io.Writer, points []cmap.Point, edges []OutputEdge, faces []OutputFace) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "cmap2 mesh export")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")

	fmt.Fprintf(bw, "POINTS %d float\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%g %g 0\n", p.X, p.Y)
	}

	totalCells := len(edges) + len(faces)
	totalInts := 0
	for range edges {
		totalInts += 1 + 2
	}
	for _, f := range faces {
		totalInts += 1 + len(f.Indices)
	}

	fmt.Fprintf(bw, "CELLS %d %d\n", totalCells, totalInts)
	for _, e := range edges {
		fmt.Fprintf(bw, "2 %d %d\n", e.A, e.B)
	}
	for _, f := range faces {
		fmt.Fprintf(bw, "%d", len(f.Indices))
		for _, idx := range f.Indices {
			fmt.Fprintf(bw, " %d", idx)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "CELL_TYPES %d\n", totalCells)
	for range edges {
		fmt.Fprintln(bw, int(vtkLine))
	}
	for _, f := range faces {
		fmt.Fprintln(bw, int(faceCellType(len(f.Indices))))
	}

	return bw.Flush()
}

// faceCellType follows spec.md §6's output rule literally: faces are
// written as VTK_QUAD or VTK_POLYGON, never VTK_TRIANGLE, regardless of how
// they were read in.
func faceCellType(n int) legacyCellType {
	if n == 4 {
		return vtkQuad
	}
	return vtkPolygon
}
