package vtkio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orneryd/cmap2/pkg/builder"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/stretchr/testify/require"
)

const twoTriangleVTK = `# vtk DataFile Version 3.0
two triangles sharing an edge
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
0 1 0
1 1 0
CELLS 2 8
3 0 1 2
3 1 3 2
CELL_TYPES 2
5
5
`

func TestReadLegacyTriangles(t *testing.T) {
	mesh, err := ReadLegacy(strings.NewReader(twoTriangleVTK))
	require.NoError(t, err)
	require.Len(t, mesh.Points, 4)
	require.Equal(t, cmap.Point{X: 1, Y: 1}, mesh.Points[3])
	require.Len(t, mesh.Cells, 2)
	for _, c := range mesh.Cells {
		require.Equal(t, builder.Triangle, c.Type)
		require.Len(t, c.Indices, 3)
	}
}

func TestReadLegacyRejectsUnsupportedDataset(t *testing.T) {
	src := "# vtk DataFile Version 3.0\ntitle\nASCII\nDATASET POLYDATA\n"
	_, err := ReadLegacy(strings.NewReader(src))
	require.ErrorIs(t, err, ErrUnsupportedDataset)
}

func TestReadLegacyRejectsPolyLineCells(t *testing.T) {
	src := `# vtk DataFile Version 3.0
title
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 3 float
0 0 0
1 0 0
2 0 0
CELLS 1 4
3 0 1 2
CELL_TYPES 1
4
`
	_, err := ReadLegacy(strings.NewReader(src))
	require.ErrorIs(t, err, ErrUnsupportedCellType)
}

func TestReadLegacyDropsVertexAndLineCells(t *testing.T) {
	src := `# vtk DataFile Version 3.0
title
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
0 1 0
1 1 0
CELLS 3 12
1 0
2 0 1
3 0 1 2
CELL_TYPES 3
1
3
5
`
	mesh, err := ReadLegacy(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, mesh.Cells, 1)
	require.Equal(t, builder.Triangle, mesh.Cells[0].Type)
}

func TestReadLegacyMismatchedCellsAndCellTypesIsMalformed(t *testing.T) {
	src := `# vtk DataFile Version 3.0
title
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 3 float
0 0 0
1 0 0
0 1 0
CELLS 1 4
3 0 1 2
CELL_TYPES 2
5
5
`
	_, err := ReadLegacy(strings.NewReader(src))
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestWriteLegacyThenReadLegacyRoundTrip(t *testing.T) {
	points := []cmap.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	faces := []OutputFace{
		{Indices: []int{0, 1, 2}},
		{Indices: []int{1, 3, 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLegacy(&buf, points, nil, faces))

	mesh, err := ReadLegacy(&buf)
	require.NoError(t, err)
	require.Equal(t, points, mesh.Points)
	require.Len(t, mesh.Cells, 2)
	// faces of 3 vertices round-trip as VTK_POLYGON per the output rule, not
	// VTK_TRIANGLE, so on re-read they come back as builder.Polygon.
	for _, c := range mesh.Cells {
		require.Equal(t, builder.Polygon, c.Type)
	}
}

func TestWriteLegacyQuadUsesQuadCellType(t *testing.T) {
	points := []cmap.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	faces := []OutputFace{{Indices: []int{0, 1, 2, 3}}}

	var buf bytes.Buffer
	require.NoError(t, WriteLegacy(&buf, points, nil, faces))

	mesh, err := ReadLegacy(&buf)
	require.NoError(t, err)
	require.Len(t, mesh.Cells, 1)
	require.Equal(t, builder.Quad, mesh.Cells[0].Type)
}

func TestWriteLegacyIncludesEdges(t *testing.T) {
	points := []cmap.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	edges := []OutputEdge{{A: 0, B: 1}}

	var buf bytes.Buffer
	require.NoError(t, WriteLegacy(&buf, points, edges, nil))
	// edges are written but dropped on re-read (spec.md §6 input rule
	// silently ignores VTK_LINE cells), so the round trip should produce no
	// face cells at all.
	mesh, err := ReadLegacy(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, mesh.Cells)
	require.Contains(t, buf.String(), "CELL_TYPES 1")
}
