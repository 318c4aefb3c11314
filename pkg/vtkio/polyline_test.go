package vtkio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const squarePolylineVTK = `# vtk DataFile Version 3.0
unit square boundary
ASCII
DATASET POLYDATA
POINTS 4 float
0 0 0
1 0 0
1 1 0
0 1 0
CELLS 4 12
2 0 1
2 1 2
2 2 3
2 3 0
CELL_TYPES 4
3
3
3
3
`

func TestReadLegacyPolylineSquare(t *testing.T) {
	geom, err := ReadLegacyPolyline(strings.NewReader(squarePolylineVTK))
	require.NoError(t, err)
	require.Len(t, geom.Vertices, 4)
	require.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}, geom.Segments)
}

const chainPolylineVTK = `# vtk DataFile Version 3.0
polyline as a single VTK_POLY_LINE cell
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
2 0 0
CELLS 1 5
3 0 1 2
CELL_TYPES 1
4
`

func TestReadLegacyPolylineSplitsPolyLineIntoSegments(t *testing.T) {
	geom, err := ReadLegacyPolyline(strings.NewReader(chainPolylineVTK))
	require.NoError(t, err)
	require.Len(t, geom.Vertices, 3)
	require.Equal(t, [][2]int{{0, 1}, {1, 2}}, geom.Segments)
}
