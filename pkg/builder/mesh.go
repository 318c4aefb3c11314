package builder

import (
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// CellType is a VTK cell type restricted to the ones a 2-map can represent
// without orientation or dimension ambiguity (spec.md §4.7, grounded on
// honeycomb's build_2d_from_vtk, original_source cmapbuilder/io/mod.rs).
type CellType int

const (
	Triangle CellType = iota
	Quad
	Polygon
)

// Cell is one mesh cell as a list of indices into a shared points slice, in
// winding order.
type Cell struct {
	Type    CellType
	Indices []int
}

// BuildFromCells constructs one face per cell, linking its darts around the
// cell via β1 and writing the corresponding point to each dart's vertex
// slot, then 2-sews every pair of cells that share an edge with opposite
// winding (the same edge traversed in both directions, exactly as
// build_2d_from_vtk's sew_buffer keyed on (vertexIndex, vertexIndex) pairs
// does). Returns, per cell, the dart allocated for its first vertex.
func BuildFromCells(m *cmap.CMap, points []cmap.Point, cells []Cell) ([]dart.ID, error) {
	firstDarts := make([]dart.ID, len(cells))
	sewBuffer := make(map[[2]int]dart.ID)

	for ci, c := range cells {
		n := len(c.Indices)
		switch c.Type {
		case Triangle:
			if n != 3 {
				return nil, ErrInvalidCellVertexCount
			}
		case Quad:
			if n != 4 {
				return nil, ErrInvalidCellVertexCount
			}
		case Polygon:
			if n < 3 {
				return nil, ErrInvalidCellVertexCount
			}
		default:
			return nil, ErrUnsupportedCellType
		}

		ds := m.InsertFreeDarts(n)
		firstDarts[ci] = ds[0]

		err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
			for i, vi := range c.Indices {
				if err := m.Vertices().Set(tx, ds[i], points[vi]); err != nil {
					return err
				}
			}
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				if err := m.OneLink(tx, ds[i], ds[j]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			j := (i + 1) % n
			sewBuffer[[2]int{c.Indices[i], c.Indices[j]}] = ds[i]
		}
	}

	keys := make([][2]int, 0, len(sewBuffer))
	for k := range sewBuffer {
		keys = append(keys, k)
	}
	for _, k := range keys {
		d0, ok := sewBuffer[k]
		if !ok {
			continue // already consumed as the reverse of an earlier pair
		}
		rev := [2]int{k[1], k[0]}
		d1, ok := sewBuffer[rev]
		if !ok {
			continue // boundary edge, nothing to sew it to
		}
		delete(sewBuffer, k)
		delete(sewBuffer, rev)
		if err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
			return m.TwoSew(tx, d0, d1)
		}); err != nil {
			return nil, err
		}
	}

	return firstDarts, nil
}
