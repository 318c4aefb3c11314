package builder

import (
	"log"
	"math"

	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// GridDescriptor describes a regular 2D grid of quad cells. The caller must
// set exactly two of NCells, LenPerCell, Lens (the third is derived);
// grounded on honeycomb's GridDescriptor::parse_2d (original_source,
// cmapbuilder/grid/descriptor.rs and cmap/builder/grid.rs).
type GridDescriptor struct {
	Origin     cmap.Point
	NCells     *[2]int
	LenPerCell *[2]float64
	Lens       *[2]float64
}

// WithOrigin sets the grid's bottom-left corner.
func (g GridDescriptor) WithOrigin(p cmap.Point) GridDescriptor {
	g.Origin = p
	return g
}

// WithNCells sets the cell counts along x and y.
func (g GridDescriptor) WithNCells(nx, ny int) GridDescriptor {
	v := [2]int{nx, ny}
	g.NCells = &v
	return g
}

// WithLenPerCell sets the per-cell edge lengths along x and y.
func (g GridDescriptor) WithLenPerCell(lx, ly float64) GridDescriptor {
	v := [2]float64{lx, ly}
	g.LenPerCell = &v
	return g
}

// WithLens sets the grid's total extent along x and y.
func (g GridDescriptor) WithLens(lx, ly float64) GridDescriptor {
	v := [2]float64{lx, ly}
	g.Lens = &v
	return g
}

// parse resolves the descriptor into a concrete (n_cells, len_per_cell)
// pair, deriving whichever of the three the caller omitted.
func (g GridDescriptor) parse() (nCells [2]int, lenPerCell [2]float64, err error) {
	switch {
	case g.NCells != nil && g.LenPerCell != nil:
		if g.Lens != nil {
			log.Println("W: grid descriptor: all three of NCells/LenPerCell/Lens were given; Lens is ignored")
		}
		if g.LenPerCell[0] <= 0 || g.LenPerCell[1] <= 0 {
			return nCells, lenPerCell, ErrInvalidGridParameters
		}
		return *g.NCells, *g.LenPerCell, nil

	case g.NCells != nil && g.Lens != nil:
		if g.Lens[0] <= 0 || g.Lens[1] <= 0 {
			return nCells, lenPerCell, ErrInvalidGridParameters
		}
		return *g.NCells, [2]float64{
			g.Lens[0] / float64(g.NCells[0]),
			g.Lens[1] / float64(g.NCells[1]),
		}, nil

	case g.LenPerCell != nil && g.Lens != nil:
		if g.LenPerCell[0] <= 0 || g.LenPerCell[1] <= 0 || g.Lens[0] <= 0 || g.Lens[1] <= 0 {
			return nCells, lenPerCell, ErrInvalidGridParameters
		}
		return [2]int{
			int(math.Ceil(g.Lens[0] / g.LenPerCell[0])),
			int(math.Ceil(g.Lens[1] / g.LenPerCell[1])),
		}, *g.LenPerCell, nil

	default:
		return nCells, lenPerCell, ErrMissingGridParameters
	}
}

// BuildGrid constructs a regular grid of quad faces in m, corner-sewing
// adjacent cells together, and returns the per-cell dart quadruples indexed
// [y][x] as [bottomLeftToBottomRight, bottomRightToTopRight,
// topRightToTopLeft, topLeftToBottomLeft].
func BuildGrid(m *cmap.CMap, desc GridDescriptor) ([][][4]dart.ID, error) {
	nCells, lenPerCell, err := desc.parse()
	if err != nil {
		return nil, err
	}
	nx, ny := nCells[0], nCells[1]

	cells := make([][][4]dart.ID, ny)
	for iy := 0; iy < ny; iy++ {
		cells[iy] = make([][4]dart.ID, nx)
		for ix := 0; ix < nx; ix++ {
			ds := m.InsertFreeDarts(4)
			copy(cells[iy][ix][:], ds)

			bl := cmap.Point{X: desc.Origin.X + float64(ix)*lenPerCell[0], Y: desc.Origin.Y + float64(iy)*lenPerCell[1]}
			br := cmap.Point{X: desc.Origin.X + float64(ix+1)*lenPerCell[0], Y: desc.Origin.Y + float64(iy)*lenPerCell[1]}
			tr := cmap.Point{X: desc.Origin.X + float64(ix+1)*lenPerCell[0], Y: desc.Origin.Y + float64(iy+1)*lenPerCell[1]}
			tl := cmap.Point{X: desc.Origin.X + float64(ix)*lenPerCell[0], Y: desc.Origin.Y + float64(iy+1)*lenPerCell[1]}

			err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
				if err := m.Vertices().Set(tx, ds[0], bl); err != nil {
					return err
				}
				if err := m.Vertices().Set(tx, ds[1], br); err != nil {
					return err
				}
				if err := m.Vertices().Set(tx, ds[2], tr); err != nil {
					return err
				}
				if err := m.Vertices().Set(tx, ds[3], tl); err != nil {
					return err
				}
				if err := m.OneLink(tx, ds[0], ds[1]); err != nil {
					return err
				}
				if err := m.OneLink(tx, ds[1], ds[2]); err != nil {
					return err
				}
				if err := m.OneLink(tx, ds[2], ds[3]); err != nil {
					return err
				}
				return m.OneLink(tx, ds[3], ds[0])
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			cur := cells[iy][ix]
			if ix+1 < nx {
				// current cell's right edge (cur[1]) runs bottom-right to
				// top-right; the neighbor's left edge (its dart index 3)
				// runs top-left to bottom-left, the antiparallel match.
				neighbor := cells[iy][ix+1]
				if err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
					return m.TwoSew(tx, cur[1], neighbor[3])
				}); err != nil {
					return nil, err
				}
			}
			if iy+1 < ny {
				// current cell's top edge (cur[2]) runs top-right to
				// top-left; the neighbor-above's bottom edge (its dart
				// index 0) runs bottom-left to bottom-right.
				neighbor := cells[iy+1][ix]
				if err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
					return m.TwoSew(tx, cur[2], neighbor[0])
				}); err != nil {
					return nil, err
				}
			}
		}
	}

	return cells, nil
}
