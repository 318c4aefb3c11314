package grisubal

import (
	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// Side names which side of the overlaid boundary a dart sits on. SideNormal
// is the side holding the lowest-numbered used dart (the seed of
// classifySides); the winding of the input Geometry's segments is not
// consulted. Supplements
// honeycomb's remove_normal/remove_anti_normal, which are todo!() in the
// retrieved original_source (kernel.rs).
type Side int

const (
	SideUnclassified Side = iota
	SideNormal
	SideAntiNormal
)

// classifySides walks every dart reachable from the grid's darts and
// assigns it a Side: darts propagate their side across β1/β0 (same face,
// same side) and flip across β2 only when crossing a tagged Boundary dart
// pair (crossing the overlay itself reverses which side you're on).
func classifySides(ctx *Mesh) (map[dart.ID]Side, error) {
	sides := make(map[dart.ID]Side)
	all := allDarts(ctx.m)
	if len(all) == 0 {
		return sides, nil
	}

	var visit func(start dart.ID, side Side) error
	queue := []struct {
		d    dart.ID
		side Side
	}{{all[0], SideNormal}}
	sides[all[0]] = SideNormal

	visit = func(d dart.ID, side Side) error {
		var b0, b1, b2 dart.ID
		err := atomically(ctx.m, func(tx *txcell.Transaction) error {
			var err error
			if b0, err = beta.Read(ctx.m.Betas(), tx, beta.Beta0, d); err != nil {
				return err
			}
			if b1, err = beta.Read(ctx.m.Betas(), tx, beta.Beta1, d); err != nil {
				return err
			}
			b2, err = beta.Read(ctx.m.Betas(), tx, beta.Beta2, d)
			return err
		})
		if err != nil {
			return err
		}

		for _, n := range []dart.ID{b0, b1} {
			if n != dart.Null {
				if _, seen := sides[n]; !seen {
					sides[n] = side
					queue = append(queue, struct {
						d    dart.ID
						side Side
					}{n, side})
				}
			}
		}

		if b2 != dart.Null {
			nside := side
			bnd := ctx.boundary.AtomicGet(d)
			if bnd != nil && *bnd != BoundaryNone {
				nside = flip(side)
			}
			if _, seen := sides[b2]; !seen {
				sides[b2] = nside
				queue = append(queue, struct {
					d    dart.ID
					side Side
				}{b2, nside})
			}
		}
		return nil
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if err := visit(item.d, item.side); err != nil {
			return nil, err
		}
	}

	// any dart not reached from all[0] belongs to a disconnected component
	// (e.g. a face fully enclosed by the boundary with no path back out
	// through an untagged β2); treat it as sharing its own component's
	// uniform side by seeding a fresh walk from it.
	for _, d := range all {
		if _, ok := sides[d]; !ok {
			sides[d] = SideNormal
			queue = append(queue, struct {
				d    dart.ID
				side Side
			}{d, SideNormal})
			for len(queue) > 0 {
				item := queue[0]
				queue = queue[1:]
				if err := visit(item.d, item.side); err != nil {
					return nil, err
				}
			}
		}
	}

	return sides, nil
}

func flip(s Side) Side {
	if s == SideNormal {
		return SideAntiNormal
	}
	return SideNormal
}

func allDarts(m *cmap.CMap) []dart.ID {
	var out []dart.ID
	reg := m.Darts()
	for id := dart.ID(1); id < dart.ID(reg.Capacity()); id++ {
		if reg.IsUsed(id) {
			out = append(out, id)
		}
	}
	return out
}

// removeSide deletes every dart classified as side by classifySides,
// unlinking its β0 and β2 links and freeing it. RemoveNormal and
// RemoveAntiNormal call it with SideNormal and SideAntiNormal.
func (g *Mesh) removeSide(side Side) error {
	sides, err := classifySides(g)
	if err != nil {
		return err
	}

	var toFree []dart.ID
	for d, s := range sides {
		if s == side {
			toFree = append(toFree, d)
		}
	}

	for _, d := range toFree {
		err := atomically(g.m, func(tx *txcell.Transaction) error {
			b0, err := beta.Read(g.m.Betas(), tx, beta.Beta0, d)
			if err != nil {
				return err
			}
			b2, err := beta.Read(g.m.Betas(), tx, beta.Beta2, d)
			if err != nil {
				return err
			}
			if b0 != dart.Null {
				if err := g.m.OneUnlink(tx, b0); err != nil && err != beta.ErrAlreadyFree {
					return err
				}
			}
			if b2 != dart.Null {
				if err := g.m.TwoUnlink(tx, d); err != nil && err != beta.ErrAlreadyFree {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		g.m.Darts().Free(d)
	}
	return nil
}

// RemoveNormal frees every face classified on the normal side of the
// overlaid boundary.
func (g *Mesh) RemoveNormal() error { return g.removeSide(SideNormal) }

// RemoveAntiNormal frees every face classified on the anti-normal side of
// the overlaid boundary.
func (g *Mesh) RemoveAntiNormal() error { return g.removeSide(SideAntiNormal) }
