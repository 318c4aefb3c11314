package grisubal

import (
	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// MapEdge describes one atomic segment to be spliced into the map: the
// darts marking where it starts and ends (already present in the map, from
// insertIntersections) plus any points-of-interest it must pass through on
// the way. Grounded on kernel.rs's MapEdge.
type MapEdge struct {
	Start         dart.ID
	Intermediates []Point
	End           dart.ID
}

// generateEdgeData collapses every run of Regular/PoI vertices between two
// Intersec(-Corner) anchors into a single MapEdge, carrying PoI positions
// along as intermediates. Grounded on kernel.rs's generate_edge_data.
func generateEdgeData(ctx *Mesh, geom *Geometry, newSegments map[geometryVertex]geometryVertex, intersectionDarts []dart.ID) ([]MapEdge, error) {
	var edges []MapEdge

	for start, v := range newSegments {
		if !isIntersecLike(start) {
			continue
		}

		end := v
		var intermediates []Point
		for !isIntersecLike(end) {
			switch end.kind {
			case gvPoI:
				intermediates = append(intermediates, geom.Vertices[end.idx])
			case gvRegular:
				// pass through
			}
			next, ok := newSegments[end]
			if !ok {
				return nil, ErrUnsupportedTraversal
			}
			end = next
		}

		var dStart dart.ID
		switch start.kind {
		case gvIntersec:
			dStart = ctx.m.Betas().AtomicRead(beta.Beta2, intersectionDarts[start.idx])
		case gvIntersecCorner:
			dStart = ctx.m.Betas().AtomicRead(beta.Beta2, ctx.m.Betas().AtomicRead(beta.Beta1, ctx.m.Betas().AtomicRead(beta.Beta2, start.dartID)))
		}

		var dEnd dart.ID
		switch end.kind {
		case gvIntersec:
			dEnd = intersectionDarts[end.idx]
		case gvIntersecCorner:
			dEnd = end.dartID
		}

		edges = append(edges, MapEdge{Start: dStart, Intermediates: intermediates, End: dEnd})
	}

	return edges, nil
}

// insertEdgesInMap splices every MapEdge into the map as a brand-new
// boundary edge, unlinking the anchor darts' old neighbors, building the
// new edge (with an intermediate split per PoI, if any), and tagging every
// dart along the new boundary edge with Boundary so clip.go can later
// classify sides. Grounded on kernel.rs's insert_edges_in_map.
func insertEdgesInMap(ctx *Mesh, edges []MapEdge) error {
	for _, e := range edges {
		var dNew dart.ID
		err := atomically(ctx.m, func(tx *txcell.Transaction) error {
			bStartOld, err := beta.Read(ctx.m.Betas(), tx, beta.Beta1, e.Start)
			if err != nil {
				return err
			}
			bEndOld, err := beta.Read(ctx.m.Betas(), tx, beta.Beta0, e.End)
			if err != nil {
				return err
			}
			if err := ctx.m.OneUnlink(tx, e.Start); err != nil {
				return err
			}
			if bEndOld != dart.Null {
				if err := ctx.m.OneUnlink(tx, bEndOld); err != nil {
					return err
				}
			}

			ds := ctx.m.InsertFreeDarts(2)
			var b2New dart.ID
			dNew, b2New = ds[0], ds[1]
			if err := ctx.m.TwoLink(tx, dNew, b2New); err != nil {
				return err
			}

			if err := ctx.m.OneLink(tx, e.Start, dNew); err != nil {
				return err
			}
			if err := ctx.m.OneLink(tx, b2New, bStartOld); err != nil {
				return err
			}
			if err := ctx.m.OneLink(tx, dNew, e.End); err != nil {
				return err
			}
			if bEndOld != dart.Null {
				if err := ctx.m.OneLink(tx, bEndOld, b2New); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if len(e.Intermediates) > 0 {
			// The evenly spaced fractions (i+1)/(n+1) are placeholder split
			// positions: SplitEdgeAt needs ascending fractions to place its
			// new darts, but the real positions are known exactly (they're
			// PoI vertices), so we overwrite every new vertex right after
			// splitting. kernel.rs's insert_edges_in_map passes a repeated
			// 0.5 dummy value here instead.
			fracs := make([]float64, len(e.Intermediates))
			for i := range fracs {
				fracs[i] = float64(i+1) / float64(len(fracs)+1)
			}
			err := atomically(ctx.m, func(tx *txcell.Transaction) error {
				edgeID, err := ctx.m.EdgeID(tx, dNew)
				if err != nil {
					return err
				}
				mids, err := ctx.m.SplitEdgeAt(tx, edgeID, fracs)
				if err != nil {
					return err
				}
				for i, d := range mids {
					vid, err := ctx.m.VertexID(tx, d)
					if err != nil {
						return err
					}
					p := e.Intermediates[i]
					if err := ctx.m.Vertices().Set(tx, vid, cmap.Point{X: p.X, Y: p.Y}); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		err = atomically(ctx.m, func(tx *txcell.Transaction) error {
			cur, err := beta.Read(ctx.m.Betas(), tx, beta.Beta1, e.Start)
			if err != nil {
				return err
			}
			for cur != e.End {
				if err := ctx.boundary.Set(tx, cur, BoundaryLeft); err != nil {
					return err
				}
				partner, err := beta.Read(ctx.m.Betas(), tx, beta.Beta2, cur)
				if err != nil {
					return err
				}
				if partner != dart.Null {
					if err := ctx.boundary.Set(tx, partner, BoundaryRight); err != nil {
						return err
					}
				}
				cur, err = beta.Read(ctx.m.Betas(), tx, beta.Beta1, cur)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
