package grisubal

import (
	"sort"

	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

const cornerEpsilon = 1e-9

// gvKind tags which variant of honeycomb's GeometryVertex enum a
// geometryVertex represents.
type gvKind int

const (
	gvRegular gvKind = iota
	gvPoI
	gvIntersec
	gvIntersecCorner
)

// geometryVertex is a node in the intermediate segment graph built by
// generateIntersectionData: either a vertex from the input geometry
// (Regular/PoI) or a freshly discovered grid crossing (Intersec/
// IntersecCorner). It's comparable so it can key newSegments directly,
// mirroring honeycomb's GeometryVertex (original_source, grisubal/
// model.rs usage).
type geometryVertex struct {
	kind   gvKind
	idx    int // Regular/PoI: index into Geometry.Vertices; Intersec: index into the intersection metadata slice
	dartID dart.ID // IntersecCorner only
}

func makeGV(geom *Geometry, vid int) geometryVertex {
	if geom.PoI != nil && geom.PoI[vid] {
		return geometryVertex{kind: gvPoI, idx: vid}
	}
	return geometryVertex{kind: gvRegular, idx: vid}
}

func isIntersecLike(v geometryVertex) bool {
	return v.kind == gvIntersec || v.kind == gvIntersecCorner
}

// intersectionRecord is one (dart, t) pair: dart identifies the grid edge
// crossed, t is the crossing's position along that edge (0 at the edge's
// own tail vertex, 1 at its head).
type intersectionRecord struct {
	dartID dart.ID
	t      float64
}

// sideST computes (s, t): s is the crossing's position along the input
// segment va->vb, t is its position along the cell edge incident to vdart,
// for the grid side named by `side` (0=down,1=right,2=up,3=left). Grounded
// on kernel.rs's left_intersec!/right_intersec!/down_intersec!/up_intersec!
// macros.
func sideST(side int, va, vb, vdart Point, cellSize [2]float64) (s, t float64) {
	switch side {
	case 3: // left
		s = (vdart.X - va.X) / (vb.X - va.X)
		t = (vdart.Y - va.Y - (vb.Y-va.Y)*s) / cellSize[1]
	case 1: // right
		s = (vdart.X - va.X) / (vb.X - va.X)
		t = ((vb.Y-va.Y)*s - (vdart.Y - va.Y)) / cellSize[1]
	case 0: // down
		s = (vdart.Y - va.Y) / (vb.Y - va.Y)
		t = ((vb.X-va.X)*s - (vdart.X - va.X)) / cellSize[0]
	case 2: // up
		s = (vdart.Y - va.Y) / (vb.Y - va.Y)
		t = ((vdart.X - va.X) - (vb.X-va.X)*s) / cellSize[0]
	}
	return s, t
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func reverseGV(vs []geometryVertex) {
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
}

// generateIntersectionData builds the exhaustive list of atomic segments
// making up the input geometry intersected with the grid: for every
// geometry segment whose endpoints don't share a grid cell, the segment is
// broken at every grid edge it crosses. Grounded on kernel.rs's
// generate_intersection_data.
func generateIntersectionData(ctx *Mesh, geom *Geometry) (map[geometryVertex]geometryVertex, []intersectionRecord, error) {
	newSegments := make(map[geometryVertex]geometryVertex, len(geom.Segments)*2)
	var meta []intersectionRecord

	for _, seg := range geom.Segments {
		v1id, v2id := seg[0], seg[1]
		v1, v2 := geom.Vertices[v1id], geom.Vertices[v2id]
		if v1 == v2 {
			return nil, nil, ErrDegenerateSegment
		}
		c1, c2 := ctx.cellOf(v1), ctx.cellOf(v2)
		if !inBounds(c1, ctx.nx, ctx.ny) || !inBounds(c2, ctx.nx, ctx.ny) {
			return nil, nil, ErrPointOutsideGrid
		}

		switch manhattanDist(c1, c2) {
		case 0:
			newSegments[makeGV(geom, v1id)] = makeGV(geom, v2id)

		case 1:
			dx, dy := diff(c1, c2)
			var side int
			switch {
			case dx == -1 && dy == 0:
				side = 3
			case dx == 1 && dy == 0:
				side = 1
			case dx == 0 && dy == -1:
				side = 0
			case dx == 0 && dy == 1:
				side = 2
			}
			d := ctx.edgeDart(c1, side)
			_, t := sideST(side, v1, v2, ctx.vertexPos(d), ctx.cellSize)
			id := len(meta)
			meta = append(meta, intersectionRecord{d, t})
			newSegments[makeGV(geom, v1id)] = geometryVertex{kind: gvIntersec, idx: id}
			newSegments[geometryVertex{kind: gvIntersec, idx: id}] = makeGV(geom, v2id)

		default:
			dx, dy := diff(c1, c2)
			var chain []geometryVertex
			switch {
			case dy == 0:
				chain = axisTraversal(ctx, &meta, c1, dx, v1, v2, true)
			case dx == 0:
				chain = axisTraversal(ctx, &meta, c1, dy, v1, v2, false)
			default:
				chain = diagonalTraversal(ctx, &meta, c1, dx, dy, v1, v2)
			}
			vs := append([]geometryVertex{makeGV(geom, v1id)}, chain...)
			vs = append(vs, makeGV(geom, v2id))
			for i := 0; i+1 < len(vs); i++ {
				newSegments[vs[i]] = vs[i+1]
			}
		}
	}

	return newSegments, meta, nil
}

// axisTraversal handles a straight horizontal (horizontal=true) or vertical
// traversal across several grid lines, grounded on kernel.rs's (i,0)/(0,j)
// branches.
func axisTraversal(ctx *Mesh, meta *[]intersectionRecord, c1 gridCellID, delta int, v1, v2 Point, horizontal bool) []geometryVertex {
	var base int
	if horizontal {
		base = c1.X
	} else {
		base = c1.Y
	}
	lo, hi := minInt(base, base+1+delta), maxInt(base+delta, base+1)

	var side int
	if horizontal {
		if delta > 0 {
			side = 1
		} else {
			side = 3
		}
	} else {
		if delta > 0 {
			side = 2
		} else {
			side = 0
		}
	}

	out := make([]geometryVertex, 0, hi-lo)
	for x := lo; x < hi; x++ {
		var c gridCellID
		if horizontal {
			c = gridCellID{X: x, Y: c1.Y}
		} else {
			c = gridCellID{X: c1.X, Y: x}
		}
		d := ctx.edgeDart(c, side)
		_, t := sideST(side, v1, v2, ctx.vertexPos(d), ctx.cellSize)
		id := len(*meta)
		*meta = append(*meta, intersectionRecord{d, t})
		out = append(out, geometryVertex{kind: gvIntersec, idx: id})
	}
	if delta < 0 {
		reverseGV(out)
	}
	return out
}

// diagonalTraversal handles a traversal through a sub-grid of cells neither
// purely horizontal nor vertical, grounded on kernel.rs's (i,j) branch:
// every cell in the bounding sub-grid is checked for a vertical-side and a
// horizontal-side candidate crossing, corner-tangent crossings are
// special-cased, and the surviving candidates are ordered by their position
// along the input segment.
func diagonalTraversal(ctx *Mesh, meta *[]intersectionRecord, c1 gridCellID, i, j int, v1, v2 Point) []geometryVertex {
	xlo, xhi := minInt(c1.X, c1.X+1+i), maxInt(c1.X+i, c1.X+1)
	ylo, yhi := minInt(c1.Y, c1.Y+1+j), maxInt(c1.Y+j, c1.Y+1)

	vside, hside := 3, 0
	if i > 0 {
		vside = 1
	}
	if j > 0 {
		hside = 2
	}

	type cand struct {
		s, t   float64
		dartID dart.ID
		corner bool
	}
	var cands []cand

	// Candidate cells come from ctx.cellIndex rather than a hand-rolled
	// (x,y) double loop: the bounding sub-grid's own world-space box is the
	// query. The index's overlap test is inclusive, so it also returns the
	// neighbouring cells that only touch the box's border; the explicit range
	// check below is the "exact test" that drops them, as the index's own
	// contract asks the caller to do.
	minX, minY, _, _ := ctx.cellWorldBounds(gridCellID{X: xlo, Y: ylo})
	_, _, maxX, maxY := ctx.cellWorldBounds(gridCellID{X: xhi - 1, Y: yhi - 1})

	for _, id := range ctx.cellIndex.Query(minX, minY, maxX, maxY) {
		c := unpackCellID(id)
		if c.X < xlo || c.X >= xhi || c.Y < ylo || c.Y >= yhi {
			continue
		}
		vDart, hDart := ctx.edgeDart(c, vside), ctx.edgeDart(c, hside)
		vs, vt := sideST(vside, v1, v2, ctx.vertexPos(vDart), ctx.cellSize)
		hs, ht := sideST(hside, v1, v2, ctx.vertexPos(hDart), ctx.cellSize)

		switch {
		// corner traversal: the segment passes exactly through the
		// cell's corner. We keep the data at relative position 0 (the
		// dart whose tail sits at the corner), the one that should be
		// linked to by the previous point of the segment.
		case absF(vt) < cornerEpsilon && absF(ht-1) < cornerEpsilon:
			cands = append(cands, cand{vs, 0, vDart, true})
		case absF(vt-1) < cornerEpsilon && absF(ht) < cornerEpsilon:
			cands = append(cands, cand{hs, 0, hDart, true})
		case vs > 0 && vs < 1 && vt > 0 && vt < 1:
			cands = append(cands, cand{vs, vt, vDart, false})
		case hs > 0 && hs < 1 && ht > 0 && ht < 1:
			cands = append(cands, cand{hs, ht, hDart, false})
		}
	}

	sort.Slice(cands, func(a, b int) bool { return cands[a].s < cands[b].s })

	out := make([]geometryVertex, 0, len(cands))
	for _, c := range cands {
		if c.corner {
			out = append(out, geometryVertex{kind: gvIntersecCorner, dartID: c.dartID})
			continue
		}
		id := len(*meta)
		*meta = append(*meta, intersectionRecord{c.dartID, c.t})
		out = append(out, geometryVertex{kind: gvIntersec, idx: id})
	}
	return out
}

// insertIntersections groups the raw (dart, t) records by grid edge,
// splits each crossed edge once at all of its crossing points in order,
// and maps the resulting darts back to the metadata's original indexing so
// generateEdgeData can look them up by GeometryVertex::Intersec index.
// Grounded on kernel.rs's insert_intersections.
func insertIntersections(ctx *Mesh, meta []intersectionRecord) ([]dart.ID, error) {
	res := make([]dart.ID, len(meta))

	type entry struct {
		idx      int
		t        float64
		origDart dart.ID
	}
	groups := make(map[dart.ID][]entry)
	var order []dart.ID
	for idx, rec := range meta {
		edgeID := ctx.m.AtomicEdgeID(rec.dartID)
		t := rec.t
		if rec.dartID != edgeID {
			t = 1 - t // condition works in 2D: an edge has at most 2 darts
		}
		if _, ok := groups[edgeID]; !ok {
			order = append(order, edgeID)
		}
		groups[edgeID] = append(groups[edgeID], entry{idx, t, rec.dartID})
	}

	for _, edgeID := range order {
		es := groups[edgeID]
		sort.Slice(es, func(a, b int) bool { return es[a].t < es[b].t })
		fracs := make([]float64, len(es))
		for i, e := range es {
			fracs[i] = e.t
		}

		var newDarts []dart.ID
		err := atomically(ctx.m, func(tx *txcell.Transaction) error {
			var err error
			newDarts, err = ctx.m.SplitEdgeAt(tx, edgeID, fracs)
			return err
		})
		if err != nil {
			return nil, err
		}

		for i, e := range es {
			if e.origDart == edgeID {
				res[e.idx] = newDarts[i]
			} else {
				res[e.idx] = ctx.otherSide(newDarts[i])
			}
		}
	}

	return res, nil
}

// otherSide returns β1(β2(d)): the dart that continues on from d's
// crossing point in the direction of d's own β2 partner's face, used when
// an intersection was originally identified by the non-canonical dart of
// its edge.
func (g *Mesh) otherSide(d dart.ID) dart.ID {
	b2 := g.m.Betas().AtomicRead(beta.Beta2, d)
	return g.m.Betas().AtomicRead(beta.Beta1, b2)
}
