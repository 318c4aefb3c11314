// Package grisubal implements the polyline-overlay meshing kernel (spec.md
// §4.8): given a background grid and an input polyline ("geometry"), it
// inserts the polyline into the grid as new edges, splitting whichever grid
// edges the polyline crosses, and tags the darts of every inserted edge with
// a Boundary attribute. RemoveNormal/RemoveAntiNormal then classify every
// dart's side of the polyline from those tags and clip the mesh to one side.
//
// Grounded on honeycomb-kernels' grisubal module (original_source,
// honeycomb-kernels/src/grisubal/kernel.rs): the four-pass structure
// (intersection enumeration, insertion, edge synthesis, connectivity
// rewrite) is a port of that file's build_mesh, generate_intersection_data,
// insert_intersections, generate_edge_data and insert_edges_in_map. The
// clipping pass (clip.go) is not a port: remove_normal and
// remove_anti_normal are todo!() in that file.
package grisubal

import "math"

// Geometry is a 2D polyline (possibly several disjoint polylines) described
// as a shared vertex pool plus a set of directed segments referencing it by
// index, with an optional set of "points of interest" — vertices that must
// survive as distinct points in the output mesh even when they fall in the
// interior of a grid cell (spec.md §4.8, honeycomb's Geometry2).
type Geometry struct {
	Vertices []Point
	Segments [][2]int
	PoI      map[int]bool
}

// Point is the 2D coordinate type grisubal operates on. It is a distinct
// type with the same fields as cmap.Point, so values convert between the two
// with a plain type conversion.
type Point struct{ X, Y float64 }

func (p Point) sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

func (p Point) length() float64 { return math.Hypot(p.X, p.Y) }

// gridCellID identifies a grid cell by its (column, row) indices.
type gridCellID struct{ X, Y int }

func cellOf(p, origin Point, cellSize [2]float64) gridCellID {
	return gridCellID{
		X: int(math.Floor((p.X - origin.X) / cellSize[0])),
		Y: int(math.Floor((p.Y - origin.Y) / cellSize[1])),
	}
}

func manhattanDist(a, b gridCellID) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func diff(a, b gridCellID) (int, int) { return b.X - a.X, b.Y - a.Y }

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func inBounds(c gridCellID, nx, ny int) bool {
	return c.X >= 0 && c.X < nx && c.Y >= 0 && c.Y < ny
}

// packCellID/unpackCellID round-trip a gridCellID through the uint64 id
// pkg/spatialidx.GridIndex keys entries by.
func packCellID(c gridCellID) uint64 {
	return uint64(uint32(c.X))<<32 | uint64(uint32(c.Y))
}

func unpackCellID(id uint64) gridCellID {
	return gridCellID{X: int(int32(id >> 32)), Y: int(int32(id))}
}
