package grisubal

import "github.com/orneryd/cmap2/pkg/attribute"

// Boundary tags a dart with which side of the inserted polyline's boundary
// edge it runs along (spec.md §4.8 "side classification for clipping"),
// grounded on honeycomb's Boundary enum (original_source, usage in
// kernel.rs's insert_edges_in_map). Boundary is a dart-level tag, written
// once when a boundary edge is synthesized and read by the clip pass; it is
// never merged or split through a sew, so it's kept as a private
// attribute.Storage rather than registered into attrmanager.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryLeft
	BoundaryRight
)

// boundaryFunctor is never exercised in practice (Boundary darts are never
// sewn after classification) but attribute.Storage requires one.
func boundaryFunctor() attribute.Functor[Boundary] {
	return attribute.FuncFunctor[Boundary]{
		MergeFn: func(a, b Boundary) (Boundary, error) {
			if a != BoundaryNone {
				return a, nil
			}
			return b, nil
		},
		SplitFn: func(a Boundary) (Boundary, Boundary, error) {
			return a, a, nil
		},
	}
}
