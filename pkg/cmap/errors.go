package cmap

import "errors"

// ErrGeometricInconsistency is returned by TwoSew when the stored vertex
// positions of the two edges being sewn are not (approximately) antiparallel,
// i.e. sewing them would fold the mesh back on itself (spec.md §4.6.2,
// "geometric inconsistency" failure mode, checked only for 2-Sew).
var ErrGeometricInconsistency = errors.New("cmap: geometrically inconsistent sew (edges are not antiparallel)")

// ErrInvalidSplitCount is returned by SplitNEdge when n < 2: splitting an
// edge into fewer than two segments is not a split.
var ErrInvalidSplitCount = errors.New("cmap: splitn_edge requires n >= 2")
