package grisubal

import "errors"

// ErrDegenerateSegment is returned when a geometry segment has zero length
// (its two vertices coincide), which makes direction-based intersection math
// undefined.
var ErrDegenerateSegment = errors.New("grisubal: degenerate (zero-length) segment")

// ErrPointOutsideGrid is returned when a geometry vertex falls outside the
// bounds of the background grid it is being overlaid onto.
var ErrPointOutsideGrid = errors.New("grisubal: geometry vertex outside grid bounds")

// ErrUnsupportedTraversal is returned when the edge-synthesis pass, walking
// the broken-up segment chain from a grid crossing, reaches a geometry
// vertex with no outgoing segment before the next crossing (for example an
// open polyline end), so the chain cannot be closed into an edge.
var ErrUnsupportedTraversal = errors.New("grisubal: could not resolve grid crossing for segment")
