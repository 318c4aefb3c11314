package main

import (
	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/vtkio"
)

// exportMesh walks every used dart in m once and reconstructs the
// points/edges/faces triple pkg/vtkio.WriteLegacy wants. It's a read-only,
// lock-free traversal (spec.md §4.1's atomic-read policy for read-only
// passes): a face is the dart's β1-cycle, an edge is a dart's canonical
// (vertex, β1(vertex)) pair, deduplicated by the i-cell's canonical minimum
// dart (m.AtomicFaceID/m.AtomicEdgeID).
func exportMesh(m *cmap.CMap) (points []cmap.Point, edges []vtkio.OutputEdge, faces []vtkio.OutputFace) {
	vertexIndex := make(map[dart.ID]int)
	pointOf := func(vid dart.ID) int {
		if idx, ok := vertexIndex[vid]; ok {
			return idx
		}
		idx := len(points)
		if p := m.Vertices().AtomicGet(vid); p != nil {
			points = append(points, *p)
		} else {
			points = append(points, cmap.Point{})
		}
		vertexIndex[vid] = idx
		return idx
	}

	seenFace := make(map[dart.ID]bool)
	seenEdge := make(map[dart.ID]bool)
	capacity := m.Darts().Capacity()

	for id := dart.ID(1); id < capacity; id++ {
		if !m.Darts().IsUsed(id) {
			continue
		}

		faceID := m.AtomicFaceID(id)
		if !seenFace[faceID] {
			seenFace[faceID] = true
			var idxs []int
			for cur := faceID; ; {
				idxs = append(idxs, pointOf(m.AtomicVertexID(cur)))
				next := m.Betas().AtomicRead(beta.Beta1, cur)
				if next == dart.Null || next == faceID {
					break
				}
				cur = next
			}
			faces = append(faces, vtkio.OutputFace{Indices: idxs})
		}

		edgeID := m.AtomicEdgeID(id)
		if !seenEdge[edgeID] {
			seenEdge[edgeID] = true
			originVID := m.AtomicVertexID(edgeID)
			destVID := originVID
			if next := m.Betas().AtomicRead(beta.Beta1, edgeID); next != dart.Null {
				destVID = m.AtomicVertexID(next)
			}
			edges = append(edges, vtkio.OutputEdge{A: pointOf(originVID), B: pointOf(destVID)})
		}
	}

	return points, edges, faces
}
