// Package cmap implements the 2D combinatorial map core (spec.md §4.6):
// link/unlink (pure topology), sew/unsew (topology plus attribute fusion),
// i-cell id computation, and k-way edge subdivision. It is the package every
// other domain package (builder, grisubal) is built against.
package cmap

import (
	"math"

	"github.com/orneryd/cmap2/pkg/attrmanager"
	"github.com/orneryd/cmap2/pkg/attribute"
	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/orbit"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// Point is a 2D vertex position. It is the one attribute every vertex
// potentially carries, handled directly by CMap rather than through the
// generic attrmanager registry (spec.md §3 "sparse vertex storage of
// optional 2D points").
type Point struct{ X, Y float64 }

// vertexFunctor merges two coincident vertex positions to their midpoint and
// splits a vertex's position into two identical copies: splitting a point in
// space doesn't change it, only the bookkeeping around it.
func vertexFunctor() attribute.Functor[Point] {
	return attribute.FuncFunctor[Point]{
		MergeFn: func(a, b Point) (Point, error) {
			return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}, nil
		},
		SplitFn: func(a Point) (Point, Point, error) {
			return a, a, nil
		},
	}
}

// CMap is a single 2D combinatorial map: one dart registry, one β-storage,
// one built-in vertex-position attribute storage, and a registry of
// additional user-defined attributes, all sharing a single transactional
// commit domain (spec.md §5 "single shared map value").
type CMap struct {
	space     *txcell.Space
	darts     *dart.Registry
	betas     *beta.Storage
	vertices  *attribute.Storage[Point]
	attrs     *attrmanager.Manager
}

// New creates an empty map with no darts.
func New() *CMap {
	space := txcell.NewSpace()
	return &CMap{
		space:    space,
		darts:    dart.NewRegistry(),
		betas:    beta.NewStorage(space),
		vertices: attribute.NewStorage[Point](space, vertexFunctor()),
		attrs:    attrmanager.NewManager(),
	}
}

// Space returns the map's commit domain, for running transactions via
// Space().Atomically / AtomicallyWithErr.
func (m *CMap) Space() *txcell.Space { return m.space }

// Darts returns the map's dart registry, for allocating free darts ahead of
// linking them (InsertFreeDart is the common-case convenience wrapper).
func (m *CMap) Darts() *dart.Registry { return m.darts }

// Betas returns the map's β-storage, for packages (builder, grisubal, orbit
// callers) that need direct β reads outside the operations CMap exposes.
func (m *CMap) Betas() *beta.Storage { return m.betas }

// Vertices returns the built-in vertex-position attribute storage.
func (m *CMap) Vertices() *attribute.Storage[Point] { return m.vertices }

// Attributes returns the type-keyed manager for user-registered attributes.
func (m *CMap) Attributes() *attrmanager.Manager { return m.attrs }

// InsertFreeDart allocates a single unlinked dart and grows β-storage to
// cover it.
func (m *CMap) InsertFreeDart() dart.ID {
	id := m.darts.AllocateOne()
	m.betas.EnsureCapacity(id)
	return id
}

// InsertFreeDarts allocates n contiguous unlinked darts (see
// dart.Registry.AllocateN) and grows β-storage to cover them.
func (m *CMap) InsertFreeDarts(n int) []dart.ID {
	ids := m.darts.AllocateN(n)
	for _, id := range ids {
		m.betas.EnsureCapacity(id)
	}
	return ids
}

// --- Link/Unlink: pure topology, no attribute fusion (spec.md §4.6.1) ---

func (m *CMap) OneLink(t *txcell.Transaction, a, b dart.ID) error {
	return m.betas.OneLinkCore(t, a, b)
}

func (m *CMap) OneUnlink(t *txcell.Transaction, a dart.ID) error {
	return m.betas.OneUnlinkCore(t, a)
}

func (m *CMap) TwoLink(t *txcell.Transaction, a, b dart.ID) error {
	return m.betas.TwoLinkCore(t, a, b)
}

func (m *CMap) TwoUnlink(t *txcell.Transaction, a dart.ID) error {
	return m.betas.TwoUnlinkCore(t, a)
}

// --- Orbit / cell-id computation (spec.md §4.6.3, §4.6.4) ---

func (m *CMap) VertexID(t *txcell.Transaction, d dart.ID) (dart.ID, error) {
	ids, err := orbit.Collect(t, m.betas, d, orbit.VertexPolicy)
	if err != nil {
		return dart.Null, err
	}
	return orbit.Min(ids), nil
}

func (m *CMap) EdgeID(t *txcell.Transaction, d dart.ID) (dart.ID, error) {
	ids, err := orbit.Collect(t, m.betas, d, orbit.EdgePolicy)
	if err != nil {
		return dart.Null, err
	}
	return orbit.Min(ids), nil
}

func (m *CMap) FaceID(t *txcell.Transaction, d dart.ID) (dart.ID, error) {
	ids, err := orbit.Collect(t, m.betas, d, orbit.FacePolicy)
	if err != nil {
		return dart.Null, err
	}
	return orbit.Min(ids), nil
}

func (m *CMap) AtomicVertexID(d dart.ID) dart.ID {
	return orbit.Min(orbit.CollectAtomic(m.betas, d, orbit.VertexPolicy))
}

func (m *CMap) AtomicEdgeID(d dart.ID) dart.ID {
	return orbit.Min(orbit.CollectAtomic(m.betas, d, orbit.EdgePolicy))
}

func (m *CMap) AtomicFaceID(d dart.ID) dart.ID {
	return orbit.Min(orbit.CollectAtomic(m.betas, d, orbit.FacePolicy))
}

// --- Sew/Unsew (spec.md §4.6.2) ---
//
// Sequencing for every variant, grounded on honeycomb-core's sews/one.rs and
// two.rs: capture the affected cell-ids under the *old* topology, perform
// the pure-topology link/unlink, recompute the cell-ids under the *new*
// topology, then dispatch the attribute merge/split at the new canonical
// id. Failure precedence is: β-precondition (from beta.Storage) first,
// geometric inconsistency second (2-Sew only), attribute-op failure last —
// each check runs, in that order, before any write takes effect.

// OneSew links a to b via β1. If β2(a) is null, a has no existing partner
// edge to fuse a vertex against, so this reduces to a pure 1-Link with no
// attribute merge. Otherwise it fuses V_old(β2(a)) and V_old(b) and writes
// the result at the new canonical id V(b).
func (m *CMap) OneSew(t *txcell.Transaction, a, b dart.ID) error {
	p, err := beta.Read(m.betas, t, beta.Beta2, a)
	if err != nil {
		return err
	}
	if p == dart.Null {
		return m.betas.OneLinkCore(t, a, b)
	}

	vP, err := m.VertexID(t, p)
	if err != nil {
		return err
	}
	vB, err := m.VertexID(t, b)
	if err != nil {
		return err
	}

	if err := m.betas.OneLinkCore(t, a, b); err != nil {
		return err
	}

	newV, err := m.VertexID(t, b)
	if err != nil {
		return err
	}
	if err := m.vertices.Merge(t, newV, vP, vB); err != nil {
		return err
	}
	return attrmanager.MergeAll(m.attrs, t, attrmanager.VertexKind, newV, vP, vB)
}

// OneUnsew undoes OneSew: unlinks a from β1. If β2(a) is null there was no
// vertex fused to begin with, so this reduces to a pure 1-Unlink with no
// attribute split. Otherwise it splits the vertex at β1(a) back into its
// β2(a) and β1(a) pieces.
func (m *CMap) OneUnsew(t *txcell.Transaction, a dart.ID) error {
	p, err := beta.Read(m.betas, t, beta.Beta2, a)
	if err != nil {
		return err
	}
	if p == dart.Null {
		return m.betas.OneUnlinkCore(t, a)
	}

	b, err := beta.Read(m.betas, t, beta.Beta1, a)
	if err != nil {
		return err
	}
	vOld, err := m.VertexID(t, b)
	if err != nil {
		return err
	}

	if err := m.betas.OneUnlinkCore(t, a); err != nil {
		return err
	}

	newP, err := m.VertexID(t, p)
	if err != nil {
		return err
	}
	newB, err := m.VertexID(t, b)
	if err != nil {
		return err
	}
	if err := m.vertices.Split(t, newP, newB, vOld); err != nil {
		return err
	}
	return attrmanager.SplitAll(m.attrs, t, attrmanager.VertexKind, newP, newB, vOld)
}

const geometryEpsilon = 1e-9

// TwoSew links a to b via β2, checking that the two edges are antiparallel
// before committing to the link, then fuses the vertex attributes at both
// resulting shared corners and the edge attribute along the new shared
// edge.
func (m *CMap) TwoSew(t *txcell.Transaction, a, b dart.ID) error {
	aNext, err := beta.Read(m.betas, t, beta.Beta1, a)
	if err != nil {
		return err
	}
	bNext, err := beta.Read(m.betas, t, beta.Beta1, b)
	if err != nil {
		return err
	}

	vA1, err := m.VertexID(t, a)
	if err != nil {
		return err
	}
	vA2, err := m.VertexID(t, aNext)
	if err != nil {
		return err
	}
	vB1, err := m.VertexID(t, b)
	if err != nil {
		return err
	}
	vB2, err := m.VertexID(t, bNext)
	if err != nil {
		return err
	}

	if err := m.checkTwoLinkPrecondition(t, a, b); err != nil {
		return err
	}
	if err := m.checkAntiparallel(t, vA1, vA2, vB1, vB2); err != nil {
		return err
	}

	eA, err := m.EdgeID(t, a)
	if err != nil {
		return err
	}
	eB, err := m.EdgeID(t, b)
	if err != nil {
		return err
	}

	if err := m.betas.TwoLinkCore(t, a, b); err != nil {
		return err
	}

	newV1, err := m.VertexID(t, a)
	if err != nil {
		return err
	}
	if err := m.vertices.Merge(t, newV1, vA1, vB2); err != nil {
		return err
	}
	if err := attrmanager.MergeAll(m.attrs, t, attrmanager.VertexKind, newV1, vA1, vB2); err != nil {
		return err
	}

	newV2, err := m.VertexID(t, aNext)
	if err != nil {
		return err
	}
	if err := m.vertices.Merge(t, newV2, vA2, vB1); err != nil {
		return err
	}
	if err := attrmanager.MergeAll(m.attrs, t, attrmanager.VertexKind, newV2, vA2, vB1); err != nil {
		return err
	}

	newE, err := m.EdgeID(t, a)
	if err != nil {
		return err
	}
	return attrmanager.MergeAll(m.attrs, t, attrmanager.EdgeKind, newE, eA, eB)
}

// checkTwoLinkPrecondition re-reads the β2 NonFreeBase/NonFreeImage
// precondition TwoLinkCore itself enforces, so TwoSew can surface it ahead
// of the geometric-inconsistency check (spec.md §4.6.2 failure precedence:
// β-precondition, then geometric inconsistency, then attribute-op failure).
func (m *CMap) checkTwoLinkPrecondition(t *txcell.Transaction, a, b dart.ID) error {
	curA, err := beta.Read(m.betas, t, beta.Beta2, a)
	if err != nil {
		return err
	}
	if curA != dart.Null {
		return beta.ErrNonFreeBase
	}
	curB, err := beta.Read(m.betas, t, beta.Beta2, b)
	if err != nil {
		return err
	}
	if curB != dart.Null {
		return beta.ErrNonFreeImage
	}
	return nil
}

// checkAntiparallel rejects the sew if both edges have known endpoint
// positions and those positions indicate the edges point the same way
// rather than opposite ways. Missing positions (common mid-construction)
// skip the check rather than blocking the sew.
func (m *CMap) checkAntiparallel(t *txcell.Transaction, vA1, vA2, vB1, vB2 dart.ID) error {
	pA1, err := m.vertices.Get(t, vA1)
	if err != nil {
		return err
	}
	pA2, err := m.vertices.Get(t, vA2)
	if err != nil {
		return err
	}
	pB1, err := m.vertices.Get(t, vB1)
	if err != nil {
		return err
	}
	pB2, err := m.vertices.Get(t, vB2)
	if err != nil {
		return err
	}
	if pA1 == nil || pA2 == nil || pB1 == nil || pB2 == nil {
		return nil
	}

	dirA := Point{pA2.X - pA1.X, pA2.Y - pA1.Y}
	dirB := Point{pB2.X - pB1.X, pB2.Y - pB1.Y}
	dot := dirA.X*dirB.X + dirA.Y*dirB.Y
	lenA := math.Hypot(dirA.X, dirA.Y)
	lenB := math.Hypot(dirB.X, dirB.Y)
	if lenA < geometryEpsilon || lenB < geometryEpsilon {
		return nil
	}
	if dot >= -geometryEpsilon {
		return ErrGeometricInconsistency
	}
	return nil
}

// TwoUnsew undoes TwoSew: unlinks a from β2 and splits both corner vertex
// attributes and the shared edge attribute back apart.
func (m *CMap) TwoUnsew(t *txcell.Transaction, a dart.ID) error {
	b, err := beta.Read(m.betas, t, beta.Beta2, a)
	if err != nil {
		return err
	}
	if b == dart.Null {
		return beta.ErrAlreadyFree
	}

	aNext, err := beta.Read(m.betas, t, beta.Beta1, a)
	if err != nil {
		return err
	}
	bNext, err := beta.Read(m.betas, t, beta.Beta1, b)
	if err != nil {
		return err
	}

	eOld, err := m.EdgeID(t, a)
	if err != nil {
		return err
	}
	v1Old, err := m.VertexID(t, a)
	if err != nil {
		return err
	}
	v2Old, err := m.VertexID(t, aNext)
	if err != nil {
		return err
	}

	if err := m.betas.TwoUnlinkCore(t, a); err != nil {
		return err
	}

	newA, err := m.VertexID(t, a)
	if err != nil {
		return err
	}
	newBNext, err := m.VertexID(t, bNext)
	if err != nil {
		return err
	}
	if err := m.vertices.Split(t, newA, newBNext, v1Old); err != nil {
		return err
	}
	if err := attrmanager.SplitAll(m.attrs, t, attrmanager.VertexKind, newA, newBNext, v1Old); err != nil {
		return err
	}

	newANext, err := m.VertexID(t, aNext)
	if err != nil {
		return err
	}
	newB, err := m.VertexID(t, b)
	if err != nil {
		return err
	}
	if err := m.vertices.Split(t, newANext, newB, v2Old); err != nil {
		return err
	}
	if err := attrmanager.SplitAll(m.attrs, t, attrmanager.VertexKind, newANext, newB, v2Old); err != nil {
		return err
	}

	newEA, err := m.EdgeID(t, a)
	if err != nil {
		return err
	}
	newEB, err := m.EdgeID(t, b)
	if err != nil {
		return err
	}
	return attrmanager.SplitAll(m.attrs, t, attrmanager.EdgeKind, newEA, newEB, eOld)
}

// SplitNEdge subdivides the edge carried by dart a into n evenly-spaced
// segments. It is the uniform special case of SplitEdgeAt: fracs =
// {1/n, 2/n, ..., (n-1)/n}.
func (m *CMap) SplitNEdge(t *txcell.Transaction, a dart.ID, n int) ([]dart.ID, error) {
	if n < 2 {
		return nil, ErrInvalidSplitCount
	}
	fracs := make([]float64, n-1)
	for i := range fracs {
		fracs[i] = float64(i+1) / float64(n)
	}
	return m.SplitEdgeAt(t, a, fracs)
}

// SplitEdgeAt subdivides the edge carried by dart a (and its β2 partner, if
// any) at the given fractional positions along the edge (0 < frac < 1,
// strictly ascending, measured from a's own tail vertex towards its head),
// allocating one new dart pair per fraction and placing each new interior
// vertex's position at the corresponding linear interpolation between a's
// two endpoints. The original endpoint vertex attributes are left untouched
// (spec.md §4.6.5 "preserving endpoint attributes unmerged"). Returns the
// newly allocated darts on a's side, in order from a towards its old
// successor — grisubal's intersection insertion pass (pkg/grisubal) needs
// this non-uniform form since its split points come from computed
// intersection parameters, not even spacing.
//
// honeycomb-core's own splitn_edge source isn't in the retrieved pack, only
// its call site in grisubal's kernel.rs; the two-sided splice below follows
// directly from the β2 vertex invariant TwoSew already establishes (vertex(a)
// == vertex(β1(b2))): both sides of the edge get their own chain of new darts
// spliced in, one-to-one, and the new dart at position k on a's side is
// β2-linked to the new dart at position n-1-k on the β2 side (n = len(fracs)+1
// segments total), since the two sides traverse the subdivided edge in
// opposite directions.
func (m *CMap) SplitEdgeAt(t *txcell.Transaction, a dart.ID, fracs []float64) ([]dart.ID, error) {
	if len(fracs) < 1 {
		return nil, ErrInvalidSplitCount
	}
	n := len(fracs) + 1

	b2, err := beta.Read(m.betas, t, beta.Beta2, a)
	if err != nil {
		return nil, err
	}
	next, err := beta.Read(m.betas, t, beta.Beta1, a)
	if err != nil {
		return nil, err
	}
	nextB := dart.Null
	if b2 != dart.Null {
		nextB, err = beta.Read(m.betas, t, beta.Beta1, b2)
		if err != nil {
			return nil, err
		}
	}

	tailVid, err := m.VertexID(t, a)
	if err != nil {
		return nil, err
	}
	pStart, err := m.vertices.Get(t, tailVid)
	if err != nil {
		return nil, err
	}
	var pEnd *Point
	if next != dart.Null {
		headVid, err := m.VertexID(t, next)
		if err != nil {
			return nil, err
		}
		pEnd, err = m.vertices.Get(t, headVid)
		if err != nil {
			return nil, err
		}
	}

	newCount := n - 1
	newDarts := m.darts.AllocateN(newCount)
	for _, d := range newDarts {
		m.betas.EnsureCapacity(d)
	}
	var mirror []dart.ID
	if b2 != dart.Null {
		mirror = m.darts.AllocateN(newCount)
		for _, d := range mirror {
			m.betas.EnsureCapacity(d)
		}
	}

	if next != dart.Null {
		if err := m.betas.OneUnlinkCore(t, a); err != nil {
			return nil, err
		}
	}
	if b2 != dart.Null {
		if err := m.betas.TwoUnlinkCore(t, a); err != nil {
			return nil, err
		}
		if nextB != dart.Null {
			if err := m.betas.OneUnlinkCore(t, b2); err != nil {
				return nil, err
			}
		}
	}

	// splice a's own chain: a -> newDarts... -> next
	prev := a
	for _, d := range newDarts {
		if err := m.betas.OneLinkCore(t, prev, d); err != nil {
			return nil, err
		}
		prev = d
	}
	if next != dart.Null {
		if err := m.betas.OneLinkCore(t, prev, next); err != nil {
			return nil, err
		}
	}

	if b2 != dart.Null {
		// splice b2's own chain: b2 -> mirror... -> nextB
		prevB := b2
		for _, d := range mirror {
			if err := m.betas.OneLinkCore(t, prevB, d); err != nil {
				return nil, err
			}
			prevB = d
		}
		if nextB != dart.Null {
			if err := m.betas.OneLinkCore(t, prevB, nextB); err != nil {
				return nil, err
			}
		}

		// A[k] is the a-side dart covering segment k (0 == a itself);
		// B[k] is the b2-side dart covering segment k (0 == b2 itself).
		// The two sides traverse in opposite directions, so A[k] pairs
		// with B[n-1-k].
		aSide := append([]dart.ID{a}, newDarts...)
		bSide := append([]dart.ID{b2}, mirror...)
		for k := 0; k < n; k++ {
			if err := m.betas.TwoLinkCore(t, aSide[k], bSide[n-1-k]); err != nil {
				return nil, err
			}
		}
	}

	if pStart != nil && pEnd != nil {
		for i, d := range newDarts {
			frac := fracs[i]
			p := Point{
				pStart.X + (pEnd.X-pStart.X)*frac,
				pStart.Y + (pEnd.Y-pStart.Y)*frac,
			}
			// The canonical vertex id for this interior point may be the
			// mirror dart (if its id is lower than d's) once both sides
			// are 2-linked into the same vertex orbit; VertexID resolves
			// to whichever is canonical regardless of which side wrote it.
			vid, err := m.VertexID(t, d)
			if err != nil {
				return nil, err
			}
			if err := m.vertices.Set(t, vid, p); err != nil {
				return nil, err
			}
		}
	}

	return newDarts, nil
}
