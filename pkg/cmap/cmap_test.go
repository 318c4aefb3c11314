package cmap

import (
	"sync"
	"testing"

	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
	"github.com/stretchr/testify/require"
)

// buildTriangle links three free darts into a single face via β1 and sets
// their vertex positions, returning the darts in face order.
func buildTriangle(t *testing.T, m *CMap, p0, p1, p2 Point) [3]dart.ID {
	t.Helper()
	ds := m.InsertFreeDarts(3)
	var out [3]dart.ID
	copy(out[:], ds)

	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		if err := m.OneLink(tx, ds[0], ds[1]); err != nil {
			return err
		}
		if err := m.OneLink(tx, ds[1], ds[2]); err != nil {
			return err
		}
		if err := m.OneLink(tx, ds[2], ds[0]); err != nil {
			return err
		}
		if err := m.Vertices().Set(tx, ds[0], p0); err != nil {
			return err
		}
		if err := m.Vertices().Set(tx, ds[1], p1); err != nil {
			return err
		}
		return m.Vertices().Set(tx, ds[2], p2)
	})
	require.NoError(t, err)
	return out
}

func TestBuildTriangleFaceOrbitHasThreeDarts(t *testing.T) {
	m := New()
	tri := buildTriangle(t, m, Point{0, 0}, Point{1, 0}, Point{0, 1})

	var faceID dart.ID
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		var err error
		faceID, err = m.FaceID(tx, tri[0])
		return err
	})
	require.NoError(t, err)
	require.Equal(t, orbitSize(m, tri[0]), 3)
	require.Equal(t, tri[0], faceID) // min of {tri[0],tri[1],tri[2]} since they're allocated in order
}

// orbitSize walks the β1 chain starting at seed until it loops back,
// counting darts — used to check a freshly built face has the expected
// number of sides.
func orbitSize(m *CMap, seed dart.ID) int {
	count := 0
	_ = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		cur := seed
		for {
			count++
			next, err := beta.Read(m.Betas(), tx, beta.Beta1, cur)
			if err != nil {
				return err
			}
			if next == seed || next == dart.Null {
				return nil
			}
			cur = next
		}
	})
	return count
}

func TestTwoTrianglesSewnIntoQuad(t *testing.T) {
	m := New()
	left := buildTriangle(t, m, Point{0, 0}, Point{1, 0}, Point{1, 1})
	right := buildTriangle(t, m, Point{1, 1}, Point{0, 1}, Point{0, 0})

	// The shared diagonal is (0,0)-(1,1): left[2] runs (1,1)->(0,0) and
	// right[2] runs (0,0)->(1,1), an antiparallel pair, so they 2-sew.
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.TwoSew(tx, left[2], right[2])
	})
	require.NoError(t, err)

	var sharedVertex1, sharedVertex2 dart.ID
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		var err error
		sharedVertex1, err = m.VertexID(tx, left[2])
		if err != nil {
			return err
		}
		sharedVertex2, err = m.VertexID(tx, right[0])
		return err
	})
	require.NoError(t, err)
	require.Equal(t, sharedVertex1, sharedVertex2)
}

func TestTwoSewRejectsParallelOrientation(t *testing.T) {
	m := New()
	tri0 := buildTriangle(t, m, Point{0, 0}, Point{1, 0}, Point{0, 1})
	tri1 := buildTriangle(t, m, Point{5, 5}, Point{6, 5}, Point{5, 6})

	// tri0[0] runs (0,0)->(1,0), dir (1,0). tri1[0] runs (5,5)->(6,5), dir
	// (1,0): same direction, not antiparallel, must be rejected.
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.TwoSew(tx, tri0[0], tri1[0])
	})
	require.ErrorIs(t, err, ErrGeometricInconsistency)
}

func TestOneLinkTwiceRejectedAtCMapLevel(t *testing.T) {
	m := New()
	ds := m.InsertFreeDarts(3)
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.OneLink(tx, ds[0], ds[1])
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.OneLink(tx, ds[0], ds[2])
	})
	require.ErrorIs(t, err, beta.ErrNonFreeBase)
}

func TestOneSewWithoutBeta2PartnerIsAPureLink(t *testing.T) {
	m := New()
	ds := m.InsertFreeDarts(2)
	a, b := ds[0], ds[1]

	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		if err := m.Vertices().Set(tx, a, Point{0, 0}); err != nil {
			return err
		}
		return m.Vertices().Set(tx, b, Point{4, 0})
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.OneSew(tx, a, b)
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		next, err := beta.Read(m.Betas(), tx, beta.Beta1, a)
		if err != nil {
			return err
		}
		require.Equal(t, b, next)

		pa, err := m.Vertices().Get(tx, a)
		if err != nil {
			return err
		}
		require.Equal(t, Point{0, 0}, *pa)

		pb, err := m.Vertices().Get(tx, b)
		if err != nil {
			return err
		}
		require.Equal(t, Point{4, 0}, *pb)
		return nil
	})
	require.NoError(t, err)
}

func TestOneSewWithBeta2PartnerFusesVertexAtNewCanonicalID(t *testing.T) {
	m := New()
	ds := m.InsertFreeDarts(3)
	p, a, b := ds[0], ds[1], ds[2]

	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		if err := m.TwoLink(tx, a, p); err != nil {
			return err
		}
		if err := m.Vertices().Set(tx, p, Point{0, 2}); err != nil {
			return err
		}
		return m.Vertices().Set(tx, b, Point{4, 0})
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.OneSew(tx, a, b)
	})
	require.NoError(t, err)

	var fused Point
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		vid, err := m.VertexID(tx, b)
		if err != nil {
			return err
		}
		pt, err := m.Vertices().Get(tx, vid)
		if err != nil {
			return err
		}
		fused = *pt
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, Point{2, 1}, fused) // midpoint of (0,2) and (4,0)

	// OneUnsew round-trips the topology: a is unlinked from β1 and the
	// vertex splits back into the p-side and b-side pieces (both left at
	// the fused point, per vertexFunctor's SplitFn).
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.OneUnsew(tx, a)
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		next, err := beta.Read(m.Betas(), tx, beta.Beta1, a)
		if err != nil {
			return err
		}
		require.Equal(t, dart.Null, next)

		pp, err := m.Vertices().Get(tx, p)
		if err != nil {
			return err
		}
		require.Equal(t, Point{2, 1}, *pp)

		pb, err := m.Vertices().Get(tx, b)
		if err != nil {
			return err
		}
		require.Equal(t, Point{2, 1}, *pb)
		return nil
	})
	require.NoError(t, err)
}

func TestTwoSewSurfacesBetaPreconditionBeforeGeometricCheck(t *testing.T) {
	m := New()
	tri0 := buildTriangle(t, m, Point{0, 0}, Point{1, 0}, Point{0, 1})
	tri1 := buildTriangle(t, m, Point{5, 5}, Point{6, 5}, Point{5, 6})
	tri2 := buildTriangle(t, m, Point{1, 0}, Point{0, 0}, Point{1, 1})

	// tri2[0] runs (1,0)->(0,0), dir (-1,0): antiparallel to tri0[0]'s
	// (0,0)->(1,0), so this first sew succeeds and leaves tri0[0] with a β2
	// partner. tri1[0] is parallel to tri0[0] (both dir (1,0)), so a
	// geometry-only check on the second attempt would reject with
	// ErrGeometricInconsistency; the β-precondition must fire first instead.
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.TwoSew(tx, tri0[0], tri2[0])
	})
	require.NoError(t, err)

	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.TwoSew(tx, tri0[0], tri1[0])
	})
	require.ErrorIs(t, err, beta.ErrNonFreeBase)
	require.NotErrorIs(t, err, ErrGeometricInconsistency)
}

func TestConcurrentDisjointSewsBothSucceed(t *testing.T) {
	m := New()
	pair1 := m.InsertFreeDarts(2)
	pair2 := m.InsertFreeDarts(2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
			return m.OneSew(tx, pair1[0], pair1[1])
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
			return m.OneSew(tx, pair2[0], pair2[1])
		})
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
}

func TestSplitNEdgeOneSidedInsertsInteriorVertices(t *testing.T) {
	m := New()
	tri := buildTriangle(t, m, Point{0, 0}, Point{3, 0}, Point{0, 3})

	var newDarts []dart.ID
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		var err error
		newDarts, err = m.SplitNEdge(tx, tri[0], 3)
		return err
	})
	require.NoError(t, err)
	require.Len(t, newDarts, 2)
	require.Equal(t, 5, orbitSize(m, tri[0])) // 3 original sides + 2 new interior darts

	var p1, p2 *Point
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		v1, err := m.VertexID(tx, newDarts[0])
		if err != nil {
			return err
		}
		p1, err = m.Vertices().Get(tx, v1)
		if err != nil {
			return err
		}
		v2, err := m.VertexID(tx, newDarts[1])
		if err != nil {
			return err
		}
		p2, err = m.Vertices().Get(tx, v2)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, Point{1, 0}, *p1)
	require.Equal(t, Point{2, 0}, *p2)
}

func TestSplitNEdgeTwoSidedSplicesBothFaces(t *testing.T) {
	m := New()
	left := buildTriangle(t, m, Point{0, 0}, Point{1, 0}, Point{1, 1})
	right := buildTriangle(t, m, Point{1, 1}, Point{0, 1}, Point{0, 0})
	err := m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		return m.TwoSew(tx, left[2], right[2])
	})
	require.NoError(t, err)

	var newDarts []dart.ID
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		var err error
		newDarts, err = m.SplitNEdge(tx, left[2], 2)
		return err
	})
	require.NoError(t, err)
	require.Len(t, newDarts, 1)

	require.Equal(t, 4, orbitSize(m, left[0]))
	require.Equal(t, 4, orbitSize(m, right[0]))

	var mid Point
	var partner dart.ID
	var endA, endB *Point
	err = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
		var err error
		partner, err = beta.Read(m.Betas(), tx, beta.Beta2, newDarts[0])
		if err != nil {
			return err
		}
		vid, err := m.VertexID(tx, newDarts[0])
		if err != nil {
			return err
		}
		p, err := m.Vertices().Get(tx, vid)
		if err != nil {
			return err
		}
		mid = *p
		endA, err = m.Vertices().Get(tx, left[2])
		if err != nil {
			return err
		}
		// right[2] shares left[0]'s fused vertex (the diagonal's other end);
		// its value lives under that vertex's canonical id
		vB, err := m.VertexID(tx, right[2])
		if err != nil {
			return err
		}
		endB, err = m.Vertices().Get(tx, vB)
		return err
	})
	require.NoError(t, err)
	require.NotEqual(t, dart.Null, partner)
	require.Equal(t, Point{0.5, 0.5}, mid)
	// original endpoints (the diagonal's two corners) are untouched
	require.Equal(t, Point{1, 1}, *endA)
	require.Equal(t, Point{0, 0}, *endB)
}

func TestConcurrentOverlappingSewsSerialize(t *testing.T) {
	m := New()
	ds := m.InsertFreeDarts(2)

	var wg sync.WaitGroup
	results := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Space().AtomicallyWithErr(func(tx *txcell.Transaction) error {
				return m.OneSew(tx, ds[0], ds[1])
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, beta.ErrNonFreeBase)
		}
	}
	require.Equal(t, 1, successes)
}
