package cmap

import (
	"sort"

	"github.com/orneryd/cmap2/pkg/beta"
	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// Snapshot is a point-in-time capture of a map's dart/β/vertex state,
// serializable by pkg/mapstore for checkpoint/resume of a long-running
// batch job (spec.md §9 "Checkpoint"). It does not capture user-registered
// attrmanager attributes: those are type-erased behind the manager's
// registry and have no single serializable representation, so a resumed
// map starts with vertex positions and topology intact but any custom
// per-dart/per-cell attributes the caller registered must be re-attached
// after Restore.
//
// Snapshot also does not capture the free-list: a restored registry treats
// every id below its high-water mark that isn't in Used as permanently
// retired rather than reusable (pkg/dart.Registry.RestoreUsed's doc
// comment). Checkpointing is a resume aid for batch jobs that build and
// grow a map, not a full undo log.
type Snapshot struct {
	Used     []dart.ID
	Beta1    map[dart.ID]dart.ID // d -> β1(d), only non-null entries
	Beta2    map[dart.ID]dart.ID // d -> β2(d), only non-null entries, one direction per pair
	Vertices map[dart.ID]Point
}

// Snapshot captures m's current dart/β/vertex state without joining a
// transaction: it's meant to be called between batch steps, not concurrently
// with in-flight mutation of m.
func (m *CMap) Snapshot() Snapshot {
	capacity := m.darts.Capacity()
	s := Snapshot{
		Beta1:    make(map[dart.ID]dart.ID),
		Beta2:    make(map[dart.ID]dart.ID),
		Vertices: make(map[dart.ID]Point),
	}
	for id := dart.ID(1); id < capacity; id++ {
		if !m.darts.IsUsed(id) {
			continue
		}
		s.Used = append(s.Used, id)

		if b1 := m.betas.AtomicRead(beta.Beta1, id); b1 != dart.Null {
			s.Beta1[id] = b1
		}
		if b2 := m.betas.AtomicRead(beta.Beta2, id); b2 != dart.Null && b2 > id {
			s.Beta2[id] = b2
		}
		if p := m.vertices.AtomicGet(id); p != nil {
			s.Vertices[id] = *p
		}
	}
	return s
}

// Restore rebuilds a CMap from a Snapshot: darts are re-marked used (see
// dart.Registry.RestoreUsed), then β1/β0 and β2 pairs are relinked via the
// same OneLinkCore/TwoLinkCore precondition checks a live map uses, and
// vertex positions are written back directly.
func Restore(s Snapshot) (*CMap, error) {
	m := New()

	used := make([]dart.ID, len(s.Used))
	copy(used, s.Used)
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })
	m.darts.RestoreUsed(used)
	for _, id := range used {
		m.betas.EnsureCapacity(id)
	}

	err := m.space.AtomicallyWithErr(func(t *txcell.Transaction) error {
		for a, b := range s.Beta1 {
			if err := m.betas.OneLinkCore(t, a, b); err != nil {
				return err
			}
		}
		for a, b := range s.Beta2 {
			if err := m.betas.TwoLinkCore(t, a, b); err != nil {
				return err
			}
		}
		for id, p := range s.Vertices {
			if err := m.vertices.Set(t, id, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
