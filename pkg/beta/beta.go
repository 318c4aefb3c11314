// Package beta implements the contiguous transactional storage of the three
// permutations β0, β1, β2 over all darts (spec.md §4.2).
package beta

import (
	"sync"

	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// Kind selects one of the three β permutations.
type Kind int

const (
	Beta0 Kind = iota
	Beta1
	Beta2
	numKinds
)

// Storage is a rectangular table of transactional cells indexed by
// (kind, dart). Row growth (new darts coming into existence) is a plain,
// mutex-guarded operation outside the transactional machinery, matching the
// spec's treatment of dart-id publication as the one non-transactional
// shared resource; reads and writes of existing slots go through a
// txcell.Transaction exactly as spec.md §4.2 describes.
type Storage struct {
	space *txcell.Space

	mu   sync.RWMutex
	rows [numKinds][]*txcell.Cell[dart.ID]
}

// NewStorage creates an empty β-storage bound to the given commit domain.
func NewStorage(space *txcell.Space) *Storage {
	return &Storage{space: space}
}

// EnsureCapacity grows every β row so that dart id d is addressable. It is
// called by the map's dart-allocation paths (cmap's InsertFreeDart/
// InsertFreeDarts, SplitEdgeAt, Restore) right after the dart registry hands
// out an id, before that id is ever used in a link.
func (s *Storage) EnsureCapacity(d dart.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.growLocked(d)
}

func (s *Storage) growLocked(d dart.ID) {
	need := int(d) + 1
	for k := Kind(0); k < numKinds; k++ {
		if len(s.rows[k]) >= need {
			continue
		}
		grown := make([]*txcell.Cell[dart.ID], need)
		copy(grown, s.rows[k])
		for i := len(s.rows[k]); i < need; i++ {
			grown[i] = txcell.New(dart.Null)
		}
		s.rows[k] = grown
	}
}

func (s *Storage) cell(kind Kind, d dart.ID) *txcell.Cell[dart.ID] {
	s.mu.RLock()
	if int(d) < len(s.rows[kind]) {
		c := s.rows[kind][d]
		s.mu.RUnlock()
		return c
	}
	s.mu.RUnlock()

	s.mu.Lock()
	s.growLocked(d)
	c := s.rows[kind][d]
	s.mu.Unlock()
	return c
}

// Read reads β_kind(d) inside a transaction.
func Read(s *Storage, t *txcell.Transaction, kind Kind, d dart.ID) (dart.ID, error) {
	if d == dart.Null {
		return dart.Null, nil
	}
	return txcell.Read(t, s.cell(kind, d))
}

// AtomicRead samples β_kind(d) without joining a transaction, for read-only
// orbit traversal.
func (s *Storage) AtomicRead(kind Kind, d dart.ID) dart.ID {
	if d == dart.Null {
		return dart.Null
	}
	return s.cell(kind, d).AtomicRead()
}

func write(s *Storage, t *txcell.Transaction, kind Kind, d, image dart.ID) error {
	return txcell.Write(t, s.cell(kind, d), image)
}

// OneLinkCore writes β1(a)=b and β0(b)=a, failing NonFreeBase if β1(a) is
// already non-null and NonFreeImage if β0(b) is already non-null.
func (s *Storage) OneLinkCore(t *txcell.Transaction, a, b dart.ID) error {
	cur, err := Read(s, t, Beta1, a)
	if err != nil {
		return err
	}
	if cur != dart.Null {
		return ErrNonFreeBase
	}
	curImg, err := Read(s, t, Beta0, b)
	if err != nil {
		return err
	}
	if curImg != dart.Null {
		return ErrNonFreeImage
	}
	if err := write(s, t, Beta1, a, b); err != nil {
		return err
	}
	return write(s, t, Beta0, b, a)
}

// OneUnlinkCore reads b=β1(a), failing AlreadyFree if null, else writes
// β1(a)=0 and β0(b)=0.
func (s *Storage) OneUnlinkCore(t *txcell.Transaction, a dart.ID) error {
	b, err := Read(s, t, Beta1, a)
	if err != nil {
		return err
	}
	if b == dart.Null {
		return ErrAlreadyFree
	}
	if err := write(s, t, Beta1, a, dart.Null); err != nil {
		return err
	}
	return write(s, t, Beta0, b, dart.Null)
}

// TwoLinkCore writes β2(a)=b and β2(b)=a, failing NonFreeBase / NonFreeImage
// analogously to OneLinkCore.
func (s *Storage) TwoLinkCore(t *txcell.Transaction, a, b dart.ID) error {
	cur, err := Read(s, t, Beta2, a)
	if err != nil {
		return err
	}
	if cur != dart.Null {
		return ErrNonFreeBase
	}
	curImg, err := Read(s, t, Beta2, b)
	if err != nil {
		return err
	}
	if curImg != dart.Null {
		return ErrNonFreeImage
	}
	if err := write(s, t, Beta2, a, b); err != nil {
		return err
	}
	return write(s, t, Beta2, b, a)
}

// TwoUnlinkCore is symmetric to OneUnlinkCore at the β2 level: it unlinks
// both a and its partner b=β2(a).
func (s *Storage) TwoUnlinkCore(t *txcell.Transaction, a dart.ID) error {
	b, err := Read(s, t, Beta2, a)
	if err != nil {
		return err
	}
	if b == dart.Null {
		return ErrAlreadyFree
	}
	if err := write(s, t, Beta2, a, dart.Null); err != nil {
		return err
	}
	return write(s, t, Beta2, b, dart.Null)
}
