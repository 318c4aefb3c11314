// Package attribute implements the generic per-i-cell attribute storage
// layered on transactional cells (spec.md §4.3): a sparse mapping from
// cell-id to an optional value, plus the merge/split dispatch used when two
// i-cells fuse or one splits.
package attribute

import (
	"fmt"
	"sync"

	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// ID is a cell-id: the canonical (minimum-dart) representative of the i-cell
// an attribute value is bound to.
type ID = dart.ID

// Storage is the sparse attribute storage: one slot per potential id, values
// held as *A so a nil pointer represents "absent". This is the default
// layout described in spec.md §4.3; see CompactStorage for the
// redirection-vector variant used when payloads should be packed densely.
type Storage[A any] struct {
	space *txcell.Space
	fn    Functor[A]

	mu    sync.RWMutex
	cells map[ID]*txcell.Cell[*A]
}

// NewStorage creates an empty sparse attribute storage bound to fn's
// merge/split semantics and to the given commit domain (normally the same
// Space as the owning map's β-storage, so sews can bundle β writes and
// attribute writes into a single atomic transaction).
func NewStorage[A any](space *txcell.Space, fn Functor[A]) *Storage[A] {
	return &Storage[A]{space: space, fn: fn, cells: make(map[ID]*txcell.Cell[*A])}
}

func (s *Storage[A]) cell(id ID) *txcell.Cell[*A] {
	s.mu.RLock()
	c, ok := s.cells[id]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cells[id]; ok {
		return c
	}
	c = txcell.New[*A](nil)
	s.cells[id] = c
	return c
}

// Set overwrites the slot at id without any precondition.
func (s *Storage[A]) Set(t *txcell.Transaction, id ID, v A) error {
	vv := v
	return txcell.Write(t, s.cell(id), &vv)
}

// Insert writes v to id, failing ErrAlreadyWritten if the slot is not empty.
func (s *Storage[A]) Insert(t *txcell.Transaction, id ID, v A) error {
	cur, err := txcell.Read(t, s.cell(id))
	if err != nil {
		return err
	}
	if cur != nil {
		return ErrAlreadyWritten
	}
	vv := v
	return txcell.Write(t, s.cell(id), &vv)
}

// Get reads the slot at id, returning nil if absent.
func (s *Storage[A]) Get(t *txcell.Transaction, id ID) (*A, error) {
	return txcell.Read(t, s.cell(id))
}

// AtomicGet samples the slot at id without joining a transaction.
func (s *Storage[A]) AtomicGet(id ID) *A {
	return s.cell(id).AtomicRead()
}

// Replace writes v to id and returns the value that was there before.
func (s *Storage[A]) Replace(t *txcell.Transaction, id ID, v A) (*A, error) {
	vv := v
	return txcell.Replace(t, s.cell(id), &vv)
}

// Remove clears the slot at id and returns the value that was there.
func (s *Storage[A]) Remove(t *txcell.Transaction, id ID) (*A, error) {
	return txcell.Replace(t, s.cell(id), (*A)(nil))
}

// Merge reads slots l and r, computes the new value via the attribute's
// domain Merge/MergeFromOne/MergeFromNone, writes it to out, and writes
// None to l and r. A rejection from the domain functor is wrapped in
// ErrFailedAttributeOp and aborts the enclosing transaction.
func (s *Storage[A]) Merge(t *txcell.Transaction, out, l, r ID) error {
	lv, err := txcell.Read(t, s.cell(l))
	if err != nil {
		return err
	}
	rv, err := txcell.Read(t, s.cell(r))
	if err != nil {
		return err
	}

	var merged A
	switch {
	case lv != nil && rv != nil:
		merged, err = s.fn.Merge(*lv, *rv)
	case lv != nil && rv == nil:
		merged, err = s.fn.MergeFromOne(*lv)
	case lv == nil && rv != nil:
		merged, err = s.fn.MergeFromOne(*rv)
	default:
		merged, err = s.fn.MergeFromNone()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedAttributeOp, err)
	}

	// Clear the sources first so writing to `out` (which may alias l or r)
	// is the operation that sticks.
	if err := txcell.Write(t, s.cell(l), (*A)(nil)); err != nil {
		return err
	}
	if err := txcell.Write(t, s.cell(r), (*A)(nil)); err != nil {
		return err
	}
	mm := merged
	return txcell.Write(t, s.cell(out), &mm)
}

// Split reads slot in, computes the two halves via the attribute's domain
// Split, writes them to lOut and rOut, and clears in.
func (s *Storage[A]) Split(t *txcell.Transaction, lOut, rOut, in ID) error {
	v, err := txcell.Read(t, s.cell(in))
	if err != nil {
		return err
	}
	if v == nil {
		// Nothing to split: both outputs stay empty. This happens whenever
		// the i-cell being split never had a value written (common during
		// partial construction), and is not an error.
		if err := txcell.Write(t, s.cell(in), (*A)(nil)); err != nil {
			return err
		}
		if err := txcell.Write(t, s.cell(lOut), (*A)(nil)); err != nil {
			return err
		}
		return txcell.Write(t, s.cell(rOut), (*A)(nil))
	}

	al, ar, err := s.fn.Split(*v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedAttributeOp, err)
	}

	if err := txcell.Write(t, s.cell(in), (*A)(nil)); err != nil {
		return err
	}
	all, arr := al, ar
	if err := txcell.Write(t, s.cell(lOut), &all); err != nil {
		return err
	}
	return txcell.Write(t, s.cell(rOut), &arr)
}
