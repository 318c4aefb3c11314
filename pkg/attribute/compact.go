package attribute

import (
	"fmt"
	"sync"

	"github.com/orneryd/cmap2/pkg/txcell"
)

// CompactStorage is the redirection-vector variant of Storage: payloads are
// packed into a dense slice instead of one slot per potential id. The
// redirection map and the free-slot stack are plain, mutex-guarded
// bookkeeping (not part of the optimistic-transaction machinery), mirroring
// how package dart keeps its reuse stack outside the STM. Values themselves
// are still held in transactional cells, so Merge/Split/Set/etc. retain the
// exact same atomicity guarantees as Storage.
//
// CompactStorage differs from Storage only in memory layout and in whether
// Remove frees a payload slot for reuse (it does; Storage never reclaims a
// sparse slot because there is nothing to reclaim).
type CompactStorage[A any] struct {
	space *txcell.Space
	fn    Functor[A]

	mu       sync.Mutex
	redirect map[ID]int
	slots    []*txcell.Cell[*A]
	free     []int
}

// NewCompactStorage creates an empty compact attribute storage.
func NewCompactStorage[A any](space *txcell.Space, fn Functor[A]) *CompactStorage[A] {
	return &CompactStorage[A]{space: space, fn: fn, redirect: make(map[ID]int)}
}

// slotFor returns the cell backing id, allocating a fresh or reused slot on
// first access.
func (s *CompactStorage[A]) slotFor(id ID) *txcell.Cell[*A] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.redirect[id]; ok {
		return s.slots[idx]
	}
	var idx int
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx] = txcell.New[*A](nil)
	} else {
		idx = len(s.slots)
		s.slots = append(s.slots, txcell.New[*A](nil))
	}
	s.redirect[id] = idx
	return s.slots[idx]
}

func (s *CompactStorage[A]) Set(t *txcell.Transaction, id ID, v A) error {
	vv := v
	return txcell.Write(t, s.slotFor(id), &vv)
}

func (s *CompactStorage[A]) Insert(t *txcell.Transaction, id ID, v A) error {
	cur, err := txcell.Read(t, s.slotFor(id))
	if err != nil {
		return err
	}
	if cur != nil {
		return ErrAlreadyWritten
	}
	vv := v
	return txcell.Write(t, s.slotFor(id), &vv)
}

func (s *CompactStorage[A]) Get(t *txcell.Transaction, id ID) (*A, error) {
	return txcell.Read(t, s.slotFor(id))
}

func (s *CompactStorage[A]) AtomicGet(id ID) *A {
	return s.slotFor(id).AtomicRead()
}

func (s *CompactStorage[A]) Replace(t *txcell.Transaction, id ID, v A) (*A, error) {
	vv := v
	return txcell.Replace(t, s.slotFor(id), &vv)
}

// Remove clears the slot at id, returns its prior value, and recycles the
// backing slot for reuse by a future id.
func (s *CompactStorage[A]) Remove(t *txcell.Transaction, id ID) (*A, error) {
	old, err := txcell.Replace(t, s.slotFor(id), (*A)(nil))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if idx, ok := s.redirect[id]; ok {
		delete(s.redirect, id)
		s.free = append(s.free, idx)
	}
	s.mu.Unlock()
	return old, nil
}

func (s *CompactStorage[A]) Merge(t *txcell.Transaction, out, l, r ID) error {
	lv, err := txcell.Read(t, s.slotFor(l))
	if err != nil {
		return err
	}
	rv, err := txcell.Read(t, s.slotFor(r))
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

	if err := txcell.Write(t, s.slotFor(l), (*A)(nil)); err != nil {
		return err
	}
	if err := txcell.Write(t, s.slotFor(r), (*A)(nil)); err != nil {
		return err
	}
	mm := merged
	return txcell.Write(t, s.slotFor(out), &mm)
}

func (s *CompactStorage[A]) Split(t *txcell.Transaction, lOut, rOut, in ID) error {
	v, err := txcell.Read(t, s.slotFor(in))
	if err != nil {
		return err
	}
	if v == nil {
		if err := txcell.Write(t, s.slotFor(in), (*A)(nil)); err != nil {
			return err
		}
		if err := txcell.Write(t, s.slotFor(lOut), (*A)(nil)); err != nil {
			return err
		}
		return txcell.Write(t, s.slotFor(rOut), (*A)(nil))
	}

	al, ar, err := s.fn.Split(*v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedAttributeOp, err)
	}

	if err := txcell.Write(t, s.slotFor(in), (*A)(nil)); err != nil {
		return err
	}
	all, arr := al, ar
	if err := txcell.Write(t, s.slotFor(lOut), &all); err != nil {
		return err
	}
	return txcell.Write(t, s.slotFor(rOut), &arr)
}
