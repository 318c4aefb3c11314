// Package txcell provides the transactional cell primitive used throughout
// cmap2 for optimistic, per-slot concurrency control.
//
// A Cell[T] holds an immutable snapshot of a value. Reads and writes inside a
// Transaction are buffered against that snapshot; a transaction only takes
// effect when it commits, and commit is rejected (causing the caller to retry)
// if any cell the transaction read has moved on to a newer snapshot in the
// meantime. Code that only needs a best-effort sample of the current value
// (read-only traversals) can bypass transactions entirely via AtomicRead.
package txcell

import "sync/atomic"

// snapshot is the immutable value installed into a Cell at a point in time.
// Two transactions that observe the same *snapshot pointer observed the cell
// at the same version; pointer identity is the version check.
type snapshot[T any] struct {
	gen   uint64
	value T
}

// Cell is a single transactional memory slot holding a value of type T.
type Cell[T any] struct {
	current atomic.Pointer[snapshot[T]]
}

// New creates a cell holding the given initial value at generation 0.
func New[T any](v T) *Cell[T] {
	c := &Cell[T]{}
	c.current.Store(&snapshot[T]{value: v})
	return c
}

// AtomicRead samples the cell's current value without joining a transaction.
// It never blocks and never conflicts; it is intended for read-only orbit
// traversals and diagnostics, never for code that must observe a consistent
// multi-cell view.
func (c *Cell[T]) AtomicRead() T {
	return c.current.Load().value
}

// snap returns the currently installed snapshot pointer, used by Transaction
// to record what a read observed.
func (c *Cell[T]) snap() *snapshot[T] {
	return c.current.Load()
}

// store installs a new snapshot built from the previous one's generation.
// Only called by a committing Transaction, which holds the owning Space's
// commit lock at the time of the call.
func (c *Cell[T]) store(v T) {
	prev := c.current.Load()
	next := &snapshot[T]{value: v}
	if prev != nil {
		next.gen = prev.gen + 1
	}
	c.current.Store(next)
}

// Generation returns the cell's current version counter, exposed for tests
// and metrics; it has no semantic meaning beyond "changed since last read".
func (c *Cell[T]) Generation() uint64 {
	return c.current.Load().gen
}
