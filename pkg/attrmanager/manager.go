// Package attrmanager implements the type-keyed attribute manager (spec.md
// §4.4): a registry that dispatches merge/split to every attribute storage
// bound to a given i-cell kind.
package attrmanager

import (
	"errors"
	"reflect"
	"sync"

	"github.com/orneryd/cmap2/pkg/dart"
	"github.com/orneryd/cmap2/pkg/txcell"
)

// ErrDuplicateStorage is returned by AddStorage when an attribute type is
// registered twice for the same cell kind.
var ErrDuplicateStorage = errors.New("attrmanager: storage already registered for this type and kind")

// ID is a cell-id, the canonical representative of an i-cell.
type ID = dart.ID

// Kind identifies which family of i-cells an attribute storage is bound to.
// Custom orbits (spec.md §4.6.3 "Custom" policy) are distinguished by Tag.
type Kind struct {
	Class CellClass
	Tag   string // only meaningful when Class == Custom
}

// CellClass enumerates the built-in i-cell families plus the escape hatch
// for user-defined orbits.
type CellClass int

const (
	Vertex CellClass = iota
	Edge
	Face
	Custom
)

// VertexKind, EdgeKind, FaceKind are the conventional kinds for the three
// built-in i-cells.
var (
	VertexKind = Kind{Class: Vertex}
	EdgeKind   = Kind{Class: Edge}
	FaceKind   = Kind{Class: Face}
)

// dispatchable is the subset of attribute.Storage[A]/CompactStorage[A]'s API
// the manager needs in order to dispatch merge/split without knowing the
// attribute's concrete value type A.
type dispatchable interface {
	Merge(t *txcell.Transaction, out, l, r ID) error
	Split(t *txcell.Transaction, lOut, rOut, in ID) error
}

type storageKey struct {
	kind Kind
	typ  reflect.Type
}

// Manager is the type-keyed registry of attribute storages.
type Manager struct {
	mu    sync.RWMutex
	byKey map[storageKey]dispatchable
	byKnd map[Kind][]dispatchable
}

// NewManager creates an empty attribute manager.
func NewManager() *Manager {
	return &Manager{
		byKey: make(map[storageKey]dispatchable),
		byKnd: make(map[Kind][]dispatchable),
	}
}

// AddStorage registers a new attribute storage bound to kind, keyed by the
// type parameter A. Registering the same (kind, A) pair twice returns
// ErrDuplicateStorage and leaves the manager unchanged.
func AddStorage[A any](m *Manager, kind Kind, s dispatchable) error {
	key := storageKey{kind: kind, typ: reflect.TypeFor[A]()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byKey[key]; exists {
		return ErrDuplicateStorage
	}
	m.byKey[key] = s
	m.byKnd[kind] = append(m.byKnd[kind], s)
	return nil
}

// storagesFor returns every storage bound to kind. The slice is a snapshot
// taken under the read lock; iteration order is unspecified and, per
// spec.md §4.4, unobservable because merges/splits on distinct attribute
// types are independent.
func (m *Manager) storagesFor(kind Kind) []dispatchable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dispatchable(nil), m.byKnd[kind]...)
}

// MergeAll applies Merge(out, l, r) to every storage bound to kind.
func MergeAll(m *Manager, t *txcell.Transaction, kind Kind, out, l, r ID) error {
	for _, s := range m.storagesFor(kind) {
		if err := s.Merge(t, out, l, r); err != nil {
			return err
		}
	}
	return nil
}

// SplitAll applies Split(lOut, rOut, in) to every storage bound to kind.
func SplitAll(m *Manager, t *txcell.Transaction, kind Kind, lOut, rOut, in ID) error {
	for _, s := range m.storagesFor(kind) {
		if err := s.Split(t, lOut, rOut, in); err != nil {
			return err
		}
	}
	return nil
}
