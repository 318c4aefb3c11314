// Package mapstore provides an optional badger-backed persistent snapshot
// store for cmap2's checkpoint/resume feature (spec.md §9 "Checkpoint"):
// a long grisubal batch job can periodically save a cmap.Snapshot under a
// tag and, on restart after a crash, load the most recent one instead of
// rebuilding the grid and re-overlaying geometry from scratch.
//
// Grounded directly on the teacher's pkg/storage/badger.go BadgerEngine:
// same NewStore/NewStoreWithOptions/NewStoreInMemory constructor shape, same
// single-byte key-prefix scheme, same Close/Sync/Size lifecycle methods.
package mapstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/orneryd/cmap2/pkg/cmap"
)

// prefixCheckpoint namespaces checkpoint keys: checkpoint-prefix + tag ->
// JSON(snapshotRecord). Checkpoint metadata (saved-at time, dart count) is
// embedded in the record itself rather than given its own key.
const prefixCheckpoint = byte(0x01)

// Store persists cmap.Snapshot values under string tags in a BadgerDB.
type Store struct {
	db *badger.DB

	mu     sync.RWMutex
	closed bool
}

// Options configures the Store.
type Options struct {
	// DataDir is the directory for data files. Required unless InMemory.
	DataDir string
	// InMemory runs BadgerDB in memory-only mode, useful for tests.
	InMemory bool
	// SyncWrites forces fsync after each write.
	SyncWrites bool
}

// NewStore opens a persistent Store rooted at dataDir with default options.
func NewStore(dataDir string) (*Store, error) {
	return NewStoreWithOptions(Options{DataDir: dataDir})
}

// NewStoreInMemory opens an in-memory Store, for tests.
func NewStoreInMemory() (*Store, error) {
	return NewStoreWithOptions(Options{InMemory: true})
}

// NewStoreWithOptions opens a Store with the given Options.
func NewStoreWithOptions(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir).WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	// Same low-memory tuning as the teacher's BadgerEngine: checkpoint
	// snapshots are infrequent, large writes, not a hot transactional path.
	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("mapstore: opening badger: %w", err)
	}
	return &Store{db: db}, nil
}

func checkpointKey(tag string) []byte {
	return append([]byte{prefixCheckpoint}, []byte(tag)...)
}

// Close closes the underlying BadgerDB.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Sync forces all pending writes to disk.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Sync()
}

// Size returns the approximate on-disk size of the store in bytes (LSM tree
// size, value log size).
func (s *Store) Size() (lsm, vlog int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, 0
	}
	return s.db.Size()
}

// SaveSnapshot persists snap under tag, overwriting any snapshot previously
// saved under the same tag. tag is typically a job id or a monotonically
// increasing checkpoint index formatted by the caller.
func (s *Store) SaveSnapshot(tag string, snap cmap.Snapshot) error {
	if tag == "" {
		return ErrInvalidTag
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	data, err := encodeSnapshot(snap, time.Now())
	if err != nil {
		return fmt.Errorf("mapstore: encoding snapshot: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(checkpointKey(tag), data)
	})
}

// LoadSnapshot loads the most recently saved snapshot under tag. It returns
// ErrNotFound if no snapshot was ever saved under that tag.
func (s *Store) LoadSnapshot(tag string) (cmap.Snapshot, error) {
	if tag == "" {
		return cmap.Snapshot{}, ErrInvalidTag
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return cmap.Snapshot{}, ErrStoreClosed
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(checkpointKey(tag))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return cmap.Snapshot{}, err
	}

	snap, _, err := decodeSnapshot(data)
	if err != nil {
		return cmap.Snapshot{}, fmt.Errorf("mapstore: decoding snapshot: %w", err)
	}
	return snap, nil
}

// DeleteSnapshot removes any snapshot saved under tag. It is not an error to
// delete a tag that was never saved.
func (s *Store) DeleteSnapshot(tag string) error {
	if tag == "" {
		return ErrInvalidTag
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(checkpointKey(tag))
	})
}

// ListTags returns every checkpoint tag currently stored, in lexical order.
func (s *Store) ListTags() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var tags []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{prefixCheckpoint}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			tags = append(tags, string(key[1:]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
