// Package spatialidx provides a uniform-grid spatial index over axis-aligned
// bounding boxes in the plane.
//
// grisubal's polyline-overlay kernel indexes the bounding box of every
// background-grid cell once, then asks, for each segment that crosses the grid
// diagonally, which cells lie in the segment's bounding sub-grid. GridIndex
// answers "which entries might overlap this box" in roughly constant time
// per query by bucketing entries into cells of a fixed size, so a caller
// only pays for entries that are actually nearby.
//
// Example:
//
//	idx := spatialidx.NewGrid(spatialidx.Config{CellSize: 1.0})
//	for i, seg := range segments {
//		idx.Insert(uint64(i), seg.MinX(), seg.MinY(), seg.MaxX(), seg.MaxY())
//	}
//
//	candidates := idx.Query(edge.MinX(), edge.MinY(), edge.MaxX(), edge.MaxY())
//	for _, id := range candidates {
//		// caller still does the exact segment-segment intersection test
//	}
//
// Thread Safety:
//
//	GridIndex is safe for concurrent Insert/Remove/Query calls.
package spatialidx

import (
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Config holds GridIndex configuration.
//
// CellSize should be on the order of the typical segment length or grid cell
// size in the data being indexed: too small and a single segment spans many
// buckets, too large and every bucket holds most of the data.
type Config struct {
	CellSize float64
}

// DefaultConfig returns a GridIndex configuration with a unit cell size.
func DefaultConfig() Config {
	return Config{CellSize: 1.0}
}

// Entry is one bounding box stored in the index, keyed by an opaque id the
// caller assigns (typically a slice index or dart.ID).
type Entry struct {
	ID                     uint64
	MinX, MinY, MaxX, MaxY float64
}

// GridIndex is a uniform-grid broad-phase spatial index over bounding boxes.
type GridIndex struct {
	cellSize float64

	mu      sync.RWMutex
	buckets map[uint64][]Entry
	entries map[uint64]Entry
}

// NewGrid creates an empty GridIndex with the given configuration.
func NewGrid(config Config) *GridIndex {
	cellSize := config.CellSize
	if cellSize <= 0 {
		cellSize = DefaultConfig().CellSize
	}
	return &GridIndex{
		cellSize: cellSize,
		buckets:  make(map[uint64][]Entry),
		entries:  make(map[uint64]Entry),
	}
}

func (g *GridIndex) cell(x, y float64) (int64, int64) {
	return int64(math.Floor(x / g.cellSize)), int64(math.Floor(y / g.cellSize))
}

func bucketKey(cx, cy int64) uint64 {
	var buf [16]byte
	putInt64(buf[0:8], cx)
	putInt64(buf[8:16], cy)
	return xxhash.Sum64(buf[:])
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

// Insert adds or replaces the entry for id, spanning every cell its bounding
// box overlaps.
func (g *GridIndex) Insert(id uint64, minX, minY, maxX, maxY float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.entries[id]; ok {
		g.removeLocked(old)
	}

	e := Entry{ID: id, MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	g.entries[id] = e
	g.forEachCellLocked(e, func(key uint64) {
		g.buckets[key] = append(g.buckets[key], e)
	})
}

// Remove deletes id from the index. Removing an id that was never inserted
// is a no-op.
func (g *GridIndex) Remove(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return
	}
	g.removeLocked(e)
	delete(g.entries, id)
}

func (g *GridIndex) removeLocked(e Entry) {
	g.forEachCellLocked(e, func(key uint64) {
		bucket := g.buckets[key]
		for i, cand := range bucket {
			if cand.ID == e.ID {
				bucket = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(bucket) == 0 {
			delete(g.buckets, key)
		} else {
			g.buckets[key] = bucket
		}
	})
}

func (g *GridIndex) forEachCellLocked(e Entry, fn func(key uint64)) {
	minCX, minCY := g.cell(e.MinX, e.MinY)
	maxCX, maxCY := g.cell(e.MaxX, e.MaxY)
	seen := make(map[uint64]bool)
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			key := bucketKey(cx, cy)
			if seen[key] {
				continue
			}
			seen[key] = true
			fn(key)
		}
	}
}

// Query returns the ids of every entry whose bounding box overlaps the
// query box (boxes that only touch count as overlapping). This is a
// broad-phase result: the caller must still perform an exact test on the
// shapes the boxes bound.
func (g *GridIndex) Query(minX, minY, maxX, maxY float64) []uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	q := Entry{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	seen := make(map[uint64]bool)
	var results []uint64
	g.forEachCellLocked(q, func(key uint64) {
		for _, e := range g.buckets[key] {
			if seen[e.ID] {
				continue
			}
			if !overlaps(e, minX, minY, maxX, maxY) {
				continue
			}
			seen[e.ID] = true
			results = append(results, e.ID)
		}
	})
	return results
}

func overlaps(e Entry, minX, minY, maxX, maxY float64) bool {
	return e.MinX <= maxX && e.MaxX >= minX && e.MinY <= maxY && e.MaxY >= minY
}

// Count returns the number of distinct ids currently stored.
func (g *GridIndex) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}
