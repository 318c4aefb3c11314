// Package pool provides scratch-buffer pooling for cmap2's hot allocation
// paths to reduce GC pressure on high-frequency orbit traversals.
//
// Pooled buffers:
//   - dart.ID slices (pkg/orbit's BFS queue, the only caller in this module)
//   - float64 slices (no caller in this module)
//   - Point slices (no caller in this module)
//
// Usage:
//
//	q := pool.GetDartSlice()
//	defer pool.PutDartSlice(q)
//	q = append(q, seed)
package pool

import (
	"sync"

	"github.com/orneryd/cmap2/pkg/dart"
)

// PoolConfig configures object pooling behavior.
type PoolConfig struct {
	// Enabled controls whether pooling is active.
	Enabled bool

	// MaxSize limits the capacity a returned buffer may have before it is
	// dropped instead of pooled (memory-leak prevention for one-off large
	// traversals, e.g. a grisubal pass over a huge grid).
	MaxSize int
}

var globalConfig = PoolConfig{
	Enabled: true,
	MaxSize: 4096,
}

// Configure sets global pool configuration. Should be called early during
// initialization; cmd/cmap2 does not call it, so the CLI runs with the
// defaults above.
func Configure(config PoolConfig) {
	globalConfig = config
	initPools()
}

func initPools() {
	dartSlicePool = sync.Pool{
		New: func() any { return make([]dart.ID, 0, 64) },
	}
	floatSlicePool = sync.Pool{
		New: func() any { return make([]float64, 0, 16) },
	}
	pointSlicePool = sync.Pool{
		New: func() any { return make([]Point, 0, 16) },
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool { return globalConfig.Enabled }

// Point mirrors grisubal.Point's shape so this package doesn't need to
// import pkg/grisubal (which would invert the dependency order spec.md §2
// establishes: ambient packages depend only downward).
type Point struct{ X, Y float64 }

var dartSlicePool = sync.Pool{
	New: func() any { return make([]dart.ID, 0, 64) },
}

// GetDartSlice returns a zero-length dart.ID slice from the pool.
func GetDartSlice() []dart.ID {
	if !globalConfig.Enabled {
		return make([]dart.ID, 0, 64)
	}
	return dartSlicePool.Get().([]dart.ID)[:0]
}

// PutDartSlice returns a dart.ID slice to the pool.
func PutDartSlice(s []dart.ID) {
	if !globalConfig.Enabled {
		return
	}
	if cap(s) > globalConfig.MaxSize {
		return
	}
	dartSlicePool.Put(s[:0])
}

var floatSlicePool = sync.Pool{
	New: func() any { return make([]float64, 0, 16) },
}

// GetFloatSlice returns a zero-length float64 slice from the pool.
func GetFloatSlice() []float64 {
	if !globalConfig.Enabled {
		return make([]float64, 0, 16)
	}
	return floatSlicePool.Get().([]float64)[:0]
}

// PutFloatSlice returns a float64 slice to the pool.
func PutFloatSlice(s []float64) {
	if !globalConfig.Enabled {
		return
	}
	if cap(s) > globalConfig.MaxSize {
		return
	}
	floatSlicePool.Put(s[:0])
}

var pointSlicePool = sync.Pool{
	New: func() any { return make([]Point, 0, 16) },
}

// GetPointSlice returns a zero-length Point slice from the pool.
func GetPointSlice() []Point {
	if !globalConfig.Enabled {
		return make([]Point, 0, 16)
	}
	return pointSlicePool.Get().([]Point)[:0]
}

// PutPointSlice returns a Point slice to the pool.
func PutPointSlice(s []Point) {
	if !globalConfig.Enabled {
		return
	}
	if cap(s) > globalConfig.MaxSize {
		return
	}
	pointSlicePool.Put(s[:0])
}
