// Feature flags for cmap2 behavior that's useful to toggle without a
// rebuild, mirroring the teacher's config.FeatureFlagsConfig pattern: a set
// of package-level atomic.Bool switches, seeded from the environment once
// at init, with Enable/Disable/Is/With*Enabled helpers for tests.
package config

import (
	"os"
	"sync"
	"sync/atomic"
)

// Feature flag environment variables.
const (
	// EnvStrictGeometryEnabled seeds the strict-geometry flag
	// (IsStrictGeometryEnabled). Enabled by default. No package outside
	// pkg/config reads the flag: grisubal.BuildMesh rejects only segments
	// whose two endpoints are exactly equal (ErrDegenerateSegment), whatever
	// its value.
	EnvStrictGeometryEnabled = "CMAP2_STRICT_GEOMETRY_ENABLED"

	// EnvAutoCheckpointEnabled seeds the auto-checkpoint flag
	// (IsAutoCheckpointEnabled). Disabled by default. No package outside
	// pkg/config reads the flag: the grisubal subcommand saves a single
	// mapstore checkpoint after the run, and only when --checkpoint-dir is
	// given.
	EnvAutoCheckpointEnabled = "CMAP2_AUTO_CHECKPOINT_ENABLED"

	// EnvPoolMetricsEnabled seeds the pool-metrics flag
	// (IsPoolMetricsEnabled). Disabled by default. No package outside
	// pkg/config reads the flag, and pkg/pool keeps no get/put counters.
	EnvPoolMetricsEnabled = "CMAP2_POOL_METRICS_ENABLED"
)

// Feature flag keys, for use with EnableFeature/DisableFeature/IsFeatureEnabled.
const (
	FeatureStrictGeometry = "strict_geometry"
	FeatureAutoCheckpoint = "auto_checkpoint"
	FeaturePoolMetrics    = "pool_metrics"
)

var (
	strictGeometryEnabled atomic.Bool
	autoCheckpointEnabled atomic.Bool
	poolMetricsEnabled    atomic.Bool

	featureFlags   = make(map[string]bool)
	featureFlagsMu sync.RWMutex
	flagsInitOnce  sync.Once
)

func init() {
	flagsInitOnce.Do(func() {
		// Strict geometry validation: enabled by default.
		strictGeometryEnabled.Store(true)
		if env := os.Getenv(EnvStrictGeometryEnabled); env == "false" || env == "0" {
			strictGeometryEnabled.Store(false)
		}

		// Auto-checkpoint: disabled by default.
		if env := os.Getenv(EnvAutoCheckpointEnabled); env == "true" || env == "1" {
			autoCheckpointEnabled.Store(true)
		}

		// Pool metrics: disabled by default.
		if env := os.Getenv(EnvPoolMetricsEnabled); env == "true" || env == "1" {
			poolMetricsEnabled.Store(true)
		}
	})
}

// IsStrictGeometryEnabled reports the strict-geometry flag.
func IsStrictGeometryEnabled() bool { return strictGeometryEnabled.Load() }

// SetStrictGeometryEnabled sets the strict-geometry-validation flag.
func SetStrictGeometryEnabled(enabled bool) { strictGeometryEnabled.Store(enabled) }

// WithStrictGeometryEnabled temporarily enables strict geometry validation
// and returns a cleanup function restoring the previous state.
func WithStrictGeometryEnabled() func() {
	prev := strictGeometryEnabled.Load()
	strictGeometryEnabled.Store(true)
	return func() { strictGeometryEnabled.Store(prev) }
}

// WithStrictGeometryDisabled temporarily disables strict geometry
// validation and returns a cleanup function restoring the previous state.
func WithStrictGeometryDisabled() func() {
	prev := strictGeometryEnabled.Load()
	strictGeometryEnabled.Store(false)
	return func() { strictGeometryEnabled.Store(prev) }
}

// IsAutoCheckpointEnabled reports the auto-checkpoint flag.
func IsAutoCheckpointEnabled() bool { return autoCheckpointEnabled.Load() }

// SetAutoCheckpointEnabled sets the auto-checkpoint flag.
func SetAutoCheckpointEnabled(enabled bool) { autoCheckpointEnabled.Store(enabled) }

// WithAutoCheckpointEnabled temporarily enables auto-checkpointing and
// returns a cleanup function restoring the previous state.
func WithAutoCheckpointEnabled() func() {
	prev := autoCheckpointEnabled.Load()
	autoCheckpointEnabled.Store(true)
	return func() { autoCheckpointEnabled.Store(prev) }
}

// IsPoolMetricsEnabled reports the pool-metrics flag.
func IsPoolMetricsEnabled() bool { return poolMetricsEnabled.Load() }

// SetPoolMetricsEnabled sets the pool-metrics flag.
func SetPoolMetricsEnabled(enabled bool) { poolMetricsEnabled.Store(enabled) }

// EnableFeature enables an arbitrary named feature, for flags that don't
// warrant their own atomic.Bool and accessor pair.
func EnableFeature(feature string) {
	featureFlagsMu.Lock()
	defer featureFlagsMu.Unlock()
	featureFlags[feature] = true
}

// DisableFeature disables an arbitrary named feature.
func DisableFeature(feature string) {
	featureFlagsMu.Lock()
	defer featureFlagsMu.Unlock()
	featureFlags[feature] = false
}

// IsFeatureEnabled reports whether a named feature was enabled via
// EnableFeature. Unknown features report false.
func IsFeatureEnabled(feature string) bool {
	featureFlagsMu.RLock()
	defer featureFlagsMu.RUnlock()
	return featureFlags[feature]
}

// ResetFeatureFlags resets all flags to their init-time defaults. Intended
// for test teardown.
func ResetFeatureFlags() {
	strictGeometryEnabled.Store(true)
	autoCheckpointEnabled.Store(false)
	poolMetricsEnabled.Store(false)
	featureFlagsMu.Lock()
	defer featureFlagsMu.Unlock()
	featureFlags = make(map[string]bool)
}

// FeatureStatus reports the current state of every flag. No cmd/cmap2
// subcommand prints it.
type FeatureStatus struct {
	StrictGeometryEnabled bool
	AutoCheckpointEnabled bool
	PoolMetricsEnabled    bool
	Features              map[string]bool
}

// GetFeatureStatus returns the complete feature status.
func GetFeatureStatus() FeatureStatus {
	featureFlagsMu.RLock()
	defer featureFlagsMu.RUnlock()

	status := FeatureStatus{
		StrictGeometryEnabled: strictGeometryEnabled.Load(),
		AutoCheckpointEnabled: autoCheckpointEnabled.Load(),
		PoolMetricsEnabled:    poolMetricsEnabled.Load(),
		Features:              make(map[string]bool, len(featureFlags)),
	}
	for k, v := range featureFlags {
		status.Features[k] = v
	}
	return status
}
