package config

import (
	"testing"
)

func TestFeatureFlags(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	t.Run("strict_geometry_enable_disable", func(t *testing.T) {
		SetStrictGeometryEnabled(false)
		if IsStrictGeometryEnabled() {
			t.Error("strict geometry should be disabled")
		}

		SetStrictGeometryEnabled(true)
		if !IsStrictGeometryEnabled() {
			t.Error("strict geometry should be enabled")
		}
	})

	t.Run("with_strict_geometry_enabled_restores_previous", func(t *testing.T) {
		SetStrictGeometryEnabled(false)
		cleanup := WithStrictGeometryEnabled()
		if !IsStrictGeometryEnabled() {
			t.Error("strict geometry should be enabled inside the helper")
		}
		cleanup()
		if IsStrictGeometryEnabled() {
			t.Error("strict geometry should be restored to disabled")
		}
	})

	t.Run("with_strict_geometry_disabled_restores_previous", func(t *testing.T) {
		SetStrictGeometryEnabled(true)
		cleanup := WithStrictGeometryDisabled()
		if IsStrictGeometryEnabled() {
			t.Error("strict geometry should be disabled inside the helper")
		}
		cleanup()
		if !IsStrictGeometryEnabled() {
			t.Error("strict geometry should be restored to enabled")
		}
	})

	t.Run("auto_checkpoint_enable_disable", func(t *testing.T) {
		if IsAutoCheckpointEnabled() {
			t.Error("auto-checkpoint should start disabled")
		}

		SetAutoCheckpointEnabled(true)
		if !IsAutoCheckpointEnabled() {
			t.Error("auto-checkpoint should be enabled")
		}

		SetAutoCheckpointEnabled(false)
		if IsAutoCheckpointEnabled() {
			t.Error("auto-checkpoint should be disabled")
		}
	})

	t.Run("pool_metrics_enable_disable", func(t *testing.T) {
		SetPoolMetricsEnabled(true)
		if !IsPoolMetricsEnabled() {
			t.Error("pool metrics should be enabled")
		}
		SetPoolMetricsEnabled(false)
		if IsPoolMetricsEnabled() {
			t.Error("pool metrics should be disabled")
		}
	})

	t.Run("named_feature_enable_disable", func(t *testing.T) {
		EnableFeature(FeatureAutoCheckpoint)
		if !IsFeatureEnabled(FeatureAutoCheckpoint) {
			t.Error("named feature should be enabled")
		}

		DisableFeature(FeatureAutoCheckpoint)
		if IsFeatureEnabled(FeatureAutoCheckpoint) {
			t.Error("named feature should be disabled")
		}
	})

	t.Run("unknown_feature_defaults_false", func(t *testing.T) {
		if IsFeatureEnabled("nonexistent") {
			t.Error("unknown feature should report false")
		}
	})
}

func TestGetFeatureStatus(t *testing.T) {
	ResetFeatureFlags()
	defer ResetFeatureFlags()

	SetAutoCheckpointEnabled(true)
	EnableFeature(FeaturePoolMetrics)

	status := GetFeatureStatus()
	if !status.StrictGeometryEnabled {
		t.Error("StrictGeometryEnabled should be true by default")
	}
	if !status.AutoCheckpointEnabled {
		t.Error("AutoCheckpointEnabled should reflect SetAutoCheckpointEnabled(true)")
	}
	if !status.Features[FeaturePoolMetrics] {
		t.Error("Features map should reflect EnableFeature(FeaturePoolMetrics)")
	}
}
