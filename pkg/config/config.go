// Package config handles cmap2 runtime configuration via environment
// variables, plus YAML grisubal job descriptors (see job.go).
//
// cmap2 is a library plus CLI, not a server, so most of the teacher's
// Neo4j-compatible env surface (auth, bolt/http listeners, compliance
// controls) has no analogue here. What's kept is the ambient shape:
// LoadFromEnv/Validate/String and the getEnv* helpers, now scoped to the
// runtime knobs cmap2 actually has — logging, object pooling, and optional
// checkpoint persistence.
//
// Configuration is loaded from environment variables using LoadFromEnv() and
// can be validated with Validate() before use.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//
// Environment Variables:
//
//	CMAP2_LOG_LEVEL=INFO
//	CMAP2_LOG_FORMAT=text
//	CMAP2_LOG_OUTPUT=stderr
//	CMAP2_POOL_ENABLED=true
//	CMAP2_POOL_MAX_SIZE=4096
//	CMAP2_CHECKPOINT_ENABLED=false
//	CMAP2_CHECKPOINT_DIR=./checkpoints
//	CMAP2_CHECKPOINT_INTERVAL=0
package config

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

// Config holds cmap2's runtime settings, grounded on the teacher's
// pkg/config/config.go LoadFromEnv/Validate/String pattern, but trimmed to
// the concerns a combinatorial-map engine and its CLI actually have.
type Config struct {
	// Logging holds the CMAP2_LOG_* level/format/output settings. Nothing in
	// this module applies them to a logger; cmd/cmap2 does not load Config.
	Logging LoggingConfig

	// Pool mirrors pkg/pool.PoolConfig. Kept as a separate struct (rather
	// than importing pkg/pool) so pkg/config stays a leaf dependency per
	// SPEC_FULL.md's "ambient packages depend only downward" rule.
	Pool PoolConfig

	// Checkpoint configures pkg/mapstore's badger-backed snapshot store
	// for resuming a long grisubal batch job.
	Checkpoint CheckpointConfig

	// Runtime is Go-runtime tuning (GOMEMLIMIT/GOGC), relevant when cmap2
	// is run as a long-lived batch job over a large mesh.
	Runtime RuntimeConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level (DEBUG, INFO, WARN, ERROR)
	Level string
	// Format (json, text)
	Format string
	// Output path (stdout, stderr, or a file path)
	Output string
}

// PoolConfig mirrors pkg/pool.PoolConfig's shape.
type PoolConfig struct {
	Enabled bool
	MaxSize int
}

// CheckpointConfig configures pkg/mapstore's optional checkpoint store.
type CheckpointConfig struct {
	Enabled bool
	Dir     string
	// Interval is read from CMAP2_CHECKPOINT_INTERVAL and must be
	// non-negative. Nothing in this module writes checkpoints periodically:
	// checkpoints are only saved by explicit mapstore.Store.SaveSnapshot
	// calls.
	Interval int
}

// RuntimeConfig holds Go runtime tuning settings.
type RuntimeConfig struct {
	// MemoryLimit is the soft memory limit (GOMEMLIMIT) in bytes.
	// 0 = unlimited (Go manages automatically).
	MemoryLimit int64
	// MemoryLimitStr is the human-readable form (e.g. "2GB", "512MB").
	MemoryLimitStr string
	// GCPercent controls GC aggressiveness (GOGC). 100 = default.
	GCPercent int
}

// Apply applies the runtime memory settings to the Go runtime. Should be
// called early in main() before heavy allocations.
func (r *RuntimeConfig) Apply() {
	if r.MemoryLimit > 0 {
		debug.SetMemoryLimit(r.MemoryLimit)
	}
	if r.GCPercent != 100 {
		debug.SetGCPercent(r.GCPercent)
	}
}

// LoadFromEnv loads configuration from CMAP2_*-prefixed environment
// variables, falling back to sane development defaults for anything unset.
func LoadFromEnv() *Config {
	cfg := &Config{}

	cfg.Logging.Level = getEnv("CMAP2_LOG_LEVEL", "INFO")
	cfg.Logging.Format = getEnv("CMAP2_LOG_FORMAT", "text")
	cfg.Logging.Output = getEnv("CMAP2_LOG_OUTPUT", "stderr")

	cfg.Pool.Enabled = getEnvBool("CMAP2_POOL_ENABLED", true)
	cfg.Pool.MaxSize = getEnvInt("CMAP2_POOL_MAX_SIZE", 4096)

	cfg.Checkpoint.Enabled = getEnvBool("CMAP2_CHECKPOINT_ENABLED", false)
	cfg.Checkpoint.Dir = getEnv("CMAP2_CHECKPOINT_DIR", "./checkpoints")
	cfg.Checkpoint.Interval = getEnvInt("CMAP2_CHECKPOINT_INTERVAL", 0)

	cfg.Runtime.MemoryLimitStr = getEnv("CMAP2_MEMORY_LIMIT", "0")
	cfg.Runtime.MemoryLimit = parseMemorySize(cfg.Runtime.MemoryLimitStr)
	cfg.Runtime.GCPercent = getEnvInt("CMAP2_GC_PERCENT", 100)

	return cfg
}

// Validate checks the config for internally inconsistent values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Pool.MaxSize < 0 {
		return fmt.Errorf("invalid pool max size: %d", c.Pool.MaxSize)
	}
	if c.Checkpoint.Enabled && c.Checkpoint.Dir == "" {
		return fmt.Errorf("checkpointing enabled but no directory configured")
	}
	if c.Checkpoint.Interval < 0 {
		return fmt.Errorf("invalid checkpoint interval: %d", c.Checkpoint.Interval)
	}
	if c.Runtime.GCPercent < -1 {
		return fmt.Errorf("invalid GC percent: %d", c.Runtime.GCPercent)
	}
	return nil
}

// String returns a representation of the Config suitable for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Log: %s/%s/%s, Pool: enabled=%v max=%d, Checkpoint: enabled=%v dir=%s, GC: %d%%}",
		c.Logging.Level, c.Logging.Format, c.Logging.Output,
		c.Pool.Enabled, c.Pool.MaxSize,
		c.Checkpoint.Enabled, c.Checkpoint.Dir,
		c.Runtime.GCPercent,
	)
}

// Helper functions for environment variable parsing.

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

// parseMemorySize parses a human-readable memory size string.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited"
func parseMemorySize(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val * multiplier
}

// FormatMemorySize formats bytes as a human-readable string.
func FormatMemorySize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
