// Package timeouts centralizes the context deadlines used for database and
// storage I/O in handlers, so a slow tier can be tuned in one place.
//
// Choosing a tier:
//   - Ping: health checks
//   - Short: single-document reads, form renders
//   - Medium: list queries, simple creates and updates
//   - Long: multi-collection writes, transactions
//   - Batch: document uploads with text extraction
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults, used unless Configure or ConfigureFromEnv overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document reads and lookups.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for multi-collection writes and transactions.
func Long() time.Duration { return get(&long) }

// Batch returns the timeout for uploads and bulk work.
func Batch() time.Duration { return get(&batch) }

// Config holds override values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies non-zero overrides. Call during startup, before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, o := range []struct {
		v   time.Duration
		dst *time.Duration
	}{
		{cfg.Ping, &ping},
		{cfg.Short, &short},
		{cfg.Medium, &medium},
		{cfg.Long, &long},
		{cfg.Batch, &batch},
	} {
		if o.v > 0 {
			*o.dst = o.v
		}
	}
}

// ConfigureFromEnv reads overrides from TIMEOUT_PING, TIMEOUT_SHORT,
// TIMEOUT_MEDIUM, TIMEOUT_LONG, and TIMEOUT_BATCH (Go duration syntax,
// e.g. "5s", "2m"). Unset or invalid values keep the current setting.
// Returns how many values were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	applied := 0
	for _, o := range []struct {
		key string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &ping},
		{"TIMEOUT_SHORT", &short},
		{"TIMEOUT_MEDIUM", &medium},
		{"TIMEOUT_LONG", &long},
		{"TIMEOUT_BATCH", &batch},
	} {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*o.dst = d
			applied++
		}
	}
	return applied
}

// Reset restores defaults. Used by tests.
func Reset() {
	mu.Lock()
	ping, short, medium, long, batch = DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultBatch
	mu.Unlock()
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{ping, short, medium, long, batch}
}

// WithTimeout wraps context.WithTimeout and logs a warning when the returned
// cancel runs after the deadline was exceeded. Use for operations where a
// timeout is worth investigating.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
