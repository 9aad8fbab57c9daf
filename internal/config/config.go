// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Feed formats accepted by the sync loop.
const (
	FeedFormatJSON = "json"
	FeedFormatICS  = "ics"
)

// Task store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
)

// Feed describes one remote source of official events.
type Feed struct {
	// ID namespaces event IDs fetched from this feed, e.g. "sis".
	ID string `koanf:"id"`

	// URL is the feed endpoint.
	URL string `koanf:"url"`

	// Format selects the decoder: "json" or "ics".
	Format string `koanf:"format"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Timezone is the IANA zone used to resolve "today", e.g. "Europe/Berlin".
	Timezone string `koanf:"timezone"`

	// LookaheadDays bounds the daily view's upcoming window.
	LookaheadDays int `koanf:"lookahead_days"`

	// WeekStart names the first day of the week: "sunday" or "monday".
	WeekStart string `koanf:"week_start"`

	// WeeksAhead sets how many weeks the weekly view scans.
	WeeksAhead int `koanf:"weeks_ahead"`

	// Feeds lists the official event sources, usually set via the YAML file.
	Feeds []Feed `koanf:"feeds"`

	// SyncCron optionally schedules periodic re-sync, e.g. "0 */6 * * *".
	// Empty disables scheduling; sync then runs at startup and on demand.
	SyncCron string `koanf:"sync_cron"`

	// SyncTimeoutSec bounds a whole sync pass.
	SyncTimeoutSec int `koanf:"sync_timeout_sec"`

	// DedupeSize sets the size of the feed deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreBackend selects task persistence: "file" or "sqlite".
	StoreBackend string `koanf:"store_backend"`

	// StorePath is the file or database path for the task store.
	StorePath string `koanf:"store_path"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		Addr:           ":9090",
		Timezone:       "UTC",
		LookaheadDays:  14,
		WeekStart:      "sunday",
		WeeksAhead:     4,
		SyncTimeoutSec: 30,
		DedupeSize:     10_000,
		StoreBackend:   StoreBackendFile,
		StorePath:      "tasks.json",
	}
	return c
}
