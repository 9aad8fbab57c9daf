package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if SKED_CONFIG is set
//  3. env (prefix SKED_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SKED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: SKED_ADDR, SKED_LOOKAHEAD_DAYS, ...
	// Map env keys like SKED_LOOKAHEAD_DAYS -> lookahead_days (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SKED_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sked_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	if c.LookaheadDays <= 1 {
		return fmt.Errorf("%w: lookahead_days must be greater than 1", ErrInvalidConfig)
	}
	if c.WeeksAhead <= 0 {
		return fmt.Errorf("%w: weeks_ahead must be positive", ErrInvalidConfig)
	}
	if _, err := c.WeekStartDay(); err != nil {
		return err
	}
	switch c.StoreBackend {
	case StoreBackendFile, StoreBackendSQLite:
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	seen := make(map[string]struct{}, len(c.Feeds))
	for _, f := range c.Feeds {
		if f.ID == "" || f.URL == "" {
			return fmt.Errorf("%w: feed id and url must not be empty", ErrInvalidConfig)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate feed id %q", ErrInvalidConfig, f.ID)
		}
		seen[f.ID] = struct{}{}
		switch f.Format {
		case FeedFormatJSON, FeedFormatICS:
		default:
			return fmt.Errorf("%w: feed %q has unknown format %q", ErrInvalidConfig, f.ID, f.Format)
		}
	}
	return nil
}

// Location resolves the configured timezone. Call after validation.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekStartDay maps the configured week_start name to a weekday.
func (c *Config) WeekStartDay() (time.Weekday, error) {
	switch strings.ToLower(c.WeekStart) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("%w: unknown week_start %q", ErrInvalidConfig, c.WeekStart)
	}
}

// SyncTimeout returns the per-pass sync deadline.
func (c *Config) SyncTimeout() time.Duration {
	if c.SyncTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SyncTimeoutSec) * time.Second
}
