package feed

import (
	"net/http"
	"time"

	"github.com/okian/sked/pkg/logger"
)

// settings holds construction-time knobs shared by all source kinds.
type settings struct {
	client      *http.Client
	timeout     time.Duration
	horizonDays int
	log         logger.Logger
}

// Option applies a configuration option to a feed source.
type Option func(*settings)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHorizonDays bounds how far ahead recurring calendar entries are
// expanded. Only meaningful for ICS sources.
func WithHorizonDays(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.horizonDays = days
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
