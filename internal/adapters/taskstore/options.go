package taskstore

import (
	"io/fs"

	"github.com/okian/sked/pkg/logger"
)

// options holds construction-time knobs shared by store backends.
type options struct {
	fileMode fs.FileMode
	log      logger.Logger
}

// Option applies a configuration option to a store backend.
type Option func(*options)

// WithFileMode sets the permissions for newly written task files.
func WithFileMode(mode fs.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
