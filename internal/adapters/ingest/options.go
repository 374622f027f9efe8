package ingest

import (
	"github.com/okian/dfspersona/pkg/logger"
)

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithMaxBytes caps the size of a CSV body.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithLogger sets the logger used for skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// WithDateLayouts replaces the ordered list of accepted date layouts.
func WithDateLayouts(layouts ...string) Option {
	return func(p *Parser) {
		if len(layouts) > 0 {
			p.layouts = layouts
		}
	}
}
