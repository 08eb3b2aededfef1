package glcontext

import (
	"log/slog"

	"github.com/richinsley/gosharedgl/gles"
	"github.com/richinsley/gosharedgl/graphics"
	"github.com/richinsley/gosharedgl/raster"
)

type options struct {
	gl     gles.Functions
	bridge raster.Bridge
	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithFunctions uses gl instead of loading the GL entry points once the
// native context is current.
func WithFunctions(gl gles.Functions) Option {
	return func(o *options) { o.gl = gl }
}

// WithBridge replaces the default rasterizer bridge.
func WithBridge(b raster.Bridge) Option {
	return func(o *options) { o.bridge = b }
}

// WithLogger logs the context's lifecycle to l instead of the module
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.bridge == nil {
		o.bridge = raster.NewBridge()
	}
	if o.logger == nil {
		o.logger = graphics.Logger()
	}
	return o
}
