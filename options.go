package imgtex

import (
	"fmt"

	"github.com/gogpu/imgtex/internal/parallel"
	"github.com/gogpu/imgtex/internal/scale"
)

// Interpolation selects the resampling kernel used to scale images.
type Interpolation = scale.Interpolation

// Interpolation modes.
const (
	// InterpNearest selects the closest pixel (no interpolation).
	InterpNearest = scale.Nearest

	// InterpBilinear interpolates between 4 neighboring pixels.
	InterpBilinear = scale.Bilinear

	// InterpBicubic uses a Catmull-Rom kernel. This is the default.
	InterpBicubic = scale.Bicubic

	// InterpLanczos uses a Lanczos3 kernel.
	InterpLanczos = scale.Lanczos
)

// ParseInterpolation returns the interpolation mode with the given name
// ("nearest", "bilinear", "bicubic", "lanczos").
func ParseInterpolation(name string) (Interpolation, error) {
	m, ok := scale.ParseInterpolation(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown interpolation %q", ErrInvalidParameters, name)
	}
	return m, nil
}

// WorkerPool runs render passes. Renderers share the process-wide pool
// unless WithWorkerPool supplies another one.
type WorkerPool = parallel.WorkerPool

// NewWorkerPool creates a pool with the given number of workers
// (GOMAXPROCS when workers <= 0). Close it only after every Renderer
// using it has been disposed.
func NewWorkerPool(workers int) *WorkerPool {
	return parallel.NewWorkerPool(workers)
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := imgtex.New(onReady, 256, 256,
//	    imgtex.WithPixelFormat(imgtex.FormatRGBA8),
//	    imgtex.WithInterpolation(imgtex.InterpLanczos),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	format  PixelFormat
	interp  Interpolation
	workers *WorkerPool
	cache   *FrameCache
	strict  bool
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		format: FormatBGRAPremul,
		interp: InterpBicubic,
	}
}

func (o *options) validate() error {
	if !o.format.IsValid() {
		return fmt.Errorf("%w: pixel format %d", ErrInvalidParameters, o.format)
	}
	if !o.interp.IsValid() {
		return fmt.Errorf("%w: interpolation %d", ErrInvalidParameters, o.interp)
	}
	return nil
}

// WithPixelFormat sets the memory layout of produced frames.
// The default is FormatBGRAPremul.
func WithPixelFormat(f PixelFormat) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithInterpolation sets the resampling kernel. The default is InterpBicubic.
func WithInterpolation(m Interpolation) Option {
	return func(o *options) {
		o.interp = m
	}
}

// WithWorkerPool runs render passes on p instead of the process-wide pool.
func WithWorkerPool(p *WorkerPool) Option {
	return func(o *options) {
		o.workers = p
	}
}

// WithFrameCache stores frames of UseCache requests in c instead of the
// process-wide cache.
func WithFrameCache(c *FrameCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithStrictSourceSize makes a render fail with ErrInvalidParameters when
// the decoded image size differs from the declared source size. By default
// the declared size only drives the layout and the decoded image is mapped
// onto it.
func WithStrictSourceSize(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}
