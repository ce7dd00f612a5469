package imgtex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	intImage "github.com/gogpu/imgtex/internal/image"
	"github.com/gogpu/imgtex/internal/scale"
)

// runPass renders req and publishes the result unless a newer pass
// already did.
func (r *Renderer) runPass(ctx context.Context, req *Request, seq uint64, result chan<- error) {
	log := Logger().With("pass", uuid.NewString(), "seq", seq, "texture", r.TextureID())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.ctx, cancel)
	defer stop()

	if err := ctx.Err(); err != nil {
		r.finish(log, req, seq, nil, r.passError(err), result)
		return
	}

	// A pass already superseded by a published frame still runs so that
	// its caller gets a result, but it does not move the state back.
	r.mu.Lock()
	if r.state != StateDisposed && seq >= r.slotPass {
		r.state = StateRendering
	}
	r.inflight++
	r.mu.Unlock()

	log.Debug("imgtex: render pass started", "source", req.source(), "cache", req.UseCache)
	px, err := r.produce(ctx, req)
	if err != nil {
		err = r.passError(err)
	}

	r.mu.Lock()
	r.inflight--
	r.mu.Unlock()
	r.finish(log, req, seq, px, err, result)
}

// settle leaves the Rendering state once no pass is in flight.
// r.mu must be held.
func (r *Renderer) settle() {
	if r.state != StateRendering || r.inflight > 0 {
		return
	}
	if r.slot != nil {
		r.state = StateReady
	} else {
		r.state = StateConfigured
	}
}

// passError reports cancellation caused by Dispose as ErrDisposed.
func (r *Renderer) passError(err error) error {
	if r.disposed.Load() && errors.Is(err, context.Canceled) {
		return ErrDisposed
	}
	return err
}

// produce returns the pixels for req, from the frame cache when allowed.
func (r *Renderer) produce(ctx context.Context, req *Request) (*pixels, error) {
	if !req.UseCache {
		return r.render(ctx, req, r.pool)
	}

	key, err := newCacheKey(req, &r.opts)
	if err != nil {
		return nil, err
	}
	if px, ok := r.opts.cache.lookup(key); ok {
		r.mu.Lock()
		r.cacheHits++
		r.mu.Unlock()
		return px, nil
	}
	// The fill may be shared with other renderers; one caller's
	// cancellation must not fail the others.
	return r.opts.cache.fill(key, func() (*pixels, error) {
		return r.render(context.WithoutCancel(ctx), req, nil)
	})
}

// render loads, decodes and scales req into a new frame buffer.
// A nil pool allocates a buffer that is never recycled.
func (r *Renderer) render(ctx context.Context, req *Request, pool *intImage.Pool) (*pixels, error) {
	data, err := load(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := intImage.Decode(data)
	if err != nil {
		if errors.Is(err, intImage.ErrEmptyData) {
			return nil, fmt.Errorf("%w: %s is empty", ErrSourceNotFound, req.source())
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, req.source(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	declared := req.SourceSize()
	if bounds.Size() != declared {
		if r.opts.strict {
			return nil, fmt.Errorf("%w: decoded %v, declared %v",
				ErrInvalidParameters, bounds.Size(), declared)
		}
		Logger().Debug("imgtex: source size differs from declared",
			"source", req.source(), "decoded", bounds.Size(), "declared", declared)
	}

	srcRect, dstRect := req.Layout()
	sr := scale.MapRect(srcRect, declared, bounds.Size()).Add(bounds.Min)

	buf, err := newBuffer(pool, req.Width, req.Height, r.opts.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	scale.For(r.opts.interp).Scale(buf.RGBAView(), dstRect, img, sr)
	buf.ConvertFromPremulRGBA()

	Logger().Debug("imgtex: rendered",
		"source", req.source(), "codec", format,
		"decoded", bounds.Size(), "content", dstRect)
	return newPixels(buf, pool, dstRect), nil
}

func newBuffer(pool *intImage.Pool, width, height int, format PixelFormat) (*intImage.ImageBuf, error) {
	if pool == nil {
		return intImage.NewImageBuf(width, height, format)
	}
	return pool.Get(width, height, format)
}

// load returns the encoded bytes of the request's source.
func load(req *Request) ([]byte, error) {
	if req.Path == "" {
		if len(req.Bitmap) == 0 {
			return nil, fmt.Errorf("%w: empty bitmap", ErrSourceNotFound)
		}
		return req.Bitmap, nil
	}
	data, err := intImage.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	return data, nil
}

// finish publishes px or records err. Configure results are delivered
// before the ready callback runs.
func (r *Renderer) finish(log *slog.Logger, req *Request, seq uint64, px *pixels, err error, result chan<- error) {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	if r.disposed.Load() {
		if px != nil {
			px.release()
		}
		deliver(result, ErrDisposed)
		return
	}

	if err != nil {
		r.fail(log, req, seq, err, result)
		return
	}

	r.mu.Lock()
	if seq < r.slotPass {
		r.settle()
		r.mu.Unlock()
		px.release()
		log.Debug("imgtex: discarded stale frame")
		deliver(result, nil)
		return
	}
	old := r.slot
	r.slot = px
	r.slotPass = seq
	r.frameSeq++
	r.consumed = false
	r.state = StateReady
	r.renders++
	frameSeq := r.frameSeq
	r.mu.Unlock()

	if old != nil {
		old.release()
	}
	log.Debug("imgtex: frame published", "frame", frameSeq, "content", px.content)

	deliver(result, nil)
	if r.onReady != nil {
		r.onReady()
	}
}

// fail records a failed pass. A failed Configure pass clears the frame
// unless a newer pass already landed; a failed triggered pass keeps it.
func (r *Renderer) fail(log *slog.Logger, req *Request, seq uint64, err error, result chan<- error) {
	var old *pixels

	r.mu.Lock()
	r.failures++
	if result != nil && seq > r.slotPass {
		old = r.slot
		r.slot = nil
		r.slotPass = seq
		r.state = StateConfigured
	} else {
		r.settle()
	}
	r.mu.Unlock()

	if old != nil {
		old.release()
	}

	if result != nil {
		log.Debug("imgtex: configure failed", "source", req.source(), "err", err)
		deliver(result, err)
		return
	}
	log.Warn("imgtex: triggered render failed", "source", req.source(), "err", err)
}
