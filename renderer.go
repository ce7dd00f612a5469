package imgtex

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	intImage "github.com/gogpu/imgtex/internal/image"
	"github.com/gogpu/imgtex/internal/parallel"
)

// Renderer turns image requests into frames for one external texture.
//
// Configure and TriggerRender schedule render passes on a worker pool and
// return immediately. Passes load, decode, fit and scale the image into a
// buffer the size of the destination box, then publish it into a single
// slot: a newer pass always replaces an older frame, and a pass that
// finishes after a newer one was published is discarded. After each
// publication the ready callback is invoked so the host can PullFrame.
//
// Thread safety: All methods are safe for concurrent use. The ready
// callback runs on a worker goroutine and must not call Dispose
// synchronously.
type Renderer struct {
	onReady func()
	opts    options
	pool    *intImage.Pool

	ctx    context.Context
	cancel context.CancelFunc

	disposed  atomic.Bool
	req       atomic.Pointer[Request]
	textureID atomic.Int64
	passSeq   atomic.Uint64

	// publishMu serializes publication and callback delivery with Dispose.
	publishMu sync.Mutex

	mu        sync.Mutex
	state     State
	size      image.Point
	slot      *pixels
	slotPass  uint64 // pass sequence of the slot's frame or of the failure that cleared it
	frameSeq  uint64
	consumed  bool
	inflight  int // passes between the Rendering transition and their outcome
	renders   uint64
	failures  uint64
	cacheHits uint64
}

// New creates a Renderer for a destination box of width x height pixels.
// onReady is invoked after every published frame and may be nil.
func New(onReady func(), width, height int, opts ...Option) (*Renderer, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: destination %dx%d", ErrInvalidParameters, width, height)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.workers == nil {
		o.workers = parallel.Default()
	}
	if o.cache == nil {
		o.cache = DefaultFrameCache()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		onReady: onReady,
		opts:    o,
		pool:    intImage.DefaultPool(),
		ctx:     ctx,
		cancel:  cancel,
		state:   StateUninitialized,
		size:    image.Pt(width, height),
	}
	r.textureID.Store(int64(NoTexture))

	Logger().Info("imgtex: renderer created",
		"width", width,
		"height", height,
		"format", o.format,
		"interpolation", o.interp)
	return r, nil
}

// Configure makes req the current request and starts rendering it.
//
// The returned channel receives exactly one value and is then closed: nil
// once the frame for req was published, or the reason it was not. Invalid
// parameters are reported without changing the current request.
//
// Cancelling ctx abandons the pass. The result is then ctx.Err() itself
// (context.Canceled or context.DeadlineExceeded) rather than one of the
// package's errors, and like any failed configure pass it clears the
// current frame. Cancellation caused by Dispose is reported as ErrDisposed.
func (r *Renderer) Configure(ctx context.Context, req Request) <-chan error {
	result := make(chan error, 1)

	if r.disposed.Load() {
		deliver(result, ErrDisposed)
		return result
	}
	if err := req.Validate(); err != nil {
		deliver(result, err)
		return result
	}

	snapshot := req.clone()
	r.mu.Lock()
	if r.disposed.Load() {
		r.mu.Unlock()
		deliver(result, ErrDisposed)
		return result
	}
	r.req.Store(snapshot)
	r.size = snapshot.Size()
	r.state = StateConfigured
	r.mu.Unlock()

	Logger().Debug("imgtex: configured",
		"texture", r.TextureID(),
		"source", snapshot.source(),
		"size", snapshot.Size(),
		"fit", snapshot.Fit)

	r.schedule(ctx, snapshot, result)
	return result
}

// TriggerRender re-renders the current request.
//
// Only ErrDisposed and ErrNoRequest are reported. A triggered pass that
// fails is logged and counted in Stats; the current frame is kept and the
// ready callback is not invoked.
func (r *Renderer) TriggerRender() error {
	if r.disposed.Load() {
		return ErrDisposed
	}
	req := r.req.Load()
	if req == nil {
		return ErrNoRequest
	}
	r.schedule(context.Background(), req, nil)
	return nil
}

// PullFrame returns the latest published frame. It never blocks.
//
// Repeated pulls return the same frame (same Seq) until a new one is
// published. Returns ErrNotReady when no frame is available.
func (r *Renderer) PullFrame() (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil {
		return nil, ErrNotReady
	}
	r.consumed = true
	return newFrame(r.slot, r.frameSeq, TextureID(r.textureID.Load())), nil
}

// HasNewFrame reports whether a published frame has not been pulled yet.
func (r *Renderer) HasNewFrame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot != nil && !r.consumed
}

// Bind associates the renderer with a registry texture identifier.
func (r *Renderer) Bind(id TextureID) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTextureID, id)
	}
	if r.disposed.Load() {
		return ErrDisposed
	}
	r.textureID.Store(int64(id))
	return nil
}

// TextureID returns the bound identifier, or NoTexture.
func (r *Renderer) TextureID() TextureID {
	return TextureID(r.textureID.Load())
}

// Dispose releases the renderer. It is idempotent.
//
// In-flight passes are cancelled and their results discarded; pending
// Configure results receive ErrDisposed. No ready callback runs after
// Dispose returns.
func (r *Renderer) Dispose() {
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}
	r.cancel()

	r.publishMu.Lock()
	r.mu.Lock()
	old := r.slot
	r.slot = nil
	r.state = StateDisposed
	r.req.Store(nil)
	r.mu.Unlock()
	r.publishMu.Unlock()

	if old != nil {
		old.release()
	}
	Logger().Info("imgtex: renderer disposed", "texture", r.TextureID())
}

// State returns the lifecycle state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Size returns the destination box of the current request, or the size
// given to New before the first Configure.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size.X, r.size.Y
}

// Request returns a copy of the current request.
func (r *Renderer) Request() (Request, bool) {
	req := r.req.Load()
	if req == nil {
		return Request{}, false
	}
	return *req.clone(), true
}

// Stats contains renderer counters.
type Stats struct {
	// Renders is the number of published frames.
	Renders uint64
	// Failures is the number of passes that ended in an error.
	Failures uint64
	// CacheHits is the number of passes served from the frame cache
	// without rendering.
	CacheHits uint64
}

// Stats returns renderer counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Renders:   r.renders,
		Failures:  r.failures,
		CacheHits: r.cacheHits,
	}
}

// schedule runs a pass over req on the worker pool. A full or closed pool
// does not drop the pass: it runs on its own goroutine instead.
func (r *Renderer) schedule(ctx context.Context, req *Request, result chan<- error) {
	seq := r.passSeq.Add(1)
	run := func() {
		r.runPass(ctx, req, seq, result)
	}
	if !r.opts.workers.TrySubmit(run) {
		go run()
	}
}

// deliver sends the one value of a Configure result channel.
func deliver(result chan<- error, err error) {
	if result == nil {
		return
	}
	result <- err
	close(result)
}
