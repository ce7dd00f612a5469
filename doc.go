// Package imgtex provides image-backed texture providers for host
// compositors.
//
// # Overview
//
// A Renderer decodes an image (a file path or an in-memory encoded bitmap),
// scales it into a destination box according to a FitMode and publishes the
// result as a Frame. The host pulls frames through the TextureProvider
// interface and is told about new frames through a ready callback:
//
//	r, err := imgtex.New(func() { host.FrameAvailable(id) }, 300, 200)
//	if err != nil {
//	    return err
//	}
//	defer r.Dispose()
//
//	_ = r.Bind(id)
//	err = <-r.Configure(ctx, imgtex.Request{
//	    Path:         "photo.jpg",
//	    Width:        300,
//	    Height:       200,
//	    SourceWidth:  4032,
//	    SourceHeight: 3024,
//	    Fit:          imgtex.FitCover,
//	})
//
//	// On the compositor thread:
//	frame, err := r.PullFrame()
//	if err == nil {
//	    upload(frame.Pix())
//	    frame.Release()
//	}
//
// # Lifecycle
//
// A Renderer moves through StateUninitialized, StateConfigured,
// StateRendering and StateReady, and ends in StateDisposed. Configure and
// TriggerRender never block on decoding; passes run on a worker pool.
// Configure reports the outcome of its pass on the returned channel.
// Failures of passes started by TriggerRender are logged and dropped.
// Every operation after Dispose fails with ErrDisposed, except PullFrame,
// which reports ErrNotReady.
//
// # Frames
//
// A frame always covers the whole destination box. Pixels outside
// Frame.Content, the rectangle the image was fitted into, are transparent.
// Frames are reference counted: PullFrame retains the frame for the caller,
// who must call Release once the pixels have been consumed.
//
// # Caching
//
// Requests with UseCache set reuse a frame previously rendered for an
// equivalent request (same source, sizes, fit, pixel format and
// interpolation) instead of decoding again.
package imgtex
