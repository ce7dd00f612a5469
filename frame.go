package imgtex

import (
	"fmt"
	"image"
	"sync/atomic"

	intImage "github.com/gogpu/imgtex/internal/image"
)

// PixelFormat is the memory layout of frame pixels.
type PixelFormat = intImage.Format

// Frame pixel formats. All are 4 bytes per pixel, rows tightly packed.
const (
	// FormatRGBA8 is RGBA with straight alpha.
	FormatRGBA8 = intImage.FormatRGBA8

	// FormatBGRA8 is BGRA with straight alpha.
	FormatBGRA8 = intImage.FormatBGRA8

	// FormatRGBAPremul is RGBA with premultiplied alpha.
	FormatRGBAPremul = intImage.FormatRGBAPremul

	// FormatBGRAPremul is BGRA with premultiplied alpha. This is the default.
	FormatBGRAPremul = intImage.FormatBGRAPremul
)

// ParsePixelFormat returns the pixel format with the given name
// ("rgba8", "bgra8", "rgba8-premul", "bgra8-premul").
func ParsePixelFormat(name string) (PixelFormat, error) {
	f, ok := intImage.ParseFormat(name)
	if !ok {
		return 0, fmt.Errorf("%w: unknown pixel format %q", ErrInvalidParameters, name)
	}
	return f, nil
}

// TextureID is the opaque identifier a host registry assigns to a provider.
type TextureID int64

// NoTexture is the TextureID of a provider that has not been bound.
const NoTexture TextureID = -1

// pixels is a reference-counted pixel buffer shared by the frame slot,
// the frame cache and every Frame handed to a host.
type pixels struct {
	buf     *intImage.ImageBuf
	pool    *intImage.Pool
	content image.Rectangle
	refs    atomic.Int32
}

func newPixels(buf *intImage.ImageBuf, pool *intImage.Pool, content image.Rectangle) *pixels {
	px := &pixels{buf: buf, pool: pool, content: content}
	px.refs.Store(1)
	return px
}

func (px *pixels) retain() *pixels {
	px.refs.Add(1)
	return px
}

// tryRetain takes a reference unless the last one was already dropped.
func (px *pixels) tryRetain() bool {
	for {
		n := px.refs.Load()
		if n <= 0 {
			return false
		}
		if px.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference. The last release returns the buffer to the pool.
func (px *pixels) release() {
	switch n := px.refs.Add(-1); {
	case n == 0:
		if px.pool != nil {
			px.pool.Put(px.buf)
		}
	case n < 0:
		panic("imgtex: pixels released more times than retained")
	}
}

// Frame is a decoded, scaled pixel buffer ready for display.
//
// A Frame returned by PullFrame holds a reference on the underlying pixels.
// Call Release once the pixels are no longer needed; after that Pix returns
// nil. Release is idempotent.
type Frame struct {
	// Width and Height are the destination box size.
	Width, Height int

	// Stride is the number of bytes per row.
	Stride int

	// Format is the pixel layout.
	Format PixelFormat

	// Content is the rectangle the image was fitted into. Pixels outside
	// it are transparent.
	Content image.Rectangle

	// Seq increases with every frame a renderer publishes. A host sees the
	// same Seq again when no new frame was produced since its last pull.
	Seq uint64

	// TextureID is the identifier the renderer was bound to when the frame
	// was pulled, or NoTexture.
	TextureID TextureID

	px       *pixels
	released atomic.Bool
}

func newFrame(px *pixels, seq uint64, id TextureID) *Frame {
	return wrapFrame(px.retain(), seq, id)
}

// wrapFrame builds a Frame owning a reference the caller already took.
func wrapFrame(px *pixels, seq uint64, id TextureID) *Frame {
	return &Frame{
		Width:     px.buf.Width(),
		Height:    px.buf.Height(),
		Stride:    px.buf.Stride(),
		Format:    px.buf.Format(),
		Content:   px.content,
		Seq:       seq,
		TextureID: id,
		px:        px,
	}
}

// Pix returns the pixel bytes, Stride*Height long.
// The slice must not be modified. Returns nil after Release.
func (f *Frame) Pix() []byte {
	if f.released.Load() {
		return nil
	}
	return f.px.buf.Data()
}

// Bounds returns the frame rectangle, anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// ByteSize returns the size of the pixel data in bytes.
func (f *Frame) ByteSize() int {
	return f.Stride * f.Height
}

// Image returns a straight-alpha copy of the frame as an *image.NRGBA.
// Returns nil after Release.
func (f *Frame) Image() *image.NRGBA {
	if f.released.Load() {
		return nil
	}
	return f.px.buf.ToNRGBA()
}

// Release drops the frame's reference on its pixels.
func (f *Frame) Release() {
	if f.released.CompareAndSwap(false, true) {
		f.px.release()
	}
}

// Retain returns a second handle on the same pixels, released separately.
// Returns nil if f was already released. Retain may race with Release on
// another goroutine: it then either returns a live handle or nil.
func (f *Frame) Retain() *Frame {
	if f.released.Load() || !f.px.tryRetain() {
		return nil
	}
	return wrapFrame(f.px, f.Seq, f.TextureID)
}
