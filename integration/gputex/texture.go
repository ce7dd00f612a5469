// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputex

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/imgtex"
)

// Common errors returned by Texture operations.
var (
	// ErrClosed is returned when operations are attempted on a closed texture.
	ErrClosed = errors.New("gputex: texture is closed")

	// ErrNilProvider is returned when a nil provider is passed.
	ErrNilProvider = errors.New("gputex: nil provider")

	// ErrNoTextureCreator is returned when the draw context has no
	// gpucontext.TextureCreator.
	ErrNoTextureCreator = errors.New("gputex: draw context has no texture creator")

	// ErrNotDrawable is returned when the created texture does not
	// implement gpucontext.Texture.
	ErrNotDrawable = errors.New("gputex: texture is not a gpucontext.Texture")
)

// textureDestroyer matches the Destroy method of host textures.
type textureDestroyer interface {
	Destroy()
}

// premultipliedSetter is implemented by host textures that can blend
// premultiplied data.
type premultipliedSetter interface {
	SetPremultiplied(bool)
}

// createFunc creates a host texture from tightly packed RGBA bytes.
type createFunc func(width, height int, data []byte) (any, error)

// Texture mirrors the frames of a provider into one GPU texture.
type Texture struct {
	provider imgtex.TextureProvider
	texture  any
	width    int
	height   int
	seq      uint64
	uploads  int
	scratch  []byte
	closed   bool
}

// New creates a Texture fed by p.
func New(p imgtex.TextureProvider) (*Texture, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	return &Texture{provider: p}, nil
}

// Sync uploads the provider's latest frame if it was not uploaded yet and
// returns the host texture. It returns imgtex.ErrNotReady while the
// provider has never produced a frame.
func (t *Texture) Sync(creator gpucontext.TextureCreator) (any, error) {
	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	return t.sync(func(width, height int, data []byte) (any, error) {
		return creator.NewTextureFromRGBA(width, height, data)
	})
}

// Draw syncs the texture and draws it at (x, y). Nothing is drawn while
// the provider has no frame.
func (t *Texture) Draw(dc gpucontext.TextureDrawer, x, y float32) error {
	if t.closed {
		return ErrClosed
	}
	tex, err := t.Sync(dc.TextureCreator())
	if errors.Is(err, imgtex.ErrNotReady) {
		return nil
	}
	if err != nil {
		return err
	}
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrNotDrawable
	}
	return dc.DrawTexture(gpuTex, x, y)
}

func (t *Texture) sync(create createFunc) (any, error) {
	if t.closed {
		return nil, ErrClosed
	}

	frame, err := t.provider.PullFrame()
	if errors.Is(err, imgtex.ErrNotReady) && t.texture != nil {
		return t.texture, nil
	}
	if err != nil {
		return nil, err
	}
	defer frame.Release()

	if t.texture != nil && frame.Seq == t.seq &&
		frame.Width == t.width && frame.Height == t.height {
		return t.texture, nil
	}

	data := t.rgba(frame)

	if t.texture != nil && frame.Width == t.width && frame.Height == t.height {
		if updater, ok := t.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(data); err != nil {
				return nil, fmt.Errorf("gputex: texture update failed: %w", err)
			}
			t.seq = frame.Seq
			t.uploads++
			return t.texture, nil
		}
	}

	tex, err := create(frame.Width, frame.Height, data)
	if err != nil {
		return nil, fmt.Errorf("gputex: texture creation failed: %w", err)
	}
	if ps, ok := tex.(premultipliedSetter); ok {
		ps.SetPremultiplied(frame.Format.IsPremultiplied())
	}
	t.destroy()
	t.texture = tex
	t.width, t.height = frame.Width, frame.Height
	t.seq = frame.Seq
	t.uploads++

	imgtex.Logger().Debug("gputex: texture created",
		"texture", frame.TextureID,
		"width", frame.Width,
		"height", frame.Height,
		"native_format", TextureFormat(frame.Format))
	return tex, nil
}

// rgba returns the frame pixels in RGBA channel order, converting BGRA
// frames into a reused scratch buffer.
func (t *Texture) rgba(f *imgtex.Frame) []byte {
	pix := f.Pix()
	if !f.Format.IsBGR() {
		return pix
	}
	if cap(t.scratch) < len(pix) {
		t.scratch = make([]byte, len(pix))
	}
	out := t.scratch[:len(pix)]
	for i := 0; i+3 < len(pix); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = pix[i+2], pix[i+1], pix[i], pix[i+3]
	}
	return out
}

// Texture returns the current host texture without syncing, or nil.
func (t *Texture) Texture() any {
	return t.texture
}

// Seq returns the Seq of the last uploaded frame.
func (t *Texture) Seq() uint64 {
	return t.seq
}

// Uploads returns the number of uploads performed.
func (t *Texture) Uploads() int {
	return t.uploads
}

// Close destroys the host texture. It is idempotent and does not dispose
// the provider.
func (t *Texture) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.destroy()
	t.scratch = nil
	return nil
}

func (t *Texture) destroy() {
	if t.texture == nil {
		return
	}
	if d, ok := t.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	t.texture = nil
}

// TextureFormat returns the GPU texture format matching the channel order
// of a frame pixel format.
func TextureFormat(f imgtex.PixelFormat) gputypes.TextureFormat {
	if f.IsBGR() {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}
