// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package registry

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/imgtex"
)

// mockProvider implements imgtex.TextureProvider for testing.
type mockProvider struct {
	mu      sync.Mutex
	id      imgtex.TextureID
	bindErr error
	pulls   int
}

func (m *mockProvider) PullFrame() (*imgtex.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pulls++
	return nil, imgtex.ErrNotReady
}

func (m *mockProvider) Bind(id imgtex.TextureID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindErr != nil {
		return m.bindErr
	}
	m.id = id
	return nil
}

func TestRegistry_Register(t *testing.T) {
	reg := New()
	defer reg.Close()

	a, b := &mockProvider{}, &mockProvider{}
	idA, err := reg.Register(a)
	if err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	idB, err := reg.Register(b)
	if err != nil {
		t.Fatalf("Register(b) error = %v", err)
	}

	if idA == idB {
		t.Errorf("identifiers not unique: %d", idA)
	}
	if a.id != idA || b.id != idB {
		t.Errorf("providers bound to %d,%d; want %d,%d", a.id, b.id, idA, idB)
	}
	if p, ok := reg.Lookup(idA); !ok || p != a {
		t.Errorf("Lookup(%d) = %v, %v", idA, p, ok)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}

	if _, err := reg.Register(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("Register(nil) error = %v, want ErrNilProvider", err)
	}
}

func TestRegistry_RegisterBindFailure(t *testing.T) {
	reg := New()
	defer reg.Close()

	bindErr := errors.New("bind refused")
	id, err := reg.Register(&mockProvider{bindErr: bindErr})
	if !errors.Is(err, bindErr) {
		t.Errorf("Register() error = %v, want %v", err, bindErr)
	}
	if id != imgtex.NoTexture {
		t.Errorf("Register() id = %d, want NoTexture", id)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after failed bind", reg.Len())
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := New()
	defer reg.Close()

	p := &mockProvider{}
	id, _ := reg.Register(p)

	if err := reg.Unregister(id); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if err := reg.Unregister(id); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("second Unregister() error = %v, want ErrUnknownTexture", err)
	}
	if _, ok := reg.Lookup(id); ok {
		t.Error("Lookup() found an unregistered texture")
	}
	if _, err := reg.Pull(id); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("Pull() error = %v, want ErrUnknownTexture", err)
	}
}

func TestRegistry_FrameAvailable(t *testing.T) {
	reg := New()
	defer reg.Close()

	id, _ := reg.Register(&mockProvider{})

	var got []imgtex.TextureID
	cancel := reg.Subscribe(func(id imgtex.TextureID) {
		got = append(got, id)
	})

	reg.FrameAvailable(id)
	reg.FrameAvailable(id + 100) // unregistered, dropped
	if len(got) != 1 || got[0] != id {
		t.Errorf("notifications = %v, want [%d]", got, id)
	}

	cancel()
	cancel()
	reg.FrameAvailable(id)
	if len(got) != 1 {
		t.Errorf("notified after cancel: %v", got)
	}
}

func TestRegistry_ListenerMayPull(t *testing.T) {
	reg := New()
	defer reg.Close()

	p := &mockProvider{}
	id, _ := reg.Register(p)
	reg.Subscribe(func(id imgtex.TextureID) {
		if _, err := reg.Pull(id); !errors.Is(err, imgtex.ErrNotReady) {
			t.Errorf("Pull() error = %v, want ErrNotReady", err)
		}
	})

	reg.FrameAvailable(id)
	if p.pulls != 1 {
		t.Errorf("pulls = %d, want 1", p.pulls)
	}
}

func TestRegistry_Close(t *testing.T) {
	reg := New()
	id, _ := reg.Register(&mockProvider{})

	if err := reg.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := reg.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := reg.Lookup(id); ok {
		t.Error("Lookup() after Close found a texture")
	}
	if _, err := reg.Register(&mockProvider{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Register() after Close error = %v, want ErrClosed", err)
	}
}

func TestNewRenderer(t *testing.T) {
	reg := New()
	defer reg.Close()

	r, err := NewRenderer(reg, 20, 20, imgtex.WithFrameCache(imgtex.NewFrameCache(1)))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Dispose()

	if r.TextureID() == imgtex.NoTexture {
		t.Fatal("renderer not bound")
	}

	notified := make(chan imgtex.TextureID, 4)
	reg.Subscribe(func(id imgtex.TextureID) { notified <- id })

	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{A: 0xff})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	res := r.Configure(context.Background(), imgtex.Request{
		Bitmap:       buf.Bytes(),
		Width:        20,
		Height:       20,
		SourceWidth:  10,
		SourceHeight: 10,
		Fit:          imgtex.FitContain,
	})
	if err := <-res; err != nil {
		t.Fatalf("Configure result = %v", err)
	}

	select {
	case id := <-notified:
		if id != r.TextureID() {
			t.Errorf("notified id = %d, want %d", id, r.TextureID())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no frame notification")
	}

	f, err := reg.Pull(r.TextureID())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	defer f.Release()
	if f.TextureID != r.TextureID() || f.Width != 20 {
		t.Errorf("frame id %d width %d", f.TextureID, f.Width)
	}
}

func TestNewRenderer_ClosedRegistry(t *testing.T) {
	reg := New()
	reg.Close()

	if _, err := NewRenderer(reg, 10, 10); !errors.Is(err, ErrClosed) {
		t.Errorf("NewRenderer() error = %v, want ErrClosed", err)
	}
}
