// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/imgtex"
)

// Registry errors.
var (
	// ErrClosed is returned by operations on a closed registry.
	ErrClosed = errors.New("registry: closed")

	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("registry: nil provider")

	// ErrUnknownTexture is returned for identifiers that are not registered.
	ErrUnknownTexture = errors.New("registry: unknown texture")
)

// Listener is notified when a new frame is available for a texture.
// It runs on the goroutine that published the frame.
type Listener func(id imgtex.TextureID)

// Registry maps texture identifiers to providers.
//
// Thread safety: All methods are safe for concurrent use. Listeners are
// called without the registry lock held and may call back into it.
type Registry struct {
	mu        sync.RWMutex
	next      imgtex.TextureID
	providers map[imgtex.TextureID]imgtex.TextureProvider
	listeners map[uint64]Listener
	nextSub   uint64
	closed    bool
}

// New creates an empty registry. Identifiers start at 1.
func New() *Registry {
	return &Registry{
		next:      1,
		providers: make(map[imgtex.TextureID]imgtex.TextureProvider),
		listeners: make(map[uint64]Listener),
	}
}

// Register allocates an identifier for p and binds p to it.
// If Bind fails, nothing is registered.
func (r *Registry) Register(p imgtex.TextureProvider) (imgtex.TextureID, error) {
	if p == nil {
		return imgtex.NoTexture, ErrNilProvider
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return imgtex.NoTexture, ErrClosed
	}
	id := r.next
	r.next++
	r.mu.Unlock()

	if err := p.Bind(id); err != nil {
		return imgtex.NoTexture, fmt.Errorf("registry: bind texture %d: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return imgtex.NoTexture, ErrClosed
	}
	r.providers[id] = p
	imgtex.Logger().Debug("registry: texture registered", "texture", id)
	return id, nil
}

// Unregister removes the provider bound to id. The provider is not disposed.
func (r *Registry) Unregister(id imgtex.TextureID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	delete(r.providers, id)
	imgtex.Logger().Debug("registry: texture unregistered", "texture", id)
	return nil
}

// Lookup returns the provider bound to id.
func (r *Registry) Lookup(id imgtex.TextureID) (imgtex.TextureProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Pull returns the latest frame of the texture bound to id.
// The caller must Release the frame.
func (r *Registry) Pull(id imgtex.TextureID) (*imgtex.Frame, error) {
	p, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	return p.PullFrame()
}

// Len returns the number of registered textures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Subscribe adds a listener for frame notifications. The returned function
// removes it and is safe to call more than once.
func (r *Registry) Subscribe(l Listener) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || l == nil {
		return func() {}
	}
	key := r.nextSub
	r.nextSub++
	r.listeners[key] = l

	return func() {
		r.mu.Lock()
		delete(r.listeners, key)
		r.mu.Unlock()
	}
}

// FrameAvailable notifies listeners that the texture bound to id has a new
// frame. Notifications for unregistered identifiers are dropped.
func (r *Registry) FrameAvailable(id imgtex.TextureID) {
	r.mu.RLock()
	if _, ok := r.providers[id]; !ok {
		r.mu.RUnlock()
		return
	}
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	for _, l := range listeners {
		l(id)
	}
}

// Close drops every registration and listener. It is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	clear(r.providers)
	clear(r.listeners)
	return nil
}

// NewRenderer creates a Renderer registered in reg whose frames are
// announced through reg.FrameAvailable.
func NewRenderer(reg *Registry, width, height int, opts ...imgtex.Option) (*imgtex.Renderer, error) {
	var r *imgtex.Renderer
	r, err := imgtex.New(func() {
		reg.FrameAvailable(r.TextureID())
	}, width, height, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := reg.Register(r); err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}
