// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputex uploads frames of an imgtex.TextureProvider to a GPU
// texture through the gpucontext interfaces of the host.
//
// Texture pulls the latest frame on every Sync, creates the GPU texture
// lazily on first use, updates it in place while the frame size is stable
// and recreates it when the size changes. Frames whose Seq was already
// uploaded are skipped.
//
// Usage with gogpu:
//
//	tex := gputex.New(renderer)
//	defer tex.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    if err := tex.Draw(dc.AsTextureDrawer(), 0, 0); err != nil {
//	        log.Printf("draw: %v", err)
//	    }
//	})
//
// Texture is NOT safe for concurrent use; call it from the draw loop.
package gputex
