// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package registry is a host-side external texture registry.
//
// A compositor addresses external textures by identifier. Registry hands out
// those identifiers, binds them to texture providers and fans out "frame
// available" notifications to whoever composites the textures.
//
// Basic usage:
//
//	reg := registry.New()
//	defer reg.Close()
//
//	cancel := reg.Subscribe(func(id imgtex.TextureID) {
//	    frame, err := reg.Pull(id)
//	    if err != nil {
//	        return
//	    }
//	    defer frame.Release()
//	    // upload frame.Pix()
//	})
//	defer cancel()
//
//	r, err := registry.NewRenderer(reg, 300, 200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Dispose()
//	<-r.Configure(ctx, req)
//
// The registry stores providers but does not own them: Unregister and Close
// never dispose a provider.
package registry
