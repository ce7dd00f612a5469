package imgtex

// TextureProvider is the contract between a host's external texture
// registry and a producer of frames.
//
// The host binds the provider to the identifier it allocated, then pulls
// frames whenever it was told that a new one is available.
type TextureProvider interface {
	// PullFrame returns the latest frame without blocking, or ErrNotReady.
	// The caller must Release the returned frame.
	PullFrame() (*Frame, error)

	// Bind associates the provider with a registry identifier.
	Bind(id TextureID) error
}

var _ TextureProvider = (*Renderer)(nil)
