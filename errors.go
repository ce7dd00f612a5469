package imgtex

import "errors"

// Errors reported by Renderer operations and render passes.
// Returned errors wrap these sentinels with detail; test with errors.Is.
var (
	// ErrSourceNotFound is returned when the path or bitmap reference is
	// unusable: missing or unreadable file, empty file, empty or
	// malformed bitmap data.
	ErrSourceNotFound = errors.New("imgtex: source not found")

	// ErrDecodeFailure is returned when source bytes are present but are not
	// a valid image in any supported format.
	ErrDecodeFailure = errors.New("imgtex: decode failure")

	// ErrInvalidParameters is returned for non-positive dimensions, an
	// unrecognized fit mode, an ambiguous source, or (in strict mode) a
	// decoded size that differs from the declared source size.
	ErrInvalidParameters = errors.New("imgtex: invalid parameters")

	// ErrNotReady is returned by PullFrame when no frame is available.
	ErrNotReady = errors.New("imgtex: frame not ready")

	// ErrDisposed is returned by operations invoked after Dispose.
	ErrDisposed = errors.New("imgtex: renderer disposed")

	// ErrNoRequest is returned by TriggerRender when nothing was configured.
	ErrNoRequest = errors.New("imgtex: no request configured")

	// ErrInvalidTextureID is returned by Bind for negative identifiers.
	ErrInvalidTextureID = errors.New("imgtex: invalid texture id")
)
