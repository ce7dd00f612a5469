package imgtex

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"
)

// MaxDimension is the largest width or height accepted for the destination
// box and the declared source size. It matches the common maximum 2D
// texture size of desktop GPUs.
const MaxDimension = 16384

// Request describes one render: where the image comes from, how large it is
// declared to be and how it is fitted into the destination box.
//
// Exactly one of Path and Bitmap must be set.
type Request struct {
	// Path is an image file on durable storage.
	Path string

	// Bitmap holds encoded image bytes (PNG, JPEG, ...), used when Path is
	// empty. See DecodeBitmapString for the host's string form.
	Bitmap []byte

	// Width and Height are the destination box in pixels.
	Width, Height int

	// SourceWidth and SourceHeight are the declared size of the source
	// image. The fit layout is computed from them.
	SourceWidth, SourceHeight int

	// Fit selects how the source maps into the destination box.
	Fit FitMode

	// UseCache allows reusing a frame rendered for an equivalent request.
	UseCache bool
}

// Validate checks the request parameters without touching the source.
// Errors wrap ErrInvalidParameters.
func (r *Request) Validate() error {
	switch {
	case r.Path != "" && len(r.Bitmap) > 0:
		return fmt.Errorf("%w: both path and bitmap set", ErrInvalidParameters)
	case r.Path == "" && len(r.Bitmap) == 0:
		return fmt.Errorf("%w: neither path nor bitmap set", ErrInvalidParameters)
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("%w: destination %dx%d", ErrInvalidParameters, r.Width, r.Height)
	case r.Width > MaxDimension || r.Height > MaxDimension:
		return fmt.Errorf("%w: destination %dx%d exceeds %d", ErrInvalidParameters, r.Width, r.Height, MaxDimension)
	case r.SourceWidth <= 0 || r.SourceHeight <= 0:
		return fmt.Errorf("%w: source %dx%d", ErrInvalidParameters, r.SourceWidth, r.SourceHeight)
	case r.SourceWidth > MaxDimension || r.SourceHeight > MaxDimension:
		return fmt.Errorf("%w: source %dx%d exceeds %d", ErrInvalidParameters, r.SourceWidth, r.SourceHeight, MaxDimension)
	case !r.Fit.IsValid():
		return fmt.Errorf("%w: %v", ErrInvalidParameters, r.Fit)
	}
	return nil
}

// Layout returns the fitted source and destination rectangles.
// The request must be valid.
func (r *Request) Layout() (srcRect, dstRect image.Rectangle) {
	return r.Fit.Apply(r.SourceSize(), r.Size())
}

// Size returns the destination box size.
func (r *Request) Size() image.Point {
	return image.Pt(r.Width, r.Height)
}

// SourceSize returns the declared source size.
func (r *Request) SourceSize() image.Point {
	return image.Pt(r.SourceWidth, r.SourceHeight)
}

// clone returns a copy that shares no memory with r.
func (r *Request) clone() *Request {
	c := *r
	if r.Bitmap != nil {
		c.Bitmap = append([]byte(nil), r.Bitmap...)
	}
	return &c
}

// source describes the request's source for logs.
func (r *Request) source() string {
	if r.Path != "" {
		return r.Path
	}
	return fmt.Sprintf("bitmap(%d bytes)", len(r.Bitmap))
}

// DecodeBitmapString converts the host's string form of a bitmap into
// encoded image bytes. It accepts standard and unpadded base64, in plain or
// URL-safe alphabet, optionally behind a "data:<mime>;base64," prefix.
// Errors wrap ErrSourceNotFound.
func DecodeBitmapString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		_, payload, found := strings.Cut(rest, ";base64,")
		if !found {
			return nil, fmt.Errorf("%w: data URL without base64 payload", ErrSourceNotFound)
		}
		s = payload
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty bitmap", ErrSourceNotFound)
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: bitmap is not base64", ErrSourceNotFound)
}
