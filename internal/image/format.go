// Package image provides the pixel buffers that back texture frames.
//
// Buffers are tightly packed 32-bit images in one of four channel orders,
// which covers the layouts compositors accept for external textures.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatRGBA8 is 32-bit RGBA with straight alpha (4 bytes per pixel).
	FormatRGBA8 Format = iota

	// FormatBGRA8 is 32-bit BGRA with straight alpha (4 bytes per pixel).
	FormatBGRA8

	// FormatRGBAPremul is 32-bit RGBA with premultiplied alpha.
	FormatRGBAPremul

	// FormatBGRAPremul is 32-bit BGRA with premultiplied alpha.
	// This is the layout most platform compositors sample without conversion.
	FormatBGRAPremul

	// formatCount is the number of formats (for internal use).
	formatCount
)

// bytesPerPixel is the same for every supported format.
const bytesPerPixel = 4

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Name is the human-readable name used in configuration and logs.
	Name string

	// IsPremultiplied indicates if alpha is premultiplied.
	IsPremultiplied bool

	// IsBGR indicates the red and blue channels are swapped in memory.
	IsBGR bool
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatRGBA8:      {Name: "rgba8"},
	FormatBGRA8:      {Name: "bgra8", IsBGR: true},
	FormatRGBAPremul: {Name: "rgba8-premul", IsPremultiplied: true},
	FormatBGRAPremul: {Name: "bgra8-premul", IsPremultiplied: true, IsBGR: true},
}

// Info returns the FormatInfo for this format.
// Returns a zero FormatInfo for invalid formats.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel.
func (f Format) BytesPerPixel() int {
	return bytesPerPixel
}

// IsPremultiplied returns true if alpha is premultiplied.
func (f Format) IsPremultiplied() bool {
	return f.Info().IsPremultiplied
}

// IsBGR returns true if red and blue are stored swapped.
func (f Format) IsBGR() bool {
	return f.Info().IsBGR
}

// String returns the configuration name of the format.
func (f Format) String() string {
	if !f.IsValid() {
		return "unknown"
	}
	return formatInfoTable[f].Name
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes returns the number of bytes needed for one row of pixels.
func (f Format) RowBytes(width int) int {
	return width * bytesPerPixel
}

// ImageBytes returns the total bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// ParseFormat returns the format with the given configuration name.
func ParseFormat(name string) (Format, bool) {
	for i, info := range formatInfoTable {
		if info.Name == name {
			return Format(i), true
		}
	}
	return 0, false
}
