// Package scale resamples decoded images into frame buffers.
package scale

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel.
type Interpolation uint8

const (
	// Nearest selects the closest pixel (no interpolation).
	// Fast but produces blocky results when scaling.
	Nearest Interpolation = iota

	// Bilinear interpolates between 4 neighboring pixels.
	Bilinear

	// Bicubic uses a Catmull-Rom kernel over a 4x4 neighborhood.
	Bicubic

	// Lanczos uses a Lanczos3 kernel. Sharpest for large downscales,
	// and the slowest of the four.
	Lanczos
)

var interpolationNames = [...]string{
	Nearest:  "nearest",
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
	Lanczos:  "lanczos",
}

// String returns the configuration name of the interpolation mode.
func (m Interpolation) String() string {
	if int(m) < len(interpolationNames) {
		return interpolationNames[m]
	}
	return "unknown"
}

// IsValid reports whether m is a known interpolation mode.
func (m Interpolation) IsValid() bool {
	return int(m) < len(interpolationNames)
}

// ParseInterpolation returns the interpolation mode with the given name.
func ParseInterpolation(name string) (Interpolation, bool) {
	for i, n := range interpolationNames {
		if n == name {
			return Interpolation(i), true
		}
	}
	return 0, false
}

// Scaler resamples the sr portion of src into the dr portion of dst,
// replacing the destination pixels.
type Scaler interface {
	Scale(dst *image.RGBA, dr image.Rectangle, src image.Image, sr image.Rectangle)
}

// For returns the Scaler implementing the interpolation mode.
// Unknown modes fall back to Bicubic.
func For(m Interpolation) Scaler {
	switch m {
	case Nearest:
		return kernelScaler{draw.NearestNeighbor}
	case Bilinear:
		return kernelScaler{draw.ApproxBiLinear}
	case Lanczos:
		return lanczosScaler{}
	default:
		return kernelScaler{draw.CatmullRom}
	}
}

// kernelScaler scales with an x/image/draw interpolator.
type kernelScaler struct {
	interp draw.Interpolator
}

func (s kernelScaler) Scale(dst *image.RGBA, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	if dr.Empty() || sr.Empty() {
		return
	}
	if dr.Size() == sr.Size() {
		// Same size: a straight copy avoids kernel blurring.
		draw.Draw(dst, dr, src, sr.Min, draw.Src)
		return
	}
	s.interp.Scale(dst, dr, src, sr, draw.Src, nil)
}

// lanczosScaler scales with nfnt/resize, which works on whole images,
// so the source region is cropped first.
type lanczosScaler struct{}

func (lanczosScaler) Scale(dst *image.RGBA, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	if dr.Empty() || sr.Empty() {
		return
	}
	cropped := crop(src, sr)
	if dr.Size() == sr.Size() {
		draw.Draw(dst, dr, cropped, cropped.Bounds().Min, draw.Src)
		return
	}
	resized := resize.Resize(uint(dr.Dx()), uint(dr.Dy()), cropped, resize.Lanczos3)
	draw.Draw(dst, dr, resized, resized.Bounds().Min, draw.Src)
}

// subImager is implemented by all concrete image types in the standard library.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func crop(src image.Image, sr image.Rectangle) image.Image {
	if sr == src.Bounds() {
		return src
	}
	if si, ok := src.(subImager); ok {
		return si.SubImage(sr)
	}
	out := image.NewRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	draw.Draw(out, out.Bounds(), src, sr.Min, draw.Src)
	return out
}
