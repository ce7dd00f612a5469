package imgtex

import (
	"fmt"
	"image"
	"math"
)

// FitMode selects how the source image maps into the destination box.
// The integer values match the host's fit enumeration order.
type FitMode int

const (
	// FitFill stretches the whole source over the whole box,
	// ignoring aspect ratio.
	FitFill FitMode = iota

	// FitContain scales the whole source to the largest size that fits in
	// the box, preserving aspect ratio. The rest of the box is transparent.
	FitContain

	// FitCover scales the source to the smallest size that covers the box,
	// preserving aspect ratio and cropping the overflow equally on both sides.
	FitCover

	// FitWidth scales so the source width matches the box width.
	FitWidth

	// FitHeight scales so the source height matches the box height.
	FitHeight

	// FitNone draws the source unscaled, centered and cropped to the box.
	FitNone

	// FitScaleDown behaves like FitNone when the source fits in the box and
	// like FitContain otherwise.
	FitScaleDown

	fitModeCount
)

var fitModeNames = [fitModeCount]string{
	FitFill:      "fill",
	FitContain:   "contain",
	FitCover:     "cover",
	FitWidth:     "fitWidth",
	FitHeight:    "fitHeight",
	FitNone:      "none",
	FitScaleDown: "scaleDown",
}

// String returns the name of the fit mode.
func (m FitMode) String() string {
	if m.IsValid() {
		return fitModeNames[m]
	}
	return fmt.Sprintf("FitMode(%d)", int(m))
}

// IsValid reports whether m is a recognized fit mode.
func (m FitMode) IsValid() bool {
	return m >= 0 && m < fitModeCount
}

// ParseFitMode returns the fit mode with the given name.
func ParseFitMode(name string) (FitMode, error) {
	for i, n := range fitModeNames {
		if n == name {
			return FitMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown fit mode %q", ErrInvalidParameters, name)
}

// Apply computes where a source of size src lands in a box of size dst.
//
// srcRect is the part of the source that is drawn, in source coordinates.
// dstRect is where it is drawn, in box coordinates. Both are centered, and
// both are non-empty when src and dst are positive.
func (m FitMode) Apply(src, dst image.Point) (srcRect, dstRect image.Rectangle) {
	sw, sh := float64(src.X), float64(src.Y)
	dw, dh := float64(dst.X), float64(dst.Y)

	// The box is relatively wider than the source.
	wider := dst.X*src.Y > src.X*dst.Y

	sSize, dSize := [2]float64{sw, sh}, [2]float64{dw, dh}

	switch m {
	case FitContain:
		if wider {
			dSize = [2]float64{sw * dh / sh, dh}
		} else {
			dSize = [2]float64{dw, sh * dw / sw}
		}
	case FitCover:
		if wider {
			sSize = [2]float64{sw, sw * dh / dw}
		} else {
			sSize = [2]float64{sh * dw / dh, sh}
		}
	case FitWidth:
		if wider {
			sSize = [2]float64{sw, sw * dh / dw}
		} else {
			dSize = [2]float64{dw, sh * dw / sw}
		}
	case FitHeight:
		if wider {
			dSize = [2]float64{sw * dh / sh, dh}
		} else {
			sSize = [2]float64{sh * dw / dh, sh}
		}
	case FitNone:
		sSize = [2]float64{min(sw, dw), min(sh, dh)}
		dSize = sSize
	case FitScaleDown:
		dSize = sSize
		aspect := sw / sh
		if dSize[1] > dh {
			dSize = [2]float64{dh * aspect, dh}
		}
		if dSize[0] > dw {
			dSize = [2]float64{dw, dw / aspect}
		}
	}

	return centered(src, sSize), centered(dst, dSize)
}

// centered returns a rectangle of the given size centered in a box of size
// outer. The size is rounded and clamped to [1, outer].
func centered(outer image.Point, size [2]float64) image.Rectangle {
	w := clampDim(size[0], outer.X)
	h := clampDim(size[1], outer.Y)
	x := (outer.X - w) / 2
	y := (outer.Y - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

func clampDim(v float64, limit int) int {
	return min(max(int(math.Round(v)), 1), limit)
}
