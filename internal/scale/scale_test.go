package scale

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// near reports whether two colors differ by at most 2 per channel,
// absorbing kernel rounding.
func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool {
		diff := int(x) - int(y)
		return diff >= -2 && diff <= 2
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestParseInterpolation(t *testing.T) {
	for _, m := range []Interpolation{Nearest, Bilinear, Bicubic, Lanczos} {
		got, ok := ParseInterpolation(m.String())
		if !ok || got != m {
			t.Errorf("ParseInterpolation(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if _, ok := ParseInterpolation("sinc"); ok {
		t.Error("ParseInterpolation(sinc) succeeded")
	}
	if Interpolation(9).IsValid() {
		t.Error("Interpolation(9).IsValid() = true")
	}
}

func TestScalers_FillDestinationOnly(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	src := solid(40, 20, red)

	for _, m := range []Interpolation{Nearest, Bilinear, Bicubic, Lanczos} {
		t.Run(m.String(), func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 30, 30))
			dr := image.Rect(5, 10, 25, 20)
			For(m).Scale(dst, dr, src, src.Bounds())

			if got := dst.RGBAAt(15, 15); !near(got, red) {
				t.Errorf("center pixel = %v, want %v", got, red)
			}
			if got := dst.RGBAAt(2, 2); got.A != 0 {
				t.Errorf("pixel outside dr = %v, want transparent", got)
			}
			if got := dst.RGBAAt(15, 25); got.A != 0 {
				t.Errorf("pixel below dr = %v, want transparent", got)
			}
		})
	}
}

func TestScalers_SourceRegion(t *testing.T) {
	// Left half blue, right half green; scaling only the right half must
	// produce green everywhere.
	src := solid(20, 10, color.RGBA{B: 255, A: 255})
	green := color.RGBA{G: 255, A: 255}
	for y := range 10 {
		for x := 10; x < 20; x++ {
			src.SetRGBA(x, y, green)
		}
	}

	for _, m := range []Interpolation{Nearest, Lanczos} {
		dst := image.NewRGBA(image.Rect(0, 0, 5, 5))
		For(m).Scale(dst, dst.Bounds(), src, image.Rect(10, 0, 20, 10))
		if got := dst.RGBAAt(2, 2); !near(got, green) {
			t.Errorf("%v: pixel = %v, want %v", m, got, green)
		}
	}
}

func TestScale_SameSizeCopies(t *testing.T) {
	src := solid(4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	For(Bicubic).Scale(dst, image.Rect(2, 2, 6, 6), src, src.Bounds())

	if got := dst.RGBAAt(2, 2); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("copied pixel = %v", got)
	}
}

func TestMapRect(t *testing.T) {
	tests := []struct {
		name     string
		r        image.Rectangle
		from, to image.Point
		want     image.Rectangle
	}{
		{"identity", image.Rect(1, 2, 3, 4), image.Pt(10, 10), image.Pt(10, 10), image.Rect(1, 2, 3, 4)},
		{"double", image.Rect(0, 5, 50, 45), image.Pt(50, 50), image.Pt(100, 100), image.Rect(0, 10, 100, 90)},
		{"halve", image.Rect(0, 0, 50, 50), image.Pt(100, 100), image.Pt(50, 50), image.Rect(0, 0, 25, 25)},
		{"clamped", image.Rect(0, 0, 10, 10), image.Pt(10, 10), image.Pt(3, 3), image.Rect(0, 0, 3, 3)},
		{"tiny stays non-empty", image.Rect(9, 9, 10, 10), image.Pt(1000, 1000), image.Pt(1, 1), image.Rect(0, 0, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapRect(tt.r, tt.from, tt.to); got != tt.want {
				t.Errorf("MapRect() = %v, want %v", got, tt.want)
			}
		})
	}
}
