package scale

import (
	"image"
	"math"
)

// MapRect maps r from a coordinate space of size from into one of size to.
// The result is clamped to the target bounds and is never empty when r is
// not empty.
func MapRect(r image.Rectangle, from, to image.Point) image.Rectangle {
	if from == to {
		return r
	}
	sx := float64(to.X) / float64(from.X)
	sy := float64(to.Y) / float64(from.Y)

	out := image.Rect(
		int(math.Floor(float64(r.Min.X)*sx)),
		int(math.Floor(float64(r.Min.Y)*sy)),
		int(math.Ceil(float64(r.Max.X)*sx)),
		int(math.Ceil(float64(r.Max.Y)*sy)),
	).Intersect(image.Rectangle{Max: to})

	if out.Empty() && !r.Empty() {
		x := min(max(out.Min.X, 0), to.X-1)
		y := min(max(out.Min.Y, 0), to.Y-1)
		out = image.Rect(x, y, x+1, y+1)
	}
	return out
}
