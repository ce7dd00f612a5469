package image

import (
	"image"
)

// RGBAView returns a premultiplied *image.RGBA sharing this buffer's memory.
//
// Scalers draw through the view, after which ConvertFromPremulRGBA
// rearranges the bytes into the buffer's own format.
func (b *ImageBuf) RGBAView() *image.RGBA {
	return &image.RGBA{
		Pix:    b.data,
		Stride: b.stride,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// ConvertFromPremulRGBA converts the buffer contents, which must hold
// premultiplied RGBA (as written through RGBAView), into b's format in place.
func (b *ImageBuf) ConvertFromPremulRGBA() {
	swap := b.format.IsBGR()
	unpremul := !b.format.IsPremultiplied()
	if !swap && !unpremul {
		return
	}

	for y := range b.height {
		row := b.RowBytes(y)
		for off := 0; off < len(row); off += bytesPerPixel {
			p := row[off : off+bytesPerPixel : off+bytesPerPixel]
			if unpremul {
				unpremultiply(p)
			}
			if swap {
				p[0], p[2] = p[2], p[0]
			}
		}
	}
}

// unpremultiply converts one premultiplied RGBA pixel to straight alpha.
func unpremultiply(p []byte) {
	a := uint32(p[3])
	switch a {
	case 0:
		p[0], p[1], p[2] = 0, 0, 0
	case 255:
	default:
		half := a / 2
		p[0] = byte(min((uint32(p[0])*255+half)/a, 255))
		p[1] = byte(min((uint32(p[1])*255+half)/a, 255))
		p[2] = byte(min((uint32(p[2])*255+half)/a, 255))
	}
}

// ToNRGBA converts the buffer to a straight-alpha *image.NRGBA.
// The result does not share memory with b.
func (b *ImageBuf) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	premul := b.format.IsPremultiplied()

	for y := range b.height {
		dst := out.Pix[y*out.Stride : y*out.Stride+b.format.RowBytes(b.width)]
		for x := range b.width {
			r, g, bl, a := b.GetRGBA(x, y)
			p := dst[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = r, g, bl, a
			if premul {
				unpremultiply(p)
			}
		}
	}
	return out
}
