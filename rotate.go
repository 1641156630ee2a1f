package stitch

import (
	"fmt"
	"image"
	"math"

	"github.com/spriteforge/stitch/internal/scaler"
)

// Variant selects the rotation algorithm.
type Variant uint8

const (
	// HighQuality rotates through a palette-preserving upscale/downsample
	// pipeline. Slow, but the result contains no color absent from the
	// source. The default for offline work.
	HighQuality Variant = iota

	// Fast maps each destination pixel straight to its nearest source
	// pixel. An order of magnitude quicker; fine for previews and
	// real-time use.
	Fast
)

// String returns a string representation of the rotation variant.
func (v Variant) String() string {
	switch v {
	case HighQuality:
		return "HighQuality"
	case Fast:
		return "Fast"
	default:
		return "Unknown"
	}
}

// qualityFactor is the total upscale applied by the HighQuality pipeline:
// three Scale2x passes.
const qualityFactor = 8

// normalizeDegrees maps any angle to [0, 360).
func normalizeDegrees(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Rotate returns src rotated counter-clockwise by angle degrees. The result
// is always a new buffer sized to hold the rotated image; src is never
// modified. Angles are normalized to [0, 360); exact quarter turns are pure
// pixel permutations in both variants.
func Rotate(src *Buffer, angle float64, v Variant) (*Buffer, error) {
	if src == nil || src.width <= 0 || src.height <= 0 {
		return nil, fmt.Errorf("%w: rotate source", ErrInvalidDimensions)
	}

	a := normalizeDegrees(angle)
	switch a {
	case 0:
		return src.Clone(), nil
	case 90, 180, 270:
		return rotateQuarter(src, a), nil
	}

	if v == Fast {
		return rotateFast(src, a), nil
	}
	return rotateQuality(src, a), nil
}

// RotatedSize returns the dimensions of the buffer produced by rotating a
// w×h image by angle degrees. It matches the Fast variant exactly; the
// HighQuality pipeline can differ by one pixel at non-quarter angles.
func RotatedSize(w, h int, angle float64) (int, int) {
	a := normalizeDegrees(angle)
	switch a {
	case 0, 180:
		return w, h
	case 90, 270:
		return h, w
	}
	sin, cos := math.Sincos(a * math.Pi / 180)
	ow := int(math.Round(float64(w)*math.Abs(cos) + float64(h)*math.Abs(sin)))
	oh := int(math.Round(float64(w)*math.Abs(sin) + float64(h)*math.Abs(cos)))
	return ow, oh
}

// RotatePoint maps a pixel coordinate of a w×h image to its position after
// rotating the image by angle degrees. It follows the same convention as
// Rotate, so a rotated anchor stays on the pixels it was anchored to.
func RotatePoint(p image.Point, w, h int, angle float64) image.Point {
	a := normalizeDegrees(angle)
	switch a {
	case 0:
		return p
	case 90:
		return image.Pt(p.Y, w-1-p.X)
	case 180:
		return image.Pt(w-1-p.X, h-1-p.Y)
	case 270:
		return image.Pt(h-1-p.Y, p.X)
	}

	sin, cos := math.Sincos(a * math.Pi / 180)
	ow, oh := RotatedSize(w, h, a)

	// Pixel centers sit at +0.5; rotate about the image center.
	x := float64(p.X) - float64(w)/2 + 0.5
	y := float64(p.Y) - float64(h)/2 + 0.5
	rx := x*cos + y*sin
	ry := y*cos - x*sin

	fx := int(rx + float64(ow)/2)
	fy := int(ry + float64(oh)/2)
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	return image.Pt(fx, fy)
}

// rotateQuarter handles the exact 90/180/270 degree permutations.
func rotateQuarter(src *Buffer, degrees float64) *Buffer {
	w, h := src.width, src.height

	var dst *Buffer
	switch degrees {
	case 90, 270:
		dst = &Buffer{width: h, height: w, data: make([]uint8, len(src.data))}
	default:
		dst = &Buffer{width: w, height: h, data: make([]uint8, len(src.data))}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch degrees {
			case 90:
				dx, dy = y, w-1-x
			case 180:
				dx, dy = w-1-x, h-1-y
			case 270:
				dx, dy = h-1-y, x
			}
			si := (y*w + x) * 4
			di := (dy*dst.width + dx) * 4
			copy(dst.data[di:di+4], src.data[si:si+4])
		}
	}

	return dst
}

// rotateFast rotates by inverse mapping: each destination pixel center is
// rotated back into the source and the nearest source pixel is copied.
// Destination pixels that land outside the source stay transparent.
func rotateFast(src *Buffer, degrees float64) *Buffer {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	w, h := src.width, src.height
	ow, oh := RotatedSize(w, h, degrees)

	dst := &Buffer{width: ow, height: oh, data: make([]uint8, ow*oh*4)}

	halfW := float64(w) / 2
	halfH := float64(h) / 2
	halfOW := float64(ow) / 2
	halfOH := float64(oh) / 2

	for dy := 0; dy < oh; dy++ {
		py := float64(dy) - halfOH + 0.5
		for dx := 0; dx < ow; dx++ {
			px := float64(dx) - halfOW + 0.5
			sx := int(math.Round(px*cos - py*sin + halfW - 0.5))
			sy := int(math.Round(px*sin + py*cos + halfH - 0.5))
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				continue
			}
			si := (sy*w + sx) * 4
			di := (dy*ow + dx) * 4
			copy(dst.data[di:di+4], src.data[si:si+4])
		}
	}

	return dst
}

// rotateQuality rotates through the palette-preserving pipeline: upscale 8x
// with Scale2x, rotate the enlarged copy with the fast path, then reduce
// each 8x8 block to its most frequent color.
func rotateQuality(src *Buffer, degrees float64) *Buffer {
	data, w, h := src.data, src.width, src.height
	for i := 0; i < 3; i++ {
		data = scaler.Scale2x(data, w, h)
		w, h = w*2, h*2
	}

	big := rotateFast(&Buffer{width: w, height: h, data: data}, degrees)

	out, ow, oh := scaler.Downsample(big.data, big.width, big.height, qualityFactor)
	return &Buffer{width: ow, height: oh, data: out}
}
