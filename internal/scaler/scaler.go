// Package scaler implements the palette-preserving resampling passes used by
// the rotation pipeline: an EPX (Scale2x) upscaler, a majority-color block
// downsampler, and a nearest-neighbor rescaler.
//
// All functions operate on row-major RGBA data, 4 bytes per pixel, and return
// freshly allocated slices. Colors are compared for exact equality; no pass
// ever produces a color that was not present in its input.
package scaler

import "math"

// at returns the pixel at (x, y) packed as a single RGBA word.
func at(src []uint8, w, x, y int) uint32 {
	i := (y*w + x) * 4
	return uint32(src[i])<<24 | uint32(src[i+1])<<16 | uint32(src[i+2])<<8 | uint32(src[i+3])
}

// put writes a packed RGBA word to the pixel at (x, y).
func put(dst []uint8, w, x, y int, p uint32) {
	i := (y*w + x) * 4
	dst[i] = uint8(p >> 24)
	dst[i+1] = uint8(p >> 16)
	dst[i+2] = uint8(p >> 8)
	dst[i+3] = uint8(p)
}

// Scale2x doubles src in both dimensions using the EPX rule.
//
// For every source pixel C with 4-neighbors U, L, R, D, the four output
// pixels default to C; a corner copies the adjacent edge color when exactly
// two distinct neighbors agree along that diagonal:
//
//	out00 = U if L==U && L!=D && U!=R
//	out01 = R if U==R && U!=L && R!=D
//	out10 = L if D==L && D!=R && L!=U
//	out11 = D if R==D && R!=U && D!=L
//
// This extends same-color runs along diagonals without blending, so hard
// pixel-art edges stay hard. Neighbors are clamped at the borders, which
// keeps the rule total for 1- and 2-pixel-wide inputs.
func Scale2x(src []uint8, w, h int) []uint8 {
	ow := w * 2
	out := make([]uint8, ow*h*2*4)

	for y := 0; y < h; y++ {
		up := y - 1
		if up < 0 {
			up = 0
		}
		down := y + 1
		if down >= h {
			down = h - 1
		}

		for x := 0; x < w; x++ {
			left := x - 1
			if left < 0 {
				left = 0
			}
			right := x + 1
			if right >= w {
				right = w - 1
			}

			c := at(src, w, x, y)
			u := at(src, w, x, up)
			d := at(src, w, x, down)
			l := at(src, w, left, y)
			r := at(src, w, right, y)

			o00, o01, o10, o11 := c, c, c, c
			if l == u && l != d && u != r {
				o00 = u
			}
			if u == r && u != l && r != d {
				o01 = r
			}
			if d == l && d != r && l != u {
				o10 = l
			}
			if r == d && r != u && d != l {
				o11 = d
			}

			put(out, ow, x*2, y*2, o00)
			put(out, ow, x*2+1, y*2, o01)
			put(out, ow, x*2, y*2+1, o10)
			put(out, ow, x*2+1, y*2+1, o11)
		}
	}

	return out
}

// Downsample shrinks src by an integer factor. Each output pixel is the most
// frequent exact RGBA value within its factor×factor source block. Ties go to
// the value that reached the winning count first in row-major block order, so
// the result does not depend on map iteration order. Ragged rows and columns
// beyond the last full block are dropped.
func Downsample(src []uint8, w, h, factor int) (out []uint8, outW, outH int) {
	outW = w / factor
	outH = h / factor
	out = make([]uint8, outW*outH*4)

	counts := make(map[uint32]int, factor*factor)

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			clear(counts)
			var best uint32
			bestN := 0

			for by := 0; by < factor; by++ {
				for bx := 0; bx < factor; bx++ {
					p := at(src, w, ox*factor+bx, oy*factor+by)
					n := counts[p] + 1
					counts[p] = n
					if n > bestN {
						bestN = n
						best = p
					}
				}
			}

			put(out, outW, ox, oy, best)
		}
	}

	return out, outW, outH
}

// Nearest rescales src by an arbitrary positive factor with nearest-neighbor
// sampling. Output dimensions are round(w·factor)×round(h·factor), at least
// 1×1. Each output pixel copies the source pixel its center falls in.
func Nearest(src []uint8, w, h int, factor float64) (out []uint8, outW, outH int) {
	outW = int(math.Round(float64(w) * factor))
	if outW < 1 {
		outW = 1
	}
	outH = int(math.Round(float64(h) * factor))
	if outH < 1 {
		outH = 1
	}
	out = make([]uint8, outW*outH*4)

	for y := 0; y < outH; y++ {
		sy := int((float64(y) + 0.5) / factor)
		if sy < 0 {
			sy = 0
		}
		if sy >= h {
			sy = h - 1
		}
		for x := 0; x < outW; x++ {
			sx := int((float64(x) + 0.5) / factor)
			if sx < 0 {
				sx = 0
			}
			if sx >= w {
				sx = w - 1
			}
			put(out, outW, x, y, at(src, w, sx, sy))
		}
	}

	return out, outW, outH
}

// ScalePoint maps a source pixel coordinate to the output pixel it lands on
// under Nearest with the same factor. Results are clamped into the output
// bounds so a valid source coordinate always maps to a valid output one.
func ScalePoint(x, y int, factor float64, outW, outH int) (int, int) {
	ox := int(math.Floor((float64(x) + 0.5) * factor))
	oy := int(math.Floor((float64(y) + 0.5) * factor))
	if ox < 0 {
		ox = 0
	}
	if ox >= outW {
		ox = outW - 1
	}
	if oy < 0 {
		oy = 0
	}
	if oy >= outH {
		oy = outH - 1
	}
	return ox, oy
}
