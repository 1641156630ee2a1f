// Package blend implements straight-alpha source-over compositing on raw
// RGBA pixel buffers.
package blend

// Pixel blends a single source pixel over a destination pixel using the
// Porter-Duff source-over operator on straight-alpha 8-bit channels:
//
//	out_a = src_a + dst_a * (1 - src_a)
//	out_c = (src_c * src_a + dst_c * dst_a * (1 - src_a)) / out_a
func Pixel(sr, sg, sb, sa, dr, dg, db, da uint8) (r, g, b, a uint8) {
	if sa == 0 {
		// Fully transparent source, destination unchanged.
		return dr, dg, db, da
	}
	if sa == 255 {
		// Fully opaque source replaces the destination.
		return sr, sg, sb, 255
	}
	if da == 0 {
		// Transparent destination, source passes through.
		return sr, sg, sb, sa
	}

	srcA := float64(sa) / 255.0
	dstA := float64(da) / 255.0
	outA := srcA + dstA*(1-srcA)
	if outA == 0 {
		return 0, 0, 0, 0
	}

	r = uint8((float64(sr)*srcA + float64(dr)*dstA*(1-srcA)) / outA)
	g = uint8((float64(sg)*srcA + float64(dg)*dstA*(1-srcA)) / outA)
	b = uint8((float64(sb)*srcA + float64(db)*dstA*(1-srcA)) / outA)
	a = uint8(outA * 255.0)

	return r, g, b, a
}

// SourceOver composites src over dst with src's top-left corner at
// (offX, offY) in dst coordinates. Both buffers are row-major RGBA with
// straight alpha. Source pixels falling outside dst are clipped; dst is
// modified in place and src is never written.
func SourceOver(dst []uint8, dstW, dstH int, src []uint8, srcW, srcH, offX, offY int) {
	for sy := 0; sy < srcH; sy++ {
		dy := offY + sy
		if dy < 0 || dy >= dstH {
			continue
		}
		for sx := 0; sx < srcW; sx++ {
			dx := offX + sx
			if dx < 0 || dx >= dstW {
				continue
			}

			si := (sy*srcW + sx) * 4
			di := (dy*dstW + dx) * 4

			r, g, b, a := Pixel(
				src[si], src[si+1], src[si+2], src[si+3],
				dst[di], dst[di+1], dst[di+2], dst[di+3],
			)
			dst[di] = r
			dst[di+1] = g
			dst[di+2] = b
			dst[di+3] = a
		}
	}
}
