package stitch

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Sheet is a packed atlas: one canvas holding many frames, with the
// rectangle each frame occupies.
type Sheet struct {
	Canvas *Buffer
	Rects  []image.Rectangle
}

// Pack arranges the frames onto a single transparent canvas using shelf
// packing: frames are placed tallest first in left-to-right shelves, so the
// same input always produces the same layout. Frames are copied pixel for
// pixel; Pack never resamples. Packing no frames returns an empty sheet
// with a nil canvas.
func Pack(frames []Frame) (*Sheet, error) {
	if len(frames) == 0 {
		return &Sheet{}, nil
	}
	for i, f := range frames {
		if f.Buffer == nil || f.Buffer.width <= 0 || f.Buffer.height <= 0 {
			return nil, fmt.Errorf("frame %d: %w", i, ErrInvalidDimensions)
		}
	}

	rects, w, h := planRects(frames)

	canvas := &Buffer{width: w, height: h, data: make([]uint8, w*h*4)}
	for i, f := range frames {
		blit(canvas, f.Buffer, rects[i].Min.X, rects[i].Min.Y)
	}

	Logger().Debug("packed frames", "count", len(frames), "canvas", fmt.Sprintf("%dx%d", w, h))

	return &Sheet{Canvas: canvas, Rects: rects}, nil
}

// planRects computes the shelf-packing layout for the frames: the
// rectangle each frame occupies on the canvas, plus the canvas size.
// Frames are sorted tallest first (ties: wider first, then input order)
// and packed into shelves; the result is indexed by input position.
func planRects(frames []Frame) (rects []image.Rectangle, width, height int) {
	if len(frames) == 0 {
		return nil, 0, 0
	}

	type entry struct {
		index int
		w, h  int
	}
	entries := make([]entry, len(frames))
	maxW, area := 0, 0
	for i, f := range frames {
		w, h := f.Buffer.Width(), f.Buffer.Height()
		entries[i] = entry{index: i, w: w, h: h}
		if w > maxW {
			maxW = w
		}
		area += w * h
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.h != b.h {
			return a.h > b.h
		}
		if a.w != b.w {
			return a.w > b.w
		}
		return a.index < b.index
	})

	// Aim for a roughly square canvas, but never narrower than the widest
	// frame.
	width = maxW
	if s := int(math.Ceil(math.Sqrt(float64(area)))); s > width {
		width = s
	}

	rects = make([]image.Rectangle, len(frames))
	x, y, shelfH := 0, 0, 0
	for _, e := range entries {
		if x > 0 && x+e.w > width {
			y += shelfH
			x, shelfH = 0, 0
		}
		rects[e.index] = image.Rect(x, y, x+e.w, y+e.h)
		x += e.w
		if e.h > shelfH {
			shelfH = e.h
		}
	}
	height = y + shelfH

	return rects, width, height
}

// blit copies src onto dst at (x, y) without blending. The destination
// region must lie inside dst.
func blit(dst, src *Buffer, x, y int) {
	for row := 0; row < src.height; row++ {
		di := ((y+row)*dst.width + x) * 4
		si := row * src.width * 4
		copy(dst.data[di:di+src.width*4], src.data[si:si+src.width*4])
	}
}
