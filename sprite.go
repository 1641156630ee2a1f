package stitch

import (
	"fmt"
	"image"
)

// Frame is a single animation cell: a pixel buffer plus an optional anchor.
// The anchor is the point other sprites attach to, in the frame's own
// coordinates. A nil anchor means the buffer center.
type Frame struct {
	Buffer *Buffer
	Anchor *image.Point
}

// AnchorPoint returns the effective anchor of the frame: the declared
// anchor, or the buffer center when none is set.
func (f Frame) AnchorPoint() image.Point {
	if f.Anchor != nil {
		return *f.Anchor
	}
	return image.Pt(f.Buffer.Width()/2, f.Buffer.Height()/2)
}

// Sprite is a named sequence of frames. Frames may differ in size; each
// carries its own anchor.
type Sprite struct {
	Name   string
	Frames []Frame
}

// NewSprite creates a sprite from the given frames.
func NewSprite(name string, frames ...Frame) *Sprite {
	return &Sprite{Name: name, Frames: frames}
}

// SpriteFromSheet splits a sheet buffer into equally sized frames, read
// left to right, top to bottom. Partial cells at the right and bottom
// edges are ignored. Returns ErrInvalidDimensions when no full cell fits.
func SpriteFromSheet(name string, sheet *Buffer, frameWidth, frameHeight int) (*Sprite, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidDimensions, frameWidth, frameHeight)
	}
	cols := sheet.Width() / frameWidth
	rows := sheet.Height() / frameHeight
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d exceeds sheet %dx%d",
			ErrInvalidDimensions, frameWidth, frameHeight, sheet.Width(), sheet.Height())
	}

	frames := make([]Frame, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			frames = append(frames, Frame{
				Buffer: copyRegion(sheet, col*frameWidth, row*frameHeight, frameWidth, frameHeight),
			})
		}
	}

	return &Sprite{Name: name, Frames: frames}, nil
}

// copyRegion copies a w×h region of src starting at (x, y) into a new
// buffer. The region must lie inside src.
func copyRegion(src *Buffer, x, y, w, h int) *Buffer {
	dst := &Buffer{width: w, height: h, data: make([]uint8, w*h*4)}
	for row := 0; row < h; row++ {
		si := ((y+row)*src.width + x) * 4
		copy(dst.data[row*w*4:(row+1)*w*4], src.data[si:si+w*4])
	}
	return dst
}
