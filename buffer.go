package stitch

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Buffer is a rectangular pixel buffer in straight (non-premultiplied)
// RGBA with 8 bits per channel. Sprite frames, rotation results and packed
// sheets are all Buffers. Operations in this package never alias input and
// output: every transform allocates a fresh Buffer.
type Buffer struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewBuffer creates a fully transparent buffer with the given dimensions.
// Returns ErrInvalidDimensions if either dimension is not positive.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}, nil
}

// Width returns the width of the buffer in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the height of the buffer in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Data returns the raw pixel data (RGBA order, row-major).
func (b *Buffer) Data() []uint8 {
	return b.data
}

// offset returns the index of pixel (x, y) in data. Coordinates outside
// the buffer are a programming error and panic.
func (b *Buffer) offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(fmt.Sprintf("stitch: pixel (%d, %d) out of range %dx%d", x, y, b.width, b.height))
	}
	return (y*b.width + x) * 4
}

// Get returns the color of a single pixel. Get panics when (x, y) is
// outside the buffer; use At for the permissive image.Image behavior.
func (b *Buffer) Get(x, y int) color.NRGBA {
	i := b.offset(x, y)
	return color.NRGBA{R: b.data[i+0], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// Set sets the color of a single pixel. Set panics when (x, y) is outside
// the buffer.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	i := b.offset(x, y)
	b.data[i+0] = c.R
	b.data[i+1] = c.G
	b.data[i+2] = c.B
	b.data[i+3] = c.A
}

// Fill sets every pixel to the given color.
func (b *Buffer) Fill(c color.NRGBA) {
	for i := 0; i < len(b.data); i += 4 {
		b.data[i+0] = c.R
		b.data[i+1] = c.G
		b.data[i+2] = c.B
		b.data[i+3] = c.A
	}
}

// Clear resets every pixel to fully transparent.
func (b *Buffer) Clear() {
	clear(b.data)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &Buffer{width: b.width, height: b.height, data: data}
}

// Opaque reports whether every pixel has full alpha.
func (b *Buffer) Opaque() bool {
	for i := 3; i < len(b.data); i += 4 {
		if b.data[i] != 0xff {
			return false
		}
	}
	return true
}

// ToImage converts the buffer to an image.NRGBA. The returned image shares
// the buffer's pixel memory; Clone first if an independent copy is needed.
func (b *Buffer) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.data,
		Stride: b.width * 4,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// FromImage creates a buffer from an image. The result never shares memory
// with the source.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	b := &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(b.data[y*width*4:(y+1)*width*4], row[:width*4])
		}
		return b
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			b.Set(x, y, c)
		}
	}

	return b
}

// SavePNG saves the buffer to a PNG file.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, b.ToImage())
}

// At implements the image.Image interface. Unlike Get, coordinates outside
// the buffer return the zero color.
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{}
	}
	i := (y*b.width + x) * 4
	return color.NRGBA{R: b.data[i+0], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
}

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}
