// Package spritefile reads and writes compiled sprite sheets.
//
// The .sps format is a little-endian binary layout built for pixel art:
// a packed canvas stored as transparent-run/opaque-run RLE plus a frame
// table of rects, anchors and durations. Pixel-art sheets are mostly
// transparent and mostly flat color, so run lengths compress them well
// without a general-purpose codec.
//
// Layout (all integers little-endian):
//
//	uint32  signature "SPS1"
//	uint16  format version (currently 1)
//	uint16  frame count
//	uint16  canvas width, height
//	frame table, per frame:
//	    uint16  x, y, width, height (rect on the canvas)
//	    uint8   has anchor flag
//	    uint16  anchor x, y (frame-local; zero when the flag is clear)
//	    uint32  duration in milliseconds
//	canvas payload, repeated until width*height pixels are covered:
//	    uint16  transparent run length
//	    uint16  opaque run length
//	    4 bytes RGBA per opaque pixel
package spritefile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"time"

	"github.com/spriteforge/stitch"
)

const (
	// fileSignature encodes as "SPS1" on disk.
	fileSignature uint32 = 0x31535053

	fileVersion uint16 = 1

	// maxDim bounds canvas and frame dimensions; they are stored as uint16.
	maxDim = math.MaxUint16
)

var (
	// ErrBadSignature is returned when the input does not start with the
	// sprite file signature.
	ErrBadSignature = errors.New("spritefile: not a sprite file")

	// ErrBadVersion is returned when the format version is not supported.
	ErrBadVersion = errors.New("spritefile: unsupported version")

	// ErrCorrupt is returned when the frame table or payload contradicts
	// itself or the canvas dimensions.
	ErrCorrupt = errors.New("spritefile: corrupt data")

	// ErrTooLarge is returned on encode when a dimension or count does not
	// fit the format's 16-bit fields.
	ErrTooLarge = errors.New("spritefile: dimensions exceed format limits")
)

// Frame locates one animation frame on the canvas. The anchor is in
// frame-local coordinates, relative to the rect's top-left corner.
type Frame struct {
	Rect      image.Rectangle
	Anchor    image.Point
	HasAnchor bool
	Duration  time.Duration
}

// Sheet is a compiled sprite sheet: one packed canvas plus its frame table.
type Sheet struct {
	Canvas *stitch.Buffer
	Frames []Frame
}

// Sprite converts the sheet back into a sprite by copying each frame's
// region off the canvas. Durations are playback metadata and are not
// carried over.
func (s *Sheet) Sprite(name string) *stitch.Sprite {
	frames := make([]stitch.Frame, len(s.Frames))
	for i, f := range s.Frames {
		sub := s.Canvas.ToImage().SubImage(f.Rect).(*image.NRGBA)
		frames[i] = stitch.Frame{Buffer: stitch.FromImage(sub)}
		if f.HasAnchor {
			a := f.Anchor
			frames[i].Anchor = &a
		}
	}
	return stitch.NewSprite(name, frames...)
}

// header is the fixed-size file prefix.
type header struct {
	Signature  uint32
	Version    uint16
	FrameCount uint16
	CanvasW    uint16
	CanvasH    uint16
}

// frameRecord is one frame table entry on disk.
type frameRecord struct {
	X, Y, W, H uint16
	HasAnchor  uint8
	AnchorX    uint16
	AnchorY    uint16
	DurationMs uint32
}

// Encode writes the sheet to w in .sps format. A sheet with a nil canvas
// and no frames encodes as an empty file body that Decode restores as an
// empty sheet. Durations are stored with millisecond precision; values
// outside the uint32 millisecond range are clamped.
func Encode(w io.Writer, s *Sheet) error {
	var canvasW, canvasH int
	if s.Canvas != nil {
		canvasW, canvasH = s.Canvas.Width(), s.Canvas.Height()
	}
	if canvasW > maxDim || canvasH > maxDim {
		return fmt.Errorf("%w: canvas %dx%d", ErrTooLarge, canvasW, canvasH)
	}
	if len(s.Frames) > maxDim {
		return fmt.Errorf("%w: %d frames", ErrTooLarge, len(s.Frames))
	}
	if s.Canvas == nil && len(s.Frames) > 0 {
		return fmt.Errorf("%w: %d frames without a canvas", ErrCorrupt, len(s.Frames))
	}

	canvas := image.Rect(0, 0, canvasW, canvasH)
	for i, f := range s.Frames {
		if f.Rect.Empty() || !f.Rect.In(canvas) {
			return fmt.Errorf("%w: frame %d rect %v outside canvas %dx%d", ErrCorrupt, i, f.Rect, canvasW, canvasH)
		}
		if f.HasAnchor {
			if f.Anchor.X < 0 || f.Anchor.X >= f.Rect.Dx() || f.Anchor.Y < 0 || f.Anchor.Y >= f.Rect.Dy() {
				return fmt.Errorf("%w: frame %d anchor %v outside rect %v", ErrCorrupt, i, f.Anchor, f.Rect)
			}
		}
	}

	bw := bufio.NewWriter(w)

	h := header{
		Signature:  fileSignature,
		Version:    fileVersion,
		FrameCount: uint16(len(s.Frames)),
		CanvasW:    uint16(canvasW),
		CanvasH:    uint16(canvasH),
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("spritefile: write header: %w", err)
	}

	for i, f := range s.Frames {
		rec := frameRecord{
			X: uint16(f.Rect.Min.X), Y: uint16(f.Rect.Min.Y),
			W: uint16(f.Rect.Dx()), H: uint16(f.Rect.Dy()),
			DurationMs: durationMs(f.Duration),
		}
		if f.HasAnchor {
			rec.HasAnchor = 1
			rec.AnchorX = uint16(f.Anchor.X)
			rec.AnchorY = uint16(f.Anchor.Y)
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("spritefile: write frame %d: %w", i, err)
		}
	}

	if s.Canvas != nil {
		if err := encodePayload(bw, s.Canvas.Data()); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("spritefile: flush: %w", err)
	}
	return nil
}

// durationMs converts a duration to whole milliseconds, clamped to the
// uint32 range.
func durationMs(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := d / time.Millisecond
	if ms > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ms)
}

// encodePayload writes the canvas pixels as alternating transparent/opaque
// runs. Runs longer than a uint16 split into multiple records.
func encodePayload(bw *bufio.Writer, data []uint8) error {
	total := len(data) / 4
	var scratch [2]byte

	writeRun := func(n int) error {
		binary.LittleEndian.PutUint16(scratch[:], uint16(n))
		_, err := bw.Write(scratch[:])
		return err
	}

	i := 0
	for i < total {
		start := i
		for i < total && data[i*4+3] == 0 && i-start < maxDim {
			i++
		}
		if err := writeRun(i - start); err != nil {
			return fmt.Errorf("spritefile: write payload: %w", err)
		}

		start = i
		for i < total && data[i*4+3] != 0 && i-start < maxDim {
			i++
		}
		if err := writeRun(i - start); err != nil {
			return fmt.Errorf("spritefile: write payload: %w", err)
		}
		if _, err := bw.Write(data[start*4 : i*4]); err != nil {
			return fmt.Errorf("spritefile: write payload: %w", err)
		}
	}
	return nil
}

// Decode reads a sheet in .sps format from r.
func Decode(r io.Reader) (*Sheet, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("spritefile: read header: %w", err)
	}
	if h.Signature != fileSignature {
		return nil, fmt.Errorf("%w: signature %#x", ErrBadSignature, h.Signature)
	}
	if h.Version != fileVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadVersion, h.Version, fileVersion)
	}

	canvasW, canvasH := int(h.CanvasW), int(h.CanvasH)
	if canvasW == 0 || canvasH == 0 {
		if h.FrameCount != 0 {
			return nil, fmt.Errorf("%w: %d frames without a canvas", ErrCorrupt, h.FrameCount)
		}
		return &Sheet{}, nil
	}

	canvas := image.Rect(0, 0, canvasW, canvasH)
	frames := make([]Frame, h.FrameCount)
	for i := range frames {
		var rec frameRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("spritefile: read frame %d: %w", i, err)
		}

		rect := image.Rect(int(rec.X), int(rec.Y), int(rec.X)+int(rec.W), int(rec.Y)+int(rec.H))
		if rect.Empty() || !rect.In(canvas) {
			return nil, fmt.Errorf("%w: frame %d rect %v outside canvas %dx%d", ErrCorrupt, i, rect, canvasW, canvasH)
		}
		frames[i] = Frame{
			Rect:     rect,
			Duration: time.Duration(rec.DurationMs) * time.Millisecond,
		}
		if rec.HasAnchor != 0 {
			anchor := image.Pt(int(rec.AnchorX), int(rec.AnchorY))
			if anchor.X >= rect.Dx() || anchor.Y >= rect.Dy() {
				return nil, fmt.Errorf("%w: frame %d anchor %v outside rect %v", ErrCorrupt, i, anchor, rect)
			}
			frames[i].Anchor = anchor
			frames[i].HasAnchor = true
		}
	}

	buf, err := stitch.NewBuffer(canvasW, canvasH)
	if err != nil {
		return nil, fmt.Errorf("spritefile: canvas: %w", err)
	}
	if err := decodePayload(br, buf.Data()); err != nil {
		return nil, err
	}

	return &Sheet{Canvas: buf, Frames: frames}, nil
}

// decodePayload fills data from the alternating run records, enforcing that
// runs cover exactly the canvas pixel count.
func decodePayload(br *bufio.Reader, data []uint8) error {
	total := len(data) / 4
	var scratch [2]byte

	readRun := func() (int, error) {
		if _, err := io.ReadFull(br, scratch[:]); err != nil {
			return 0, fmt.Errorf("spritefile: read payload: %w", err)
		}
		return int(binary.LittleEndian.Uint16(scratch[:])), nil
	}

	i := 0
	for i < total {
		clear, err := readRun()
		if err != nil {
			return err
		}
		if clear > total-i {
			return fmt.Errorf("%w: transparent run %d exceeds remaining %d pixels", ErrCorrupt, clear, total-i)
		}
		i += clear

		opaque, err := readRun()
		if err != nil {
			return err
		}
		if opaque > total-i {
			return fmt.Errorf("%w: opaque run %d exceeds remaining %d pixels", ErrCorrupt, opaque, total-i)
		}
		if opaque > 0 {
			if _, err := io.ReadFull(br, data[i*4:(i+opaque)*4]); err != nil {
				return fmt.Errorf("spritefile: read payload: %w", err)
			}
			i += opaque
		}

		if clear == 0 && opaque == 0 {
			return fmt.Errorf("%w: empty run record with %d pixels remaining", ErrCorrupt, total-i)
		}
	}
	return nil
}

// WriteFile encodes the sheet into path, creating or truncating the file.
func WriteFile(path string, s *Sheet) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}

	if err := Encode(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the sheet stored at path.
func ReadFile(path string) (*Sheet, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return Decode(f)
}
