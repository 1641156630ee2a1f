package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"time"

	"github.com/andybons/gogif"

	"github.com/spriteforge/stitch/playback"
	"github.com/spriteforge/stitch/spritefile"
)

// ErrEmptySheet is returned by EncodeGIF for a sheet with no canvas or
// no frames.
var ErrEmptySheet = errors.New("preview: sheet has no frames")

// EncodeGIF writes the sheet's frames as a looping animated GIF. Each
// frame is quantized to 255 colors; palette index 0 is reserved for
// transparency so stitched sprites keep their cutout background. Frames
// are drawn top-left aligned on a canvas sized to the largest frame.
//
// Frame durations come from the sheet, rounded to GIF's 10ms ticks,
// with zero-duration frames shown for playback.DefaultFrameDuration.
func EncodeGIF(w io.Writer, sheet *spritefile.Sheet) error {
	if sheet == nil || sheet.Canvas == nil || len(sheet.Frames) == 0 {
		return ErrEmptySheet
	}
	canvas := sheet.Canvas.ToImage()

	g := gif.GIF{}
	g.BackgroundIndex = 0 // palette slot 0 is color.Transparent
	quantizer := gogif.MedianCutQuantizer{NumColor: 255} // one slot kept for transparency

	for _, f := range sheet.Frames {
		src := canvas.SubImage(f.Rect)
		cell := image.Rect(0, 0, f.Rect.Dx(), f.Rect.Dy())

		pal := image.NewPaletted(cell, nil)
		quantizer.Quantize(pal, cell, src, f.Rect.Min)

		// The quantizer already copied the pixels, but its palette has
		// no transparent entry. Redraw into a palette with transparency
		// at index 0 so empty pixels resolve to it.
		framed := image.NewPaletted(cell, append(color.Palette{color.Transparent}, pal.Palette...))
		draw.Draw(framed, cell, src, f.Rect.Min, draw.Over)

		g.Image = append(g.Image, framed)
		g.Delay = append(g.Delay, delayCentiseconds(f.Duration))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)

		if cell.Dx() > g.Config.Width {
			g.Config.Width = cell.Dx()
		}
		if cell.Dy() > g.Config.Height {
			g.Config.Height = cell.Dy()
		}
	}

	if err := gif.EncodeAll(w, &g); err != nil {
		return fmt.Errorf("preview: encode gif: %w", err)
	}
	return nil
}

// delayCentiseconds converts a frame duration to GIF delay units.
func delayCentiseconds(d time.Duration) int {
	if d <= 0 {
		d = playback.DefaultFrameDuration
	}
	return int(d / (10 * time.Millisecond))
}
