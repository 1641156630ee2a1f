package preview

import (
	"fmt"
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"

	"github.com/spriteforge/stitch"
)

// WriteTerm writes the buffer using the best raster protocol the
// terminal advertises: Kitty, then iTerm2/WezTerm, then Sixel. When
// none is available it falls back to WriteANSI.
//
// Sixel output is quantized to 64 colors first.
func WriteTerm(w io.Writer, b *stitch.Buffer) error {
	if b == nil {
		return fmt.Errorf("preview: %w: nil buffer", stitch.ErrInvalidDimensions)
	}
	img := b.ToImage()

	if rasterm.IsTermKitty() {
		if err := (rasterm.Settings{}).KittyWriteImage(w, img); err != nil {
			return fmt.Errorf("preview: kitty: %w", err)
		}
		fmt.Fprintln(w)
		return nil
	}
	if rasterm.IsTermItermWez() {
		if err := (rasterm.Settings{}).ItermWriteImage(w, img); err != nil {
			return fmt.Errorf("preview: iterm: %w", err)
		}
		fmt.Fprintln(w)
		return nil
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		pal := image.NewPaletted(img.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(pal, img.Bounds(), img, image.Point{})
		if err := (rasterm.Settings{}).SixelWriteImage(w, pal); err != nil {
			return fmt.Errorf("preview: sixel: %w", err)
		}
		fmt.Fprintln(w)
		return nil
	}

	return WriteANSI(w, b)
}
