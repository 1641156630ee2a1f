// Package preview renders sprite buffers for quick human inspection:
// ANSI escapes, terminal raster protocols, and animated GIF export.
// UNSUPPORTED debug package.
//
// This package has an API with no stability guarantees.
package preview

import (
	"fmt"
	ic "image/color"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/spriteforge/stitch"
)

// WriteANSI writes the buffer as colored text, two characters per pixel,
// using 24-bit background color escapes. Zero-alpha pixels are left
// uncolored.
func WriteANSI(w io.Writer, b *stitch.Buffer) error {
	if b == nil {
		return fmt.Errorf("preview: %w: nil buffer", stitch.ErrInvalidDimensions)
	}

	var row strings.Builder
	for y := 0; y < b.Height(); y++ {
		row.Reset()
		for x := 0; x < b.Width(); x++ {
			c := b.Get(x, y)
			if c.A == 0 {
				row.WriteString("\x1b[0m  ")
				continue
			}
			fmt.Fprintf(&row, "\x1b[48;2;%d;%d;%dm  \x1b[0m", c.R, c.G, c.B)
		}
		row.WriteString("\x1b[0m\n")
		if _, err := io.WriteString(w, row.String()); err != nil {
			return fmt.Errorf("preview: write row %d: %w", y, err)
		}
	}
	return nil
}

// WriteShaded writes the buffer as colored text with a luminance ramp,
// two characters per pixel. Rendering goes through gookit/color, which
// degrades to the nearest 256-color palette entry on terminals without
// true color support.
func WriteShaded(w io.Writer, b *stitch.Buffer) error {
	if b == nil {
		return fmt.Errorf("preview: %w: nil buffer", stitch.ErrInvalidDimensions)
	}

	var row strings.Builder
	for y := 0; y < b.Height(); y++ {
		row.Reset()
		for x := 0; x < b.Width(); x++ {
			c := b.Get(x, y)
			if c.A == 0 {
				row.WriteString("  ")
				continue
			}
			row.WriteString(color.RGB(c.R, c.G, c.B, true).Sprint(shadeChars(c)))
		}
		row.WriteString("\n")
		if _, err := io.WriteString(w, row.String()); err != nil {
			return fmt.Errorf("preview: write row %d: %w", y, err)
		}
	}
	return nil
}

// shadeChars maps pixel luminance to a two-character ramp.
func shadeChars(c ic.NRGBA) string {
	lum := (int(c.R) + int(c.G) + int(c.B)) / 3
	switch {
	case lum < 32:
		return ".."
	case lum < 64:
		return "--"
	case lum < 128:
		return "=="
	default:
		return "##"
	}
}
