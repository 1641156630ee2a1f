package preview

import (
	"fmt"

	"github.com/nfnt/resize"

	"github.com/spriteforge/stitch"
)

// Zoom scales the buffer up by a whole-number factor with
// nearest-neighbor sampling, keeping pixel edges crisp. A factor of 1
// returns an independent copy.
func Zoom(b *stitch.Buffer, factor int) (*stitch.Buffer, error) {
	if b == nil {
		return nil, fmt.Errorf("preview: %w: nil buffer", stitch.ErrInvalidDimensions)
	}
	if factor <= 0 {
		return nil, fmt.Errorf("preview: %w: zoom factor %d", stitch.ErrInvalidDimensions, factor)
	}
	if factor == 1 {
		return b.Clone(), nil
	}

	img := resize.Resize(
		uint(b.Width()*factor), uint(b.Height()*factor),
		b.ToImage(), resize.NearestNeighbor,
	)
	return stitch.FromImage(img), nil
}
