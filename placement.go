package stitch

import (
	"fmt"
	"image"

	"github.com/spriteforge/stitch/internal/scaler"
)

// Placement describes how an overlay frame attaches to a base frame.
// The zero value is usable: no rotation, no offset, no scaling, overlay
// drawn on top.
type Placement struct {
	// Angle rotates the overlay counter-clockwise, in degrees.
	Angle float64

	// Offset shifts the overlay anchor away from the base anchor, in base
	// frame pixels.
	Offset image.Point

	// Scale resizes the overlay with nearest-neighbor sampling. Zero means
	// unscaled (factor 1.0).
	Scale float64

	// Below draws the overlay behind the base frame instead of on top.
	Below bool
}

// factor returns the effective scale factor.
func (p Placement) factor() float64 {
	if p.Scale == 0 {
		return 1
	}
	return p.Scale
}

// Scale resizes src by the given factor with nearest-neighbor sampling.
// The result is a new buffer of at least 1×1; src is never modified.
// Returns ErrInvalidDimensions when factor is not positive.
func Scale(src *Buffer, factor float64) (*Buffer, error) {
	if src == nil || src.width <= 0 || src.height <= 0 {
		return nil, fmt.Errorf("%w: scale source", ErrInvalidDimensions)
	}
	if factor <= 0 {
		return nil, fmt.Errorf("%w: scale factor %g", ErrInvalidDimensions, factor)
	}
	if factor == 1 {
		return src.Clone(), nil
	}

	out, ow, oh := scaler.Nearest(src.data, src.width, src.height, factor)
	return &Buffer{width: ow, height: oh, data: out}, nil
}

// ResolveTopLeft positions an overlay so its anchor lands on the base
// anchor shifted by the placement offset. The overlay anchor must already
// be transformed through the same rotation and scale applied to the
// overlay pixels; RotatePoint provides the rotation half of that.
func ResolveTopLeft(baseAnchor, overlayAnchor, offset image.Point) image.Point {
	return image.Pt(
		baseAnchor.X+offset.X-overlayAnchor.X,
		baseAnchor.Y+offset.Y-overlayAnchor.Y,
	)
}
