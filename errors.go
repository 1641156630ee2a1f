package stitch

import "errors"

var (
	// ErrInvalidDimensions is returned when a width, height or scale factor
	// is zero or negative.
	ErrInvalidDimensions = errors.New("stitch: invalid dimensions")

	// ErrPlacementLength is returned when the number of placements is
	// neither one nor the base sprite's frame count.
	ErrPlacementLength = errors.New("stitch: placement count does not match frame count")

	// ErrAnchorOutOfBounds is returned when a frame declares an anchor
	// outside its own bounds.
	ErrAnchorOutOfBounds = errors.New("stitch: anchor out of bounds")

	// ErrEmptySprite is returned when a sprite has no frames.
	ErrEmptySprite = errors.New("stitch: sprite has no frames")
)
