package stitch

import (
	"fmt"
	"image"

	"github.com/spriteforge/stitch/internal/blend"
	"github.com/spriteforge/stitch/internal/parallel"
	"github.com/spriteforge/stitch/internal/scaler"
)

// Result holds the output of a stitch operation.
type Result struct {
	// Sprite contains the composited frames, one per base frame, each
	// keeping its base frame's anchor.
	Sprite *Sprite

	// Rects is the packing assignment the output frames would receive
	// from Pack: Rects[i] is where frame i lands on a packed sheet.
	Rects []image.Rectangle
}

// Stitch composites the overlay sprite onto every frame of the base sprite
// and returns the result as a new sprite. Base frame i receives overlay
// frame i modulo the overlay frame count, rotated, scaled and positioned by
// the placement for frame i. A single placement applies to all frames; any
// other placement count must match the base frame count.
//
// Overlay pixels falling outside the base frame are clipped silently.
// Neither input sprite is modified. All contract violations are reported
// before any frame is processed; Stitch never returns partial output.
func Stitch(base, overlay *Sprite, placements []Placement, opts ...Option) (*Result, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateSprite("base", base); err != nil {
		return nil, err
	}
	if err := validateSprite("overlay", overlay); err != nil {
		return nil, err
	}
	if err := validatePlacements(placements, len(base.Frames)); err != nil {
		return nil, err
	}

	n := len(base.Frames)
	frames := make([]Frame, n)
	errs := make([]error, n)

	tasks := make([]func(), n)
	for i := range tasks {
		i := i
		tasks[i] = func() {
			pl := placements[0]
			if len(placements) > 1 {
				pl = placements[i]
			}
			ov := overlay.Frames[i%len(overlay.Frames)]
			frames[i], errs[i] = composeFrame(base.Frames[i], ov, pl, cfg.variant)
		}
	}

	if cfg.workers == 1 || n == 1 {
		for _, task := range tasks {
			task()
		}
	} else {
		pool := parallel.NewPool(cfg.workers)
		pool.Run(tasks)
		pool.Close()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	rects, _, _ := planRects(frames)

	Logger().Info("stitched sprite",
		"base", base.Name,
		"overlay", overlay.Name,
		"frames", n,
		"variant", cfg.variant.String(),
	)

	return &Result{
		Sprite: NewSprite(base.Name, frames...),
		Rects:  rects,
	}, nil
}

// StitchFrame composites a single overlay frame onto every frame of the
// base sprite. It is shorthand for Stitch with a one-frame overlay sprite.
func StitchFrame(base *Sprite, overlay Frame, placements []Placement, opts ...Option) (*Result, error) {
	return Stitch(base, &Sprite{Name: "overlay", Frames: []Frame{overlay}}, placements, opts...)
}

// composeFrame builds one output frame: rotate the overlay, scale it,
// resolve its position from the anchors, and composite.
func composeFrame(base, overlay Frame, pl Placement, v Variant) (Frame, error) {
	rotated, err := Rotate(overlay.Buffer, pl.Angle, v)
	if err != nil {
		return Frame{}, err
	}
	anchor := RotatePoint(overlay.AnchorPoint(), overlay.Buffer.Width(), overlay.Buffer.Height(), pl.Angle)

	if f := pl.factor(); f != 1 {
		scaled, err := Scale(rotated, f)
		if err != nil {
			return Frame{}, err
		}
		ax, ay := scaler.ScalePoint(anchor.X, anchor.Y, f, scaled.Width(), scaled.Height())
		rotated, anchor = scaled, image.Pt(ax, ay)
	}

	topLeft := ResolveTopLeft(base.AnchorPoint(), anchor, pl.Offset)

	baseBuf := base.Buffer
	if topLeft.X+rotated.width <= 0 || topLeft.X >= baseBuf.width ||
		topLeft.Y+rotated.height <= 0 || topLeft.Y >= baseBuf.height {
		Logger().Warn("overlay fully clipped",
			"topLeft", topLeft,
			"overlay", fmt.Sprintf("%dx%d", rotated.width, rotated.height),
			"base", fmt.Sprintf("%dx%d", baseBuf.width, baseBuf.height),
		)
	}

	var out *Buffer
	if pl.Below {
		// Draw the overlay first on a transparent canvas, then the base
		// frame over it.
		out = &Buffer{
			width:  baseBuf.width,
			height: baseBuf.height,
			data:   make([]uint8, len(baseBuf.data)),
		}
		blend.SourceOver(out.data, out.width, out.height, rotated.data, rotated.width, rotated.height, topLeft.X, topLeft.Y)
		blend.SourceOver(out.data, out.width, out.height, baseBuf.data, baseBuf.width, baseBuf.height, 0, 0)
	} else {
		out = baseBuf.Clone()
		blend.SourceOver(out.data, out.width, out.height, rotated.data, rotated.width, rotated.height, topLeft.X, topLeft.Y)
	}

	result := Frame{Buffer: out}
	if base.Anchor != nil {
		a := *base.Anchor
		result.Anchor = &a
	}
	return result, nil
}

// validateSprite checks that a sprite has frames, every frame has a
// drawable buffer, and every declared anchor lies inside its frame.
func validateSprite(role string, s *Sprite) error {
	if s == nil || len(s.Frames) == 0 {
		return fmt.Errorf("%s: %w", role, ErrEmptySprite)
	}
	for i, f := range s.Frames {
		if f.Buffer == nil || f.Buffer.width <= 0 || f.Buffer.height <= 0 {
			return fmt.Errorf("%s frame %d: %w", role, i, ErrInvalidDimensions)
		}
		if a := f.Anchor; a != nil {
			if a.X < 0 || a.X >= f.Buffer.width || a.Y < 0 || a.Y >= f.Buffer.height {
				return fmt.Errorf("%s frame %d: anchor (%d, %d) outside %dx%d: %w",
					role, i, a.X, a.Y, f.Buffer.width, f.Buffer.height, ErrAnchorOutOfBounds)
			}
		}
	}
	return nil
}

// validatePlacements checks the placement count and every scale factor.
func validatePlacements(placements []Placement, frames int) error {
	if len(placements) != 1 && len(placements) != frames {
		return fmt.Errorf("%w: %d placements for %d frames", ErrPlacementLength, len(placements), frames)
	}
	for i, p := range placements {
		if p.Scale < 0 {
			return fmt.Errorf("placement %d: scale %g: %w", i, p.Scale, ErrInvalidDimensions)
		}
	}
	return nil
}
