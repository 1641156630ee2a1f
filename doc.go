// Package stitch rotates and composites pixel-art sprites.
//
// # Overview
//
// stitch is a pure Go engine for attaching one animated sprite to another:
// a weapon onto a character, a hat onto a walk cycle, an effect onto a prop.
// For every frame of the base animation it rotates an overlay frame, scales
// it, anchors it, and composites the pair into a new frame. The rotation
// paths are built for pixel art: a quality mode that upscales, rotates and
// downsamples without inventing colors, and a fast nearest-neighbor mode for
// previews and live use.
//
// # Quick Start
//
//	import "github.com/spriteforge/stitch"
//
//	body, _ := stitch.LoadPNG("body.png")
//	sword, _ := stitch.LoadPNG("sword.png")
//
//	base := stitch.NewSprite("hero", stitch.Frame{Buffer: body})
//	arm := stitch.NewSprite("sword", stitch.Frame{Buffer: sword})
//
//	res, err := stitch.Stitch(base, arm, []stitch.Placement{
//		{Angle: 45, Offset: image.Pt(2, -3)},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	res.Sprite.Frames[0].Buffer.SavePNG("hero_sword.png")
//
// # Coordinate System
//
// Uses standard raster coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in degrees, positive rotates counter-clockwise
//
// # Rotation Variants
//
// HighQuality doubles the image three times with a palette-preserving
// scaler, rotates the enlarged copy and reduces it back with a majority
// filter. The
// output never contains a color absent from the input. Fast maps each output
// pixel straight back to its source and is an order of magnitude quicker.
// Quarter turns (0, 90, 180, 270 degrees) are exact pixel permutations in
// both variants.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Buffer, Sprite, Frame, Placement, Stitch, Pack
//   - Internal: scaler (resampling), blend (compositing), parallel (workers)
//   - Companions: spritefile (sheet format), playback (timing), preview (terminal)
package stitch

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
