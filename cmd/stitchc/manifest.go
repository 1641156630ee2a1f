package main

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/spriteforge/stitch"
)

// manifest is the TOML build file for one stitched sprite:
//
//	name = "hero-sword"
//
//	[base]
//	image = "hero.png"
//	frame_width = 32
//	frame_height = 32
//	anchor = [16, 16]
//
//	[[base.frames]]
//	index = 2
//	anchor = [15, 17]
//	duration_ms = 150
//
//	[overlay]
//	image = "sword.png"
//	anchor = [4, 28]
//
//	[[placement]]
//	angle = 45.0
//	offset = [2, -1]
//
//	[output]
//	sheet = "hero-sword.sps"
//	gif = "hero-sword.gif"
//
// Image paths are resolved relative to the manifest file.
type manifest struct {
	Name       string             `toml:"name"`
	Base       baseSection        `toml:"base"`
	Overlay    overlaySection     `toml:"overlay"`
	Placements []placementSection `toml:"placement"`
	Output     outputSection      `toml:"output"`
}

type baseSection struct {
	Image       string         `toml:"image"`
	FrameWidth  int            `toml:"frame_width"`
	FrameHeight int            `toml:"frame_height"`
	Anchor      []int          `toml:"anchor"`
	Frames      []frameSection `toml:"frames"`
}

// frameSection overrides the anchor or duration of a single base frame.
type frameSection struct {
	Index      int   `toml:"index"`
	Anchor     []int `toml:"anchor"`
	DurationMs int   `toml:"duration_ms"`
}

type overlaySection struct {
	Image       string `toml:"image"`
	FrameWidth  int    `toml:"frame_width"`
	FrameHeight int    `toml:"frame_height"`
	Anchor      []int  `toml:"anchor"`
}

type placementSection struct {
	Angle  float64 `toml:"angle"`
	Offset []int   `toml:"offset"`
	Scale  float64 `toml:"scale"`
	Below  bool    `toml:"below"`
}

type outputSection struct {
	Sheet             string `toml:"sheet"`
	PNG               string `toml:"png"`
	GIF               string `toml:"gif"`
	Variant           string `toml:"variant"`
	Workers           int    `toml:"workers"`
	DefaultDurationMs int    `toml:"default_duration_ms"`
}

func loadManifest(path string) (*manifest, error) {
	var m manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if un := md.Undecoded(); len(un) > 0 {
		keys := make([]string, len(un))
		for i, k := range un {
			keys[i] = k.String()
		}
		stitch.Logger().Warn("ignoring unknown manifest keys",
			"path", path, "keys", strings.Join(keys, ", "))
	}

	if m.Base.Image == "" {
		return nil, fmt.Errorf("%s: [base] image is required", path)
	}
	if m.Overlay.Image == "" {
		return nil, fmt.Errorf("%s: [overlay] image is required", path)
	}
	if len(m.Placements) == 0 {
		return nil, fmt.Errorf("%s: at least one [[placement]] is required", path)
	}
	return &m, nil
}

// loadBase reads the base sheet, slices it into frames and applies the
// manifest's anchors and durations.
func (m *manifest) loadBase(dir string) (*stitch.Sprite, []time.Duration, error) {
	sheet, err := stitch.LoadImage(resolvePath(dir, m.Base.Image))
	if err != nil {
		return nil, nil, fmt.Errorf("[base] image: %w", err)
	}

	name := m.Name
	if name == "" {
		name = stemOf(m.Base.Image)
	}

	fw, fh := m.Base.FrameWidth, m.Base.FrameHeight
	if fw == 0 && fh == 0 {
		fw, fh = sheet.Width(), sheet.Height()
	}
	sprite, err := stitch.SpriteFromSheet(name, sheet, fw, fh)
	if err != nil {
		return nil, nil, fmt.Errorf("[base] grid %dx%d: %w", fw, fh, err)
	}

	anchor, err := anchorPoint(m.Base.Anchor, "[base]")
	if err != nil {
		return nil, nil, err
	}
	if anchor != nil {
		for i := range sprite.Frames {
			p := *anchor
			sprite.Frames[i].Anchor = &p
		}
	}

	durations := make([]time.Duration, len(sprite.Frames))
	if m.Output.DefaultDurationMs > 0 {
		for i := range durations {
			durations[i] = time.Duration(m.Output.DefaultDurationMs) * time.Millisecond
		}
	}

	for i, f := range m.Base.Frames {
		if f.Index < 0 || f.Index >= len(sprite.Frames) {
			return nil, nil, fmt.Errorf("[[base.frames]] %d: index %d out of range (sheet has %d frames)",
				i, f.Index, len(sprite.Frames))
		}
		p, err := anchorPoint(f.Anchor, fmt.Sprintf("[[base.frames]] %d", i))
		if err != nil {
			return nil, nil, err
		}
		if p != nil {
			sprite.Frames[f.Index].Anchor = p
		}
		if f.DurationMs < 0 {
			return nil, nil, fmt.Errorf("[[base.frames]] %d: negative duration_ms %d", i, f.DurationMs)
		}
		if f.DurationMs > 0 {
			durations[f.Index] = time.Duration(f.DurationMs) * time.Millisecond
		}
	}
	return sprite, durations, nil
}

// loadOverlay reads the overlay image, optionally sliced by a frame grid.
func (m *manifest) loadOverlay(dir string) (*stitch.Sprite, error) {
	buf, err := stitch.LoadImage(resolvePath(dir, m.Overlay.Image))
	if err != nil {
		return nil, fmt.Errorf("[overlay] image: %w", err)
	}

	fw, fh := m.Overlay.FrameWidth, m.Overlay.FrameHeight
	if fw == 0 && fh == 0 {
		fw, fh = buf.Width(), buf.Height()
	}
	sprite, err := stitch.SpriteFromSheet(stemOf(m.Overlay.Image), buf, fw, fh)
	if err != nil {
		return nil, fmt.Errorf("[overlay] grid %dx%d: %w", fw, fh, err)
	}

	anchor, err := anchorPoint(m.Overlay.Anchor, "[overlay]")
	if err != nil {
		return nil, err
	}
	if anchor != nil {
		for i := range sprite.Frames {
			p := *anchor
			sprite.Frames[i].Anchor = &p
		}
	}
	return sprite, nil
}

func (m *manifest) placements() ([]stitch.Placement, error) {
	out := make([]stitch.Placement, len(m.Placements))
	for i, p := range m.Placements {
		if p.Scale < 0 {
			return nil, fmt.Errorf("[[placement]] %d: negative scale %g", i, p.Scale)
		}
		var offset image.Point
		if len(p.Offset) != 0 {
			if len(p.Offset) != 2 {
				return nil, fmt.Errorf("[[placement]] %d: offset wants [x, y], got %d values", i, len(p.Offset))
			}
			offset = image.Pt(p.Offset[0], p.Offset[1])
		}
		out[i] = stitch.Placement{Angle: p.Angle, Offset: offset, Scale: p.Scale, Below: p.Below}
	}
	return out, nil
}

func (m *manifest) variant() (stitch.Variant, error) {
	switch m.Output.Variant {
	case "", "quality":
		return stitch.HighQuality, nil
	case "fast":
		return stitch.Fast, nil
	default:
		return 0, fmt.Errorf("[output] variant %q: want %q or %q", m.Output.Variant, "quality", "fast")
	}
}

// sheetPath returns the .sps output path, defaulting to the sprite name.
func (m *manifest) sheetPath() string {
	if m.Output.Sheet != "" {
		return m.Output.Sheet
	}
	if m.Name != "" {
		return m.Name + ".sps"
	}
	return stemOf(m.Base.Image) + ".sps"
}

func anchorPoint(vals []int, field string) (*image.Point, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("%s: anchor wants [x, y], got %d values", field, len(vals))
	}
	p := image.Pt(vals[0], vals[1])
	return &p, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// stemOf returns the file name without directory or extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
