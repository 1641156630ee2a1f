// Command stitchc compiles a stitch manifest into a sprite sheet.
//
// The manifest names a base animation, an overlay sprite and how the
// overlay is placed on each frame. stitchc stitches them, packs the
// result into a sheet and writes a .sps file, with optional PNG and
// animated GIF exports:
//
//	stitchc -manifest hero-sword.toml -v
//	stitchc -manifest hero-sword.toml -png sheet.png -gif preview.gif
//
// The -png and -gif flags override the [output] section of the
// manifest; their paths are taken as written rather than resolved
// against the manifest directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // register BMP decoding for LoadImage

	"github.com/spriteforge/stitch"
	"github.com/spriteforge/stitch/preview"
	"github.com/spriteforge/stitch/spritefile"
)

func main() {
	var (
		manifestPath = flag.String("manifest", "stitch.toml", "build manifest")
		pngPath      = flag.String("png", "", "also write the packed sheet as PNG")
		gifPath      = flag.String("gif", "", "also write an animated GIF preview")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	stitch.SetLogger(logger)

	if err := run(*manifestPath, *pngPath, *gifPath); err != nil {
		log.Fatalf("stitchc: %v", err)
	}
}

func run(manifestPath, pngOverride, gifOverride string) error {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(manifestPath)

	base, durations, err := m.loadBase(dir)
	if err != nil {
		return err
	}
	overlay, err := m.loadOverlay(dir)
	if err != nil {
		return err
	}
	placements, err := m.placements()
	if err != nil {
		return err
	}
	variant, err := m.variant()
	if err != nil {
		return err
	}

	res, err := stitch.Stitch(base, overlay, placements,
		stitch.WithVariant(variant), stitch.WithWorkers(m.Output.Workers))
	if err != nil {
		return err
	}

	packed, err := stitch.Pack(res.Sprite.Frames)
	if err != nil {
		return err
	}

	out := &spritefile.Sheet{Canvas: packed.Canvas}
	for i, f := range res.Sprite.Frames {
		rec := spritefile.Frame{Rect: packed.Rects[i], Duration: durations[i]}
		if f.Anchor != nil {
			rec.Anchor = *f.Anchor
			rec.HasAnchor = true
		}
		out.Frames = append(out.Frames, rec)
	}

	sheetPath := resolvePath(dir, m.sheetPath())
	if err := spritefile.WriteFile(sheetPath, out); err != nil {
		return err
	}
	slog.Info("wrote sprite sheet",
		"path", sheetPath,
		"frames", len(out.Frames),
		"canvas", fmt.Sprintf("%dx%d", packed.Canvas.Width(), packed.Canvas.Height()))

	pngPath := pngOverride
	if pngPath == "" && m.Output.PNG != "" {
		pngPath = resolvePath(dir, m.Output.PNG)
	}
	if pngPath != "" {
		if err := packed.Canvas.SavePNG(pngPath); err != nil {
			return err
		}
		slog.Info("wrote sheet PNG", "path", pngPath)
	}

	gifPath := gifOverride
	if gifPath == "" && m.Output.GIF != "" {
		gifPath = resolvePath(dir, m.Output.GIF)
	}
	if gifPath != "" {
		if err := writeGIF(gifPath, out); err != nil {
			return err
		}
		slog.Info("wrote preview GIF", "path", gifPath)
	}
	return nil
}

func writeGIF(path string, sheet *spritefile.Sheet) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the manifest
	if err != nil {
		return err
	}
	if err := preview.EncodeGIF(f, sheet); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
