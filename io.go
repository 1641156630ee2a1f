package stitch

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// LoadPNG loads a PNG file into a new buffer.
func LoadPNG(path string) (*Buffer, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// LoadImage loads an image file into a new buffer, detecting the format
// from its contents. Decoders are picked up from registered image formats;
// importing image/png, image/gif or golang.org/x/image/bmp enables the
// corresponding format.
func LoadImage(path string) (*Buffer, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}
