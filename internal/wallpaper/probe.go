package wallpaper

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Probe reports the size and container format of the image at path. The
// whole image is decoded so truncated or corrupt files are rejected.
func Probe(path string) (Resolution, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Resolution{}, "", err
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Resolution{}, "", fmt.Errorf("unrecognized image format: %w", err)
		}
		return Resolution{}, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Resolution{}, "", fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Resolution{}, "", fmt.Errorf("rewind image: %w", err)
	}
	if _, _, err := image.Decode(f); err != nil {
		return Resolution{}, "", fmt.Errorf("decode image: %w", err)
	}
	return Resolution{Width: cfg.Width, Height: cfg.Height}, Format(name), nil
}
