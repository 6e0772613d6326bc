package testsupport

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteManifest writes a metadata.toml into dir.
func WriteManifest(t testing.TB, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "metadata.toml")
	WriteFile(t, path, []byte(content))
	return path
}

// solid is a uniform image with finite bounds that needs no pixel buffer.
type solid struct {
	w, h int
	c    color.Color
}

func (s solid) ColorModel() color.Model { return color.RGBAModel }

func (s solid) Bounds() image.Rectangle { return image.Rect(0, 0, s.w, s.h) }

func (s solid) At(int, int) color.Color { return s.c }

// WriteImage encodes a solid-color image of the given size. format is one of
// jpeg, png, gif, bmp or tiff.
func WriteImage(t testing.TB, path string, width, height int, format string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	img := solid{w: width, h: height, c: color.RGBA{R: 2, G: 60, B: 136, A: 255}}
	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 80})
	case "png":
		err = png.Encode(f, img)
	case "gif":
		err = gif.Encode(f, img, nil)
	case "bmp":
		err = bmp.Encode(f, img)
	case "tiff":
		err = tiff.Encode(f, img, nil)
	default:
		t.Fatalf("unsupported test image format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
