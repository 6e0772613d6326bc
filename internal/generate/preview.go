package generate

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"golang.org/x/image/draw"

	"wpmeta/internal/fileutil"
)

const previewQuality = 90

// WritePreview decodes src and writes a JPEG to dst scaled to fit inside
// maxWidth x maxHeight with the aspect ratio kept. Images already inside the
// box are re-encoded at their own size.
func WritePreview(src, dst string, maxWidth, maxHeight int) error {
	if maxWidth <= 0 || maxHeight <= 0 {
		return fmt.Errorf("invalid preview bounds %dx%d", maxWidth, maxHeight)
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open preview source: %w", err)
	}
	img, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("decode preview source: %w", err)
	}

	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	dstImg := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dstImg, dstImg.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dstImg, &jpeg.Options{Quality: previewQuality}); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return fileutil.WriteFileAtomic(dst, buf.Bytes(), 0o644)
}

// FitWithin scales w x h down so it fits inside maxW x maxH, keeping the
// aspect ratio. Sizes already inside the box are returned unchanged. Each
// side is at least one pixel.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// compare w/maxW against h/maxH without floating point
	var nw, nh int
	if w*maxH >= h*maxW {
		nw = maxW
		nh = h * maxW / w
	} else {
		nh = maxH
		nw = w * maxH / h
	}
	return max(nw, 1), max(nh, 1)
}
