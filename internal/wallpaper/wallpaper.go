package wallpaper

import (
	"fmt"
	"path"
	"strings"

	"wpmeta/internal/localized"
	"wpmeta/internal/manifest"
	"wpmeta/internal/staging"
)

// Variant distinguishes light and dark renderings of one wallpaper.
type Variant int

const (
	Normal Variant = iota
	Dark
)

func (v Variant) String() string {
	if v == Dark {
		return "dark"
	}
	return "normal"
}

// ImagesDir is the staging subdirectory for the variant.
func (v Variant) ImagesDir() string {
	if v == Dark {
		return staging.DarkImagesDir
	}
	return staging.NormalImagesDir
}

// Resolution is an image size in pixels.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Pixels is Width*Height.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// Format is the decoded container format as reported by image.DecodeConfig.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Extension returns the canonical lowercase file extension without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return strings.ToLower(string(f))
}

// File is one staged image of a wallpaper.
type File struct {
	// Path is the absolute staged location.
	Path string
	// RelPath is Path relative to the staging root, slash-separated.
	RelPath string
	// Source is the absolute path the file was copied from.
	Source     string
	Resolution Resolution
	Format     Format
	Variant    Variant
}

// Wallpaper is a normalized, staged wallpaper. It is not modified after
// Normalize returns.
type Wallpaper struct {
	ID              string
	License         string
	Authors         []manifest.Author
	Title           localized.Localized[string]
	Files           []File
	Option          manifest.PictureOption
	Shading         manifest.Shading
	PrimaryColor    *manifest.Color
	AccentColor     *manifest.Color
	DarkAccentColor *manifest.Color
	SourceDir       string
}

// Accent returns the accent color declared for variant v. Dark falls back
// to the normal accent.
func (w *Wallpaper) Accent(v Variant) *manifest.Color {
	if v == Dark && w.DarkAccentColor != nil {
		return w.DarkAccentColor
	}
	return w.AccentColor
}

// FilesOf returns the files of one variant in declaration order.
func (w *Wallpaper) FilesOf(v Variant) []File {
	var out []File
	for _, f := range w.Files {
		if f.Variant == v {
			out = append(out, f)
		}
	}
	return out
}

// HasVariant reports whether at least one file of v exists.
func (w *Wallpaper) HasVariant(v Variant) bool {
	for _, f := range w.Files {
		if f.Variant == v {
			return true
		}
	}
	return false
}

// Largest returns the file of v with the most pixels.
func (w *Wallpaper) Largest(v Variant) (File, bool) {
	var best File
	found := false
	for _, f := range w.Files {
		if f.Variant != v {
			continue
		}
		if !found || f.Resolution.Pixels() > best.Resolution.Pixels() {
			best = f
			found = true
		}
	}
	return best, found
}

// WallpaperBase is the slash-separated staging path of wallpaper id
// relative to the staging root.
func WallpaperBase(id string) string {
	return path.Join(staging.WallpapersDir, id)
}

// StagePath returns the slash-separated location, relative to the staging
// root, of a file with the given properties.
func StagePath(id string, v Variant, res Resolution, format Format) string {
	return path.Join(WallpaperBase(id), staging.ContentsDir, v.ImagesDir(), res.String()+"."+format.Extension())
}
