package manifest

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"wpmeta/internal/localized"
)

// DefaultFileName is the manifest file looked up in every directory.
const DefaultFileName = "metadata.toml"

// Manifest is one decoded metadata.toml.
type Manifest struct {
	Authors    []Author
	Wallpapers []Wallpaper

	// UnknownKeys holds dotted keys the schema does not recognize.
	UnknownKeys []string
}

// Author is a wallpaper author. Authors declared in a directory are visible
// to wallpapers in that directory and every descendant.
type Author struct {
	Email string
	Name  localized.Localized[string]
}

// Wallpaper is a raw wallpaper entry as written in the manifest.
type Wallpaper struct {
	ID           string
	Path         PathSpec
	Title        localized.Localized[string]
	License      string
	Option       PictureOption
	ShadeType    Shading
	PrimaryColor *Color

	// AccentColor also accepts the older secondary_color key.
	AccentColor     *Color
	DarkAccentColor *Color
}

// PathSpec is either a single relative path or a list of relative paths.
type PathSpec struct {
	paths    []string
	multiple bool
}

// SinglePath builds a PathSpec holding one file.
func SinglePath(path string) PathSpec {
	return PathSpec{paths: []string{path}}
}

// MultiplePaths builds a PathSpec holding a list of files.
func MultiplePaths(paths ...string) PathSpec {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return PathSpec{paths: cp, multiple: true}
}

// Paths returns the relative paths in declaration order.
func (p PathSpec) Paths() []string {
	cp := make([]string, len(p.paths))
	copy(cp, p.paths)
	return cp
}

// Multiple reports whether the spec was written as a list.
func (p PathSpec) Multiple() bool { return p.multiple }

// PictureOption is how a desktop renders the wallpaper.
type PictureOption string

const (
	PictureNone      PictureOption = "none"
	PictureWallpaper PictureOption = "wallpaper"
	PictureCentered  PictureOption = "centered"
	PictureScaled    PictureOption = "scaled"
	PictureStretched PictureOption = "stretched"
	PictureZoom      PictureOption = "zoom"
	PictureSpanned   PictureOption = "spanned"
)

var pictureOptions = []PictureOption{
	PictureNone, PictureWallpaper, PictureCentered, PictureScaled,
	PictureStretched, PictureZoom, PictureSpanned,
}

// UnmarshalText accepts the lowercase option names.
func (o *PictureOption) UnmarshalText(text []byte) error {
	value := PictureOption(strings.ToLower(strings.TrimSpace(string(text))))
	for _, known := range pictureOptions {
		if value == known {
			*o = value
			return nil
		}
	}
	return fmt.Errorf("unknown picture option %q", string(text))
}

func (o PictureOption) String() string { return string(o) }

// Shading is how primary and secondary colors fill the background.
type Shading string

const (
	ShadingHorizontal Shading = "horizontal"
	ShadingVertical   Shading = "vertical"
	ShadingSolid      Shading = "solid"
)

// UnmarshalText accepts the lowercase shading names.
func (s *Shading) UnmarshalText(text []byte) error {
	switch value := Shading(strings.ToLower(strings.TrimSpace(string(text)))); value {
	case ShadingHorizontal, ShadingVertical, ShadingSolid:
		*s = value
		return nil
	}
	return fmt.Errorf("unknown shade type %q", string(text))
}

func (s Shading) String() string { return string(s) }

// Color is an sRGB color written as "#RRGGBB" in manifests.
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#RRGGBB" (case-insensitive).
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// MustColor is ParseColor for package-level defaults.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Hex renders the color as uppercase "#RRGGBB".
func (c Color) Hex() string {
	return strings.ToUpper(colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex())
}

func (c Color) String() string { return c.Hex() }
