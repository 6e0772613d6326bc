package generate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"wpmeta/internal/manifest"
	"wpmeta/internal/wallpaper"
)

// Generator writes the metadata of one desktop environment for a wallpaper.
type Generator interface {
	Name() string
	Generate(ctx context.Context, stagingRoot string, wp *wallpaper.Wallpaper) error
}

// Options carries the settings shared by the built-in generators.
type Options struct {
	// PrimaryColor and SecondaryColor apply to wallpapers that declare no
	// colors of their own.
	PrimaryColor   manifest.Color
	SecondaryColor manifest.Color
	// PreviewWidth and PreviewHeight bound the KDE screenshot.
	PreviewWidth  int
	PreviewHeight int
	Logger        *slog.Logger
}

// Names lists the built-in generators in the order they run.
func Names() []string {
	return []string{GnomeName, KDEName}
}

// New returns the built-in generator called name.
func New(name string, opts Options) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case GnomeName:
		return NewGnome(opts), nil
	case KDEName:
		return NewKDE(opts), nil
	default:
		return nil, fmt.Errorf("unknown generator %q (known: %s)", name, strings.Join(Names(), ", "))
	}
}

// Select builds the generators named in names, skipping repeats.
func Select(names []string, opts Options) ([]Generator, error) {
	seen := make([]string, 0, len(names))
	out := make([]Generator, 0, len(names))
	for _, name := range names {
		gen, err := New(name, opts)
		if err != nil {
			return nil, err
		}
		if slices.Contains(seen, gen.Name()) {
			continue
		}
		seen = append(seen, gen.Name())
		out = append(out, gen)
	}
	return out, nil
}

func colorsFor(wp *wallpaper.Wallpaper, opts Options) (manifest.Color, manifest.Color) {
	primary, secondary := opts.PrimaryColor, opts.SecondaryColor
	if wp.PrimaryColor != nil {
		primary = *wp.PrimaryColor
	}
	if accent := wp.Accent(wallpaper.Normal); accent != nil {
		secondary = *accent
	}
	return primary, secondary
}
