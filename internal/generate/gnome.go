package generate

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"wpmeta/internal/faults"
	"wpmeta/internal/fileutil"
	"wpmeta/internal/localized"
	"wpmeta/internal/logging"
	"wpmeta/internal/staging"
	"wpmeta/internal/wallpaper"
)

const (
	GnomeName = "gnome"

	// GnomeListFileName is the multi-resolution list written next to the
	// images of a variant that has more than one file.
	GnomeListFileName = "gnome-list.xml"
)

var gnomeTemplates = template.Must(template.New("gnome").Funcs(template.FuncMap{
	"xml": escapeXML,
}).Parse(`{{define "properties"}}<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE wallpapers SYSTEM "gnome-wp-list.dtd">
<wallpapers>
    <wallpaper deleted="false">{{if .HasDefault}}
    <name>{{xml .DefaultName}}</name>{{end}}{{range .Names}}
    <name xml:lang="{{xml .Key}}">{{xml .Value}}</name>{{end}}{{if .Filename}}
    <filename>/{{xml .Filename}}</filename>{{end}}{{if .FilenameDark}}
    <filename-dark>/{{xml .FilenameDark}}</filename-dark>{{end}}
    <options>{{.Options}}</options>
    <shade_type>{{.ShadeType}}</shade_type>
    <pcolor>{{.PrimaryColor}}</pcolor>
    <scolor>{{.SecondaryColor}}</scolor>
    </wallpaper>
</wallpapers>{{end}}{{define "list"}}<background>
    <static>
        <duration>8640000.0</duration>
        <file>{{range .}}
            <size width="{{.Resolution.Width}}" height="{{.Resolution.Height}}">/{{xml .RelPath}}</size>{{end}}
        </file>
    </static>
</background>{{end}}`))

type gnomeProperties struct {
	HasDefault     bool
	DefaultName    string
	Names          []localized.Entry[string]
	Filename       string
	FilenameDark   string
	Options        string
	ShadeType      string
	PrimaryColor   string
	SecondaryColor string
}

// Gnome writes gnome-background-properties lists.
type Gnome struct {
	opts   Options
	logger *slog.Logger
}

// NewGnome returns the GNOME generator.
func NewGnome(opts Options) *Gnome {
	return &Gnome{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "generate.gnome"),
	}
}

func (g *Gnome) Name() string { return GnomeName }

// Generate writes usr/share/gnome-background-properties/<id>.xml and, for
// each variant with several resolutions, a gnome-list.xml the properties
// file points to instead of a single image.
func (g *Gnome) Generate(ctx context.Context, stagingRoot string, wp *wallpaper.Wallpaper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := logging.WithContext(ctx, g.logger).With(logging.String(logging.FieldWallpaperID, wp.ID))
	logger.Info("generating GNOME background properties")

	normal, err := g.variantFile(stagingRoot, wp, wallpaper.Normal, logger)
	if err != nil {
		return err
	}
	if normal == "" {
		logging.WarnWithContext(logger, "no normal wallpaper found", "gnome_missing_normal",
			logging.String(logging.FieldImpact, "background properties carry no filename entry"),
		)
	}
	dark, err := g.variantFile(stagingRoot, wp, wallpaper.Dark, logger)
	if err != nil {
		return err
	}

	primary, secondary := colorsFor(wp, g.opts)
	props := gnomeProperties{
		// xml:lang uses "-" between language and region
		Names:          wp.Title.Entries(func(l localized.Locale) string { return l.Join("-") }),
		Filename:       normal,
		FilenameDark:   dark,
		Options:        string(wp.Option),
		ShadeType:      string(wp.Shading),
		PrimaryColor:   primary.Hex(),
		SecondaryColor: secondary.Hex(),
	}
	props.DefaultName, props.HasDefault = wp.Title.Default()

	var buf bytes.Buffer
	if err := gnomeTemplates.ExecuteTemplate(&buf, "properties", props); err != nil {
		return faults.Wrap(faults.ErrGenerate, wp.ID, "render gnome properties", "", err)
	}
	target := staging.GnomePropertiesPath(stagingRoot, wp.ID)
	if err := fileutil.WriteFileAtomic(target, buf.Bytes(), 0o644); err != nil {
		return faults.Wrap(faults.ErrGenerate, wp.ID, "write gnome properties", target, err)
	}
	return nil
}

// variantFile returns the staging-relative path GNOME should load for v:
// the image itself, a freshly written list, or "" when v has no files.
func (g *Gnome) variantFile(stagingRoot string, wp *wallpaper.Wallpaper, v wallpaper.Variant, logger *slog.Logger) (string, error) {
	files := wp.FilesOf(v)
	rel := path.Join(wallpaper.WallpaperBase(wp.ID), staging.ContentsDir, v.ImagesDir(), GnomeListFileName)
	listPath := filepath.Join(stagingRoot, filepath.FromSlash(rel))

	if len(files) <= 1 {
		if err := os.Remove(listPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", faults.Wrap(faults.ErrGenerate, wp.ID, "remove stale gnome list", listPath, err)
		}
		if len(files) == 0 {
			return "", nil
		}
		return files[0].RelPath, nil
	}

	logger.Info("writing multi-resolution gnome list",
		logging.String("variant", v.String()),
		logging.Int("versions", len(files)),
	)
	var buf bytes.Buffer
	if err := gnomeTemplates.ExecuteTemplate(&buf, "list", files); err != nil {
		return "", faults.Wrap(faults.ErrGenerate, wp.ID, "render gnome list", "", err)
	}
	if err := fileutil.WriteFileAtomic(listPath, buf.Bytes(), 0o644); err != nil {
		return "", faults.Wrap(faults.ErrGenerate, wp.ID, "write gnome list", listPath, err)
	}
	return rel, nil
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
