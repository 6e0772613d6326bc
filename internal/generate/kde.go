package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"wpmeta/internal/faults"
	"wpmeta/internal/fileutil"
	"wpmeta/internal/localized"
	"wpmeta/internal/logging"
	"wpmeta/internal/staging"
	"wpmeta/internal/wallpaper"
)

const (
	KDEName = "kde"

	KDEMetadataFileName   = "metadata.json"
	KDEScreenshotFileName = "screenshot.jpg"
)

// KDE writes KPlugin metadata.json files and preview screenshots.
type KDE struct {
	opts   Options
	logger *slog.Logger
}

// NewKDE returns the KDE generator.
func NewKDE(opts Options) *KDE {
	return &KDE{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "generate.kde"),
	}
}

func (k *KDE) Name() string { return KDEName }

// Generate writes usr/share/wallpapers/<id>/metadata.json and, unless the
// wallpaper ships both a normal and a dark variant, contents/screenshot.jpg.
func (k *KDE) Generate(ctx context.Context, stagingRoot string, wp *wallpaper.Wallpaper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := logging.WithContext(ctx, k.logger).With(logging.String(logging.FieldWallpaperID, wp.ID))
	logger.Info("generating KDE metadata")

	data, err := kpluginMetadata(wp)
	if err != nil {
		return faults.Wrap(faults.ErrGenerate, wp.ID, "encode kde metadata", "", err)
	}
	base := staging.WallpaperDir(stagingRoot, wp.ID)
	target := filepath.Join(base, KDEMetadataFileName)
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return faults.Wrap(faults.ErrGenerate, wp.ID, "write kde metadata", target, err)
	}

	preview := filepath.Join(base, staging.ContentsDir, KDEScreenshotFileName)
	if wp.HasVariant(wallpaper.Normal) && wp.HasVariant(wallpaper.Dark) {
		if err := os.Remove(preview); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrGenerate, wp.ID, "remove stale preview", preview, err)
		}
		logger.Info("skipped preview, wallpaper has both normal and dark variants")
		return nil
	}
	src, ok := wp.Largest(wallpaper.Normal)
	if !ok {
		src, ok = wp.Largest(wallpaper.Dark)
	}
	if !ok {
		logging.WarnWithContext(logger, "no staged file to build a preview from", "kde_preview_skipped",
			logging.String(logging.FieldImpact, "package ships without screenshot.jpg"),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("generating preview",
		logging.String("source", src.RelPath),
		logging.Int("max_width", k.opts.PreviewWidth),
		logging.Int("max_height", k.opts.PreviewHeight),
	)
	if err := WritePreview(src.Path, preview, k.opts.PreviewWidth, k.opts.PreviewHeight); err != nil {
		return faults.Wrap(faults.ErrGenerate, wp.ID, "write kde preview", preview, err)
	}
	return nil
}

// field is one member of a JSON object whose key order matters.
type field struct {
	key   string
	value any
}

type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(f.key)
		if err != nil {
			return nil, err
		}
		value, err := encodeJSON(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nameFields(name localized.Localized[string]) object {
	out := object{}
	if def, ok := name.Default(); ok {
		out = append(out, field{"Name", def})
	}
	for _, entry := range name.Entries(localized.Locale.String) {
		out = append(out, field{"Name[" + entry.Key + "]", entry.Value})
	}
	return out
}

func kpluginMetadata(wp *wallpaper.Wallpaper) ([]byte, error) {
	authors := make([]object, 0, len(wp.Authors))
	for _, author := range wp.Authors {
		authors = append(authors, append(object{{"Email", author.Email}}, nameFields(author.Name)...))
	}
	plugin := object{
		{"Authors", authors},
		{"Id", wp.ID},
		{"License", wp.License},
	}
	plugin = append(plugin, nameFields(wp.Title)...)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(object{{"KPlugin", plugin}}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
