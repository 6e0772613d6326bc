package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"wpmeta/internal/faults"
	"wpmeta/internal/fileutil"
	"wpmeta/internal/license"
	"wpmeta/internal/logging"
	"wpmeta/internal/manifest"
	"wpmeta/internal/staging"
)

var (
	ErrNoFilesSpecified = errors.New("no files specified")
	ErrFileNotFound     = errors.New("file not found")
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
	ErrStagingIO        = errors.New("staging I/O failure")
)

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithLogger sets the logger for license warnings and staging diagnostics.
func WithLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// Normalizer stages wallpaper entries into one staging root. It holds no
// per-entry state and is safe for concurrent use across distinct ids.
type Normalizer struct {
	stagingRoot string
	logger      *slog.Logger
}

// NewNormalizer returns a Normalizer writing under stagingRoot.
func NewNormalizer(stagingRoot string, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{stagingRoot: stagingRoot}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.NewComponentLogger(n.logger, "normalizer")
	return n
}

// StagingRoot returns the root files are staged under.
func (n *Normalizer) StagingRoot() string { return n.stagingRoot }

// Normalize resolves, classifies and stages entry. authors is copied into
// the result. Every failure carries faults.ErrWallpaperResolution plus one
// of the Err* kinds above and names the wallpaper id and offending path.
func (n *Normalizer) Normalize(ctx context.Context, entry manifest.Wallpaper, authors []manifest.Author, sourceDir string) (*Wallpaper, error) {
	logger := n.logger.With(logging.String(logging.FieldWallpaperID, entry.ID))

	files, err := n.resolveFiles(ctx, entry, sourceDir)
	if err != nil {
		return nil, err
	}
	if err := n.stage(ctx, entry.ID, files, logger); err != nil {
		return nil, err
	}

	return &Wallpaper{
		ID:              entry.ID,
		License:         n.resolveLicense(entry, logger),
		Authors:         append([]manifest.Author(nil), authors...),
		Title:           entry.Title.Clone(),
		Files:           files,
		Option:          entry.Option,
		Shading:         entry.ShadeType,
		PrimaryColor:    copyColor(entry.PrimaryColor),
		AccentColor:     copyColor(entry.AccentColor),
		DarkAccentColor: copyColor(entry.DarkAccentColor),
		SourceDir:       sourceDir,
	}, nil
}

func (n *Normalizer) resolveLicense(entry manifest.Wallpaper, logger *slog.Logger) string {
	canonical, err := license.Canonicalize(entry.License)
	if err != nil {
		logging.WarnWithContext(logger, "license is not a valid SPDX expression, keeping it verbatim", "license_not_spdx",
			logging.String("license", entry.License),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use an SPDX identifier such as CC-BY-SA-4.0"),
			logging.String(logging.FieldImpact, "packages carry the license string as written"),
		)
		return entry.License
	}
	return canonical
}

func (n *Normalizer) resolveFiles(ctx context.Context, entry manifest.Wallpaper, sourceDir string) ([]File, error) {
	paths := entry.Path.Paths()
	if len(paths) == 0 {
		return nil, resolutionError(entry.ID, ErrNoFilesSpecified, sourceDir, nil)
	}

	files := make([]File, 0, len(paths))
	targets := make(map[string]string, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := rel
		if !filepath.IsAbs(src) {
			src = filepath.Join(sourceDir, filepath.FromSlash(rel))
		}

		info, err := os.Stat(src)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, resolutionError(entry.ID, ErrFileNotFound, src, nil)
		case err != nil:
			return nil, resolutionError(entry.ID, ErrFileNotFound, src, err)
		case !info.Mode().IsRegular():
			return nil, resolutionError(entry.ID, ErrUnsupportedImage, src, errors.New("not a regular file"))
		}

		res, format, err := Probe(src)
		if err != nil {
			return nil, resolutionError(entry.ID, ErrUnsupportedImage, src, err)
		}

		variant := Classify(canonical(src))
		relTarget := StagePath(entry.ID, variant, res, format)
		if other, dup := targets[relTarget]; dup {
			return nil, resolutionError(entry.ID, ErrStagingIO, src,
				fmt.Errorf("stages to %s, already produced by %s", relTarget, other))
		}
		targets[relTarget] = src

		files = append(files, File{
			Path:       filepath.Join(n.stagingRoot, filepath.FromSlash(relTarget)),
			RelPath:    relTarget,
			Source:     src,
			Resolution: res,
			Format:     format,
			Variant:    variant,
		})
	}
	return files, nil
}

func (n *Normalizer) stage(ctx context.Context, id string, files []File, logger *slog.Logger) error {
	keep := map[Variant]map[string]struct{}{
		Normal: {},
		Dark:   {},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := fileutil.ReplaceFile(f.Source, f.Path)
		if err != nil {
			return resolutionError(id, ErrStagingIO, f.Path, err)
		}
		keep[f.Variant][filepath.Base(f.Path)] = struct{}{}
		logger.Debug("staged wallpaper file",
			logging.String("source", f.Source),
			logging.String("target", f.RelPath),
			logging.String("variant", f.Variant.String()),
			logging.Bool("changed", changed),
		)
	}

	contents := filepath.Join(staging.WallpaperDir(n.stagingRoot, id), staging.ContentsDir)
	for _, v := range []Variant{Normal, Dark} {
		result := staging.PruneStale(filepath.Join(contents, v.ImagesDir()), keep[v], logger)
		if len(result.Errors) > 0 {
			first := result.Errors[0]
			return resolutionError(id, ErrStagingIO, first.Path, first.Error)
		}
	}
	return nil
}

func resolutionError(id string, kind error, path string, cause error) error {
	inner := kind
	if cause != nil {
		inner = fmt.Errorf("%w: %w", kind, cause)
	}
	return faults.Wrap(faults.ErrWallpaperResolution, id, "normalize wallpaper", path, inner)
}

func copyColor(c *manifest.Color) *manifest.Color {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// canonical resolves symlinks so the variant follows the real file name.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
