package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wpmeta/internal/logging"
)

// CleanupResult contains the outcome of a cleanup operation.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// PruneStale removes staged images in dir that are not listed in keep (by
// base name). Files that do not match the staged naming pattern, such as
// generator output, are left alone. A missing dir is not an error.
func PruneStale(dir string, keep map[string]struct{}, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsStagedName(entry.Name()) {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Debug("removed stale staged image",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "staging_prune"),
			)
		}
	}
	return result
}

// RemoveOrphans deletes wallpaper directories (and their GNOME property
// lists) under root whose id is not in active.
func RemoveOrphans(ctx context.Context, root string, active map[string]struct{}, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}

	dirs, err := ListWallpapers(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	for _, dir := range dirs {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: ctx.Err()})
			return result
		}
		if _, ok := active[dir.Name]; ok {
			continue
		}
		targets := []string{dir.Path, GnomePropertiesPath(root, dir.Name)}
		for _, target := range targets {
			if err := os.RemoveAll(target); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: target, Error: err})
				if logger != nil {
					logging.WarnWithContext(logger, "failed to remove orphaned wallpaper", "staging_cleanup_failed",
						logging.String("path", target),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
						logging.String(logging.FieldImpact, "the orphaned wallpaper stays in the package"),
					)
				}
				continue
			}
		}
		result.Removed = append(result.Removed, dir.Path)
		if logger != nil {
			logger.Info("removed orphaned wallpaper",
				logging.String(logging.FieldWallpaperID, dir.Name),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}

	return result
}

// DirInfo contains metadata about a staged wallpaper directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	Files   int
}

// ListWallpapers returns every staged wallpaper directory under root in
// lexical order. A missing root yields an empty list.
func ListWallpapers(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	base := filepath.Join(root, filepath.FromSlash(WallpapersDir))

	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(base, entry.Name())
		size, files := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
			Files:   files,
		})
	}
	return dirs, nil
}

// dirSize sums regular file sizes below path, best effort.
func dirSize(path string) (int64, int) {
	var size int64
	var files int
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
				files++
			}
		}
		return nil
	})
	return size, files
}
