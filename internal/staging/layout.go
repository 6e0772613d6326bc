package staging

import (
	"path/filepath"
	"regexp"
)

const (
	// WallpapersDir holds one directory per wallpaper id.
	WallpapersDir = "usr/share/wallpapers"
	// GnomeBackgroundsDir holds the GNOME background property lists.
	GnomeBackgroundsDir = "usr/share/gnome-background-properties"
	// ContentsDir is the per-wallpaper content directory.
	ContentsDir = "contents"
	// NormalImagesDir and DarkImagesDir hold the staged images per variant.
	NormalImagesDir = "images"
	DarkImagesDir   = "images_dark"
	// LockFileName is created in the staging root while a build runs.
	LockFileName = ".wpmeta.lock"
)

var stagedName = regexp.MustCompile(`^[0-9]+x[0-9]+\.(jpg|png|gif|webp|bmp|tiff)$`)

// IsStagedName reports whether name looks like a staged image
// ("<W>x<H>.<ext>").
func IsStagedName(name string) bool {
	return stagedName.MatchString(name)
}

// WallpaperDir is the absolute directory for wallpaper id under root.
func WallpaperDir(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(WallpapersDir), id)
}

// GnomePropertiesPath is the GNOME background list written for id.
func GnomePropertiesPath(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(GnomeBackgroundsDir), id+".xml")
}
