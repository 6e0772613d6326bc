package wallpaper_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"wpmeta/internal/faults"
	"wpmeta/internal/localized"
	"wpmeta/internal/manifest"
	"wpmeta/internal/testsupport"
	"wpmeta/internal/wallpaper"
)

func entry(id, license string, paths ...string) manifest.Wallpaper {
	spec := manifest.SinglePath(paths[0])
	if len(paths) > 1 {
		spec = manifest.MultiplePaths(paths...)
	}
	return manifest.Wallpaper{
		ID:        id,
		Path:      spec,
		Title:     localized.New(id),
		License:   license,
		Option:    manifest.PictureZoom,
		ShadeType: manifest.ShadingSolid,
	}
}

var authors = []manifest.Author{{Email: "a@example.org", Name: localized.New("A")}}

func TestClassify(t *testing.T) {
	tests := map[string]wallpaper.Variant{
		"a.jpg":             wallpaper.Normal,
		"a-dark.jpg":        wallpaper.Dark,
		"A-DARK.PNG":        wallpaper.Dark,
		"nightDark.webp":    wallpaper.Dark,
		"dark/light.jpg":    wallpaper.Normal,
		"darkness.jpg":      wallpaper.Normal,
		"dark":              wallpaper.Dark,
		"a.dark.jpg":        wallpaper.Normal,
		"night-dark.2x.png": wallpaper.Dark,
		"night.2x-dark.png": wallpaper.Normal,
		".dark":             wallpaper.Dark,
	}
	for name, want := range tests {
		if got := wallpaper.Classify(name); got != want {
			t.Errorf("Classify(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestAccentFallsBackForDark(t *testing.T) {
	accent := manifest.MustColor("#AABBCC")
	wp := &wallpaper.Wallpaper{AccentColor: &accent}
	if got := wp.Accent(wallpaper.Dark); got != &accent {
		t.Fatalf("expected dark to fall back to the accent, got %v", got)
	}
	dark := manifest.MustColor("#445566")
	wp.DarkAccentColor = &dark
	if got := wp.Accent(wallpaper.Dark); got != &dark {
		t.Fatalf("expected dark accent, got %v", got)
	}
	if got := wp.Accent(wallpaper.Normal); got != &accent {
		t.Fatalf("expected normal accent, got %v", got)
	}
}

func TestStagePath(t *testing.T) {
	res := wallpaper.Resolution{Width: 7680, Height: 4320}
	if got := wallpaper.StagePath("Kusa", wallpaper.Normal, res, wallpaper.FormatJPEG); got != "usr/share/wallpapers/Kusa/contents/images/7680x4320.jpg" {
		t.Fatalf("unexpected normal path %q", got)
	}
	if got := wallpaper.StagePath("Kusa", wallpaper.Dark, res, wallpaper.FormatJPEG); got != "usr/share/wallpapers/Kusa/contents/images_dark/7680x4320.jpg" {
		t.Fatalf("unexpected dark path %q", got)
	}
	if got := wallpaper.StagePath("x", wallpaper.Normal, wallpaper.Resolution{Width: 1, Height: 2}, wallpaper.FormatTIFF); !strings.HasSuffix(got, "/1x2.tiff") {
		t.Fatalf("unexpected tiff path %q", got)
	}
	if wallpaper.WallpaperBase("Kusa") != "usr/share/wallpapers/Kusa" {
		t.Fatalf("unexpected base %q", wallpaper.WallpaperBase("Kusa"))
	}
}

func TestProbeFormats(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []struct {
		format string
		want   wallpaper.Format
	}{
		{"jpeg", wallpaper.FormatJPEG},
		{"png", wallpaper.FormatPNG},
		{"gif", wallpaper.FormatGIF},
		{"bmp", wallpaper.FormatBMP},
		{"tiff", wallpaper.FormatTIFF},
	} {
		path := filepath.Join(dir, "img."+tt.format)
		testsupport.WriteImage(t, path, 32, 16, tt.format)
		res, format, err := wallpaper.Probe(path)
		if err != nil {
			t.Fatalf("Probe(%s) returned error: %v", tt.format, err)
		}
		if res != (wallpaper.Resolution{Width: 32, Height: 16}) || format != tt.want {
			t.Fatalf("Probe(%s) = %v %q", tt.format, res, format)
		}
	}

	garbage := filepath.Join(dir, "garbage.jpg")
	testsupport.WriteFile(t, garbage, []byte("not an image"))
	if _, _, err := wallpaper.Probe(garbage); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestNormalizeEndToEnd(t *testing.T) {
	src := t.TempDir()
	stage := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.jpg"), 1920, 1080, "jpeg")
	testsupport.WriteImage(t, filepath.Join(src, "a-dark.jpg"), 1920, 1080, "jpeg")

	n := wallpaper.NewNormalizer(stage)
	wp, err := n.Normalize(context.Background(), entry("Kusa", "cc-by-sa-4.0", "a.jpg", "a-dark.jpg"), authors, src)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(wp.Files) != 2 {
		t.Fatalf("expected two files, got %d", len(wp.Files))
	}
	if wp.Files[0].Variant != wallpaper.Normal || wp.Files[1].Variant != wallpaper.Dark {
		t.Fatalf("unexpected variants %v %v", wp.Files[0].Variant, wp.Files[1].Variant)
	}
	for _, rel := range []string{
		"usr/share/wallpapers/Kusa/contents/images/1920x1080.jpg",
		"usr/share/wallpapers/Kusa/contents/images_dark/1920x1080.jpg",
	} {
		if _, err := os.Stat(filepath.Join(stage, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected staged file %s: %v", rel, err)
		}
	}
	if wp.Files[1].RelPath != "usr/share/wallpapers/Kusa/contents/images_dark/1920x1080.jpg" {
		t.Fatalf("unexpected rel path %q", wp.Files[1].RelPath)
	}
	if wp.License != "CC-BY-SA-4.0" {
		t.Fatalf("expected canonical license, got %q", wp.License)
	}
	if wp.Option != manifest.PictureZoom || wp.Shading != manifest.ShadingSolid {
		t.Fatalf("unexpected option/shading %q %q", wp.Option, wp.Shading)
	}
	if wp.SourceDir != src {
		t.Fatalf("unexpected source dir %q", wp.SourceDir)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.png"), 64, 48, "png")
	e := entry("Idem", "MIT", "a.png")

	var results []*wallpaper.Wallpaper
	var contents [][]byte
	for i := 0; i < 2; i++ {
		stage := t.TempDir()
		wp, err := wallpaper.NewNormalizer(stage).Normalize(context.Background(), e, authors, src)
		if err != nil {
			t.Fatalf("Normalize run %d returned error: %v", i, err)
		}
		data, err := os.ReadFile(wp.Files[0].Path)
		if err != nil {
			t.Fatal(err)
		}
		// Compare independent of the staging root.
		wp.Files[0].Path = wp.Files[0].RelPath
		results = append(results, wp)
		contents = append(contents, data)
	}
	if !reflect.DeepEqual(results[0], results[1]) {
		t.Fatalf("normalizing twice differs:\n%+v\n%+v", results[0], results[1])
	}
	if !bytes.Equal(contents[0], contents[1]) {
		t.Fatal("staged bytes differ between runs")
	}
}

func TestNormalizeRerunPrunesStaleFiles(t *testing.T) {
	src := t.TempDir()
	stage := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.png"), 10, 10, "png")
	n := wallpaper.NewNormalizer(stage)
	if _, err := n.Normalize(context.Background(), entry("Grow", "MIT", "a.png"), authors, src); err != nil {
		t.Fatalf("first Normalize returned error: %v", err)
	}

	testsupport.WriteImage(t, filepath.Join(src, "a.png"), 20, 10, "png")
	wp, err := n.Normalize(context.Background(), entry("Grow", "MIT", "a.png"), authors, src)
	if err != nil {
		t.Fatalf("second Normalize returned error: %v", err)
	}
	images := filepath.Join(stage, "usr", "share", "wallpapers", "Grow", "contents", "images")
	entries, err := os.ReadDir(images)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "20x10.png" {
		t.Fatalf("expected only the current file, got %v", entries)
	}
	if wp.Files[0].Resolution.Width != 20 {
		t.Fatalf("unexpected resolution %v", wp.Files[0].Resolution)
	}
}

func TestNormalizeClassifiesSymlinkByTarget(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "night-dark.jpg"), 8, 8, "jpeg")
	if err := os.Symlink("night-dark.jpg", filepath.Join(src, "alias.jpg")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	wp, err := wallpaper.NewNormalizer(t.TempDir()).Normalize(context.Background(), entry("S", "MIT", "alias.jpg"), authors, src)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if wp.Files[0].Variant != wallpaper.Dark {
		t.Fatalf("expected variant of the link target, got %v", wp.Files[0].Variant)
	}
}

func TestNormalizeErrors(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.jpg"), 8, 8, "jpeg")
	testsupport.WriteImage(t, filepath.Join(src, "b.jpg"), 8, 8, "jpeg")
	testsupport.WriteFile(t, filepath.Join(src, "corrupt.jpg"), []byte("\xff\xd8garbage"))
	testsupport.WriteImage(t, filepath.Join(src, "full.jpg"), 320, 180, "jpeg")
	full, err := os.ReadFile(filepath.Join(src, "full.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	// The header survives, the scan data is cut short.
	testsupport.WriteFile(t, filepath.Join(src, "truncated.jpg"), full[:len(full)-8])

	tests := []struct {
		name  string
		entry manifest.Wallpaper
		kind  error
		path  string
	}{
		{name: "empty list", entry: manifest.Wallpaper{ID: "E", Path: manifest.MultiplePaths(), License: "MIT"}, kind: wallpaper.ErrNoFilesSpecified},
		{name: "missing", entry: entry("M", "MIT", "missing.jpg"), kind: wallpaper.ErrFileNotFound, path: "missing.jpg"},
		{name: "corrupt", entry: entry("C", "MIT", "corrupt.jpg"), kind: wallpaper.ErrUnsupportedImage, path: "corrupt.jpg"},
		{name: "truncated", entry: entry("R", "MIT", "truncated.jpg"), kind: wallpaper.ErrUnsupportedImage, path: "truncated.jpg"},
		{name: "directory", entry: entry("D", "MIT", "."), kind: wallpaper.ErrUnsupportedImage},
		{name: "duplicate target", entry: entry("T", "MIT", "a.jpg", "b.jpg"), kind: wallpaper.ErrStagingIO, path: "b.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := t.TempDir()
			_, err := wallpaper.NewNormalizer(stage).Normalize(context.Background(), tt.entry, authors, src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, faults.ErrWallpaperResolution) || !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v wrapped as resolution error, got %v", tt.kind, err)
			}
			if !strings.Contains(err.Error(), tt.entry.ID) {
				t.Fatalf("error should name id %q: %v", tt.entry.ID, err)
			}
			if tt.path != "" && !strings.Contains(err.Error(), tt.path) {
				t.Fatalf("error should name %q: %v", tt.path, err)
			}
			if tt.kind != wallpaper.ErrStagingIO {
				if _, statErr := os.Stat(filepath.Join(stage, "usr")); !os.IsNotExist(statErr) {
					t.Fatal("nothing should be staged for an unresolvable entry")
				}
			}
		})
	}
}

func TestNormalizeKeepsUnknownLicenseAndCopiesAuthors(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.gif"), 4, 4, "gif")
	scope := []manifest.Author{{Email: "x@example.org"}}

	wp, err := wallpaper.NewNormalizer(t.TempDir()).Normalize(context.Background(), entry("L", "All rights reserved", "a.gif"), scope, src)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if wp.License != "All rights reserved" {
		t.Fatalf("expected license kept verbatim, got %q", wp.License)
	}
	scope[0].Email = "changed"
	if wp.Authors[0].Email != "x@example.org" {
		t.Fatal("wallpaper authors must be a snapshot")
	}
	if wp.Files[0].Format != wallpaper.FormatGIF || !strings.HasSuffix(wp.Files[0].Path, "4x4.gif") {
		t.Fatalf("unexpected file %+v", wp.Files[0])
	}
}

func TestNormalizeHonoursCancellation(t *testing.T) {
	src := t.TempDir()
	testsupport.WriteImage(t, filepath.Join(src, "a.png"), 4, 4, "png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := wallpaper.NewNormalizer(t.TempDir()).Normalize(ctx, entry("X", "MIT", "a.png"), authors, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWallpaperHelpers(t *testing.T) {
	wp := &wallpaper.Wallpaper{Files: []wallpaper.File{
		{Variant: wallpaper.Normal, Resolution: wallpaper.Resolution{Width: 10, Height: 10}},
		{Variant: wallpaper.Normal, Resolution: wallpaper.Resolution{Width: 20, Height: 10}},
		{Variant: wallpaper.Dark, Resolution: wallpaper.Resolution{Width: 5, Height: 5}},
	}}
	if len(wp.FilesOf(wallpaper.Normal)) != 2 || len(wp.FilesOf(wallpaper.Dark)) != 1 {
		t.Fatal("unexpected FilesOf split")
	}
	largest, ok := wp.Largest(wallpaper.Normal)
	if !ok || largest.Resolution.Width != 20 {
		t.Fatalf("unexpected largest %+v", largest)
	}
	if _, ok := (&wallpaper.Wallpaper{}).Largest(wallpaper.Dark); ok {
		t.Fatal("expected no dark file")
	}
	if !wp.HasVariant(wallpaper.Dark) {
		t.Fatal("expected dark variant")
	}
}

func TestFlattenPreservesOrder(t *testing.T) {
	a := &wallpaper.Wallpaper{ID: "a"}
	b := &wallpaper.Wallpaper{ID: "b"}
	c := &wallpaper.Wallpaper{ID: "a", License: "second"}
	col := wallpaper.Flatten([][]*wallpaper.Wallpaper{{a}, nil, {b, nil, c}})
	if got := strings.Join(col.IDs(), ","); got != "a,b,a" {
		t.Fatalf("unexpected order %q", got)
	}
	if col.Len() != 3 {
		t.Fatalf("unexpected length %d", col.Len())
	}
	if found, ok := col.Find("a"); !ok || found.License != "second" {
		t.Fatalf("Find should return the last declaration, got %+v", found)
	}
	if _, ok := col.Find("zzz"); ok {
		t.Fatal("unexpected match")
	}
	if wallpaper.Flatten(nil).Len() != 0 {
		t.Fatal("expected empty collection")
	}
}
