package generate_test

import (
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wpmeta/internal/faults"
	"wpmeta/internal/generate"
	"wpmeta/internal/localized"
	"wpmeta/internal/manifest"
	"wpmeta/internal/testsupport"
	"wpmeta/internal/wallpaper"
)

func defaultOptions() generate.Options {
	return generate.Options{
		PrimaryColor:   manifest.MustColor("#023C88"),
		SecondaryColor: manifest.MustColor("#5789CA"),
		PreviewWidth:   500,
		PreviewHeight:  500,
	}
}

func localizedPair(def, locale, value string) localized.Localized[string] {
	out := localized.New(def)
	out.Insert(localized.NewLocale(locale), value)
	return out
}

func stagedFile(root, id string, v wallpaper.Variant, w, h int) wallpaper.File {
	res := wallpaper.Resolution{Width: w, Height: h}
	rel := wallpaper.StagePath(id, v, res, wallpaper.FormatJPEG)
	return wallpaper.File{
		Path:       filepath.Join(root, filepath.FromSlash(rel)),
		RelPath:    rel,
		Resolution: res,
		Format:     wallpaper.FormatJPEG,
		Variant:    v,
	}
}

func kusa(files ...wallpaper.File) *wallpaper.Wallpaper {
	return &wallpaper.Wallpaper{
		ID:      "Kusa",
		License: "CC BY-SA 4.0",
		Authors: []manifest.Author{{
			Email: "yajuu.senpai@example.com",
			Name:  localizedPair("Yajuu Senpai", "zh_CN", "野兽先辈"),
		}},
		Title:   localizedPair("Kusa", "en-US", "Grass"),
		Files:   files,
		Option:  manifest.PictureWallpaper,
		Shading: manifest.ShadingSolid,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestGnomeNormalAndDark(t *testing.T) {
	root := t.TempDir()
	wp := kusa(
		stagedFile(root, "Kusa", wallpaper.Normal, 7680, 4320),
		stagedFile(root, "Kusa", wallpaper.Dark, 7680, 4320),
	)

	if err := generate.NewGnome(defaultOptions()).Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := readFile(t, filepath.Join(root, "usr/share/gnome-background-properties/Kusa.xml"))
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE wallpapers SYSTEM "gnome-wp-list.dtd">
<wallpapers>
    <wallpaper deleted="false">
    <name>Kusa</name>
    <name xml:lang="en-US">Grass</name>
    <filename>/usr/share/wallpapers/Kusa/contents/images/7680x4320.jpg</filename>
    <filename-dark>/usr/share/wallpapers/Kusa/contents/images_dark/7680x4320.jpg</filename-dark>
    <options>wallpaper</options>
    <shade_type>solid</shade_type>
    <pcolor>#023C88</pcolor>
    <scolor>#5789CA</scolor>
    </wallpaper>
</wallpapers>`
	if got != want {
		t.Fatalf("unexpected properties:\n%s\nwant:\n%s", got, want)
	}
}

func TestGnomeMultipleResolutionsWritesList(t *testing.T) {
	root := t.TempDir()
	wp := kusa(
		stagedFile(root, "Kusa", wallpaper.Normal, 1920, 1080),
		stagedFile(root, "Kusa", wallpaper.Normal, 3840, 2160),
	)
	red := manifest.MustColor("#FF0000")
	wp.PrimaryColor = &red

	gen := generate.NewGnome(defaultOptions())
	if err := gen.Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	listPath := filepath.Join(root, "usr/share/wallpapers/Kusa/contents/images/gnome-list.xml")
	wantList := `<background>
    <static>
        <duration>8640000.0</duration>
        <file>
            <size width="1920" height="1080">/usr/share/wallpapers/Kusa/contents/images/1920x1080.jpg</size>
            <size width="3840" height="2160">/usr/share/wallpapers/Kusa/contents/images/3840x2160.jpg</size>
        </file>
    </static>
</background>`
	if got := readFile(t, listPath); got != wantList {
		t.Fatalf("unexpected list:\n%s", got)
	}

	wantProps := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE wallpapers SYSTEM "gnome-wp-list.dtd">
<wallpapers>
    <wallpaper deleted="false">
    <name>Kusa</name>
    <name xml:lang="en-US">Grass</name>
    <filename>/usr/share/wallpapers/Kusa/contents/images/gnome-list.xml</filename>
    <options>wallpaper</options>
    <shade_type>solid</shade_type>
    <pcolor>#FF0000</pcolor>
    <scolor>#5789CA</scolor>
    </wallpaper>
</wallpapers>`
	if got := readFile(t, filepath.Join(root, "usr/share/gnome-background-properties/Kusa.xml")); got != wantProps {
		t.Fatalf("unexpected properties:\n%s", got)
	}

	// dropping to a single resolution removes the list
	wp.Files = wp.Files[:1]
	if err := gen.Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if _, err := os.Stat(listPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale gnome-list.xml to be removed, stat err=%v", err)
	}
}

func TestGnomeUsesDeclaredAccent(t *testing.T) {
	root := t.TempDir()
	wp := kusa(stagedFile(root, "Kusa", wallpaper.Normal, 10, 10))
	accent := manifest.MustColor("#00FF00")
	darkAccent := manifest.MustColor("#0000FF")
	wp.AccentColor = &accent
	wp.DarkAccentColor = &darkAccent

	if err := generate.NewGnome(defaultOptions()).Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := readFile(t, filepath.Join(root, "usr/share/gnome-background-properties/Kusa.xml"))
	if !strings.Contains(got, "<pcolor>#023C88</pcolor>") || !strings.Contains(got, "<scolor>#00FF00</scolor>") {
		t.Fatalf("expected default primary and declared accent:\n%s", got)
	}
}

func TestGnomeEscapesAndOmitsMissingNormal(t *testing.T) {
	root := t.TempDir()
	wp := kusa(stagedFile(root, "Kusa", wallpaper.Dark, 100, 100))
	wp.Title = localized.New("Salt & <Pepper>")

	if err := generate.NewGnome(defaultOptions()).Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := readFile(t, filepath.Join(root, "usr/share/gnome-background-properties/Kusa.xml"))
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE wallpapers SYSTEM "gnome-wp-list.dtd">
<wallpapers>
    <wallpaper deleted="false">
    <name>Salt &amp; &lt;Pepper&gt;</name>
    <filename-dark>/usr/share/wallpapers/Kusa/contents/images_dark/100x100.jpg</filename-dark>
    <options>wallpaper</options>
    <shade_type>solid</shade_type>
    <pcolor>#023C88</pcolor>
    <scolor>#5789CA</scolor>
    </wallpaper>
</wallpapers>`
	if got != want {
		t.Fatalf("unexpected properties:\n%s", got)
	}
}

func TestKDEMetadataJSON(t *testing.T) {
	root := t.TempDir()
	wp := kusa(
		stagedFile(root, "Kusa", wallpaper.Normal, 1, 1),
		stagedFile(root, "Kusa", wallpaper.Dark, 1, 1),
	)

	if err := generate.NewKDE(defaultOptions()).Generate(context.Background(), root, wp); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := readFile(t, filepath.Join(root, "usr/share/wallpapers/Kusa/metadata.json"))
	want := `{
  "KPlugin": {
    "Authors": [
      {
        "Email": "yajuu.senpai@example.com",
        "Name": "Yajuu Senpai",
        "Name[zh_CN]": "野兽先辈"
      }
    ],
    "Id": "Kusa",
    "License": "CC BY-SA 4.0",
    "Name": "Kusa",
    "Name[en_US]": "Grass"
  }
}`
	if got != want {
		t.Fatalf("unexpected metadata.json:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(root, "usr/share/wallpapers/Kusa/contents/screenshot.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no preview when both variants exist, stat err=%v", err)
	}
}

func TestKDEPreviewFromLargestNormal(t *testing.T) {
	root := t.TempDir()
	small := stagedFile(root, "Kusa", wallpaper.Normal, 320, 180)
	large := stagedFile(root, "Kusa", wallpaper.Normal, 1600, 900)
	testsupport.WriteImage(t, small.Path, 320, 180, "jpeg")
	testsupport.WriteImage(t, large.Path, 1600, 900, "jpeg")

	if err := generate.NewKDE(defaultOptions()).Generate(context.Background(), root, kusa(small, large)); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	f, err := os.Open(filepath.Join(root, "usr/share/wallpapers/Kusa/contents/screenshot.jpg"))
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if format != "jpeg" || cfg.Width != 500 || cfg.Height != 281 {
		t.Fatalf("unexpected preview %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestKDERemovesPreviewOnceDarkVariantAppears(t *testing.T) {
	root := t.TempDir()
	normal := stagedFile(root, "Kusa", wallpaper.Normal, 64, 36)
	testsupport.WriteImage(t, normal.Path, 64, 36, "jpeg")
	kde := generate.NewKDE(defaultOptions())
	screenshot := filepath.Join(root, "usr/share/wallpapers/Kusa/contents/screenshot.jpg")

	if err := kde.Generate(context.Background(), root, kusa(normal)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := os.Stat(screenshot); err != nil {
		t.Fatalf("expected preview for a single variant: %v", err)
	}

	dark := stagedFile(root, "Kusa", wallpaper.Dark, 64, 36)
	if err := kde.Generate(context.Background(), root, kusa(normal, dark)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := os.Stat(screenshot); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale preview removed, stat err=%v", err)
	}
}

func TestKDEPreviewMissingSource(t *testing.T) {
	root := t.TempDir()
	wp := kusa(stagedFile(root, "Kusa", wallpaper.Normal, 10, 10))

	err := generate.NewKDE(defaultOptions()).Generate(context.Background(), root, wp)
	if !errors.Is(err, faults.ErrGenerate) {
		t.Fatalf("expected ErrGenerate, got %v", err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{7680, 4320, 500, 500, 500, 281},
		{1080, 1920, 500, 500, 281, 500},
		{400, 300, 500, 500, 400, 300},
		{5000, 1, 500, 500, 500, 1},
	}
	for _, tt := range tests {
		w, h := generate.FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitWithin(%d,%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestSelect(t *testing.T) {
	gens, err := generate.Select([]string{"KDE", "gnome", "kde"}, defaultOptions())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(gens) != 2 || gens[0].Name() != "kde" || gens[1].Name() != "gnome" {
		t.Fatalf("unexpected selection %+v", gens)
	}
	if _, err := generate.Select([]string{"mate"}, defaultOptions()); err == nil {
		t.Fatal("expected unknown generator error")
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	for _, gen := range []generate.Generator{generate.NewGnome(defaultOptions()), generate.NewKDE(defaultOptions())} {
		if err := gen.Generate(ctx, root, kusa()); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled, got %v", gen.Name(), err)
		}
	}
}
