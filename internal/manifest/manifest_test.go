package manifest

import (
	"strings"
	"testing"
)

const singleWallpaper = `
[[authors]]
email = "kusa@example.org"
name.default = "Kusa Maker"
name.zh-CN = "草"

[[wallpapers]]
id = "Kusa"
path = "kusa.jpg"
title.default = "Grass"
title.zh_CN = "草"
license = "cc-by-sa-4.0"
`

const multipleWallpapers = `
[[wallpapers]]
id = "Dawn"
path = ["dawn.png", "dawn-dark.png"]
title = "Dawn"
license = "MIT"
option = "Zoom"
shade_type = "vertical"
primary_color = "#112233"
accent_color = "#aabbcc"
dark_accent_color = "#445566"

[[wallpapers]]
id = "Dusk"
path = "dusk.jpg"
title.default = "Dusk"
license = "CC0-1.0"
`

func TestParseSingleWallpaper(t *testing.T) {
	m, err := Parse(strings.NewReader(singleWallpaper))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(m.Authors) != 1 || len(m.Wallpapers) != 1 {
		t.Fatalf("unexpected counts: authors=%d wallpapers=%d", len(m.Authors), len(m.Wallpapers))
	}
	author := m.Authors[0]
	if author.Email != "kusa@example.org" {
		t.Fatalf("unexpected email %q", author.Email)
	}
	if name, _ := author.Name.Get("zh_CN"); name != "草" {
		t.Fatalf("expected zh_CN name, got %q", name)
	}
	wp := m.Wallpapers[0]
	if wp.ID != "Kusa" {
		t.Fatalf("unexpected id %q", wp.ID)
	}
	if wp.Path.Multiple() || len(wp.Path.Paths()) != 1 || wp.Path.Paths()[0] != "kusa.jpg" {
		t.Fatalf("unexpected path spec %+v", wp.Path.Paths())
	}
	if wp.Option != PictureWallpaper {
		t.Fatalf("expected default option wallpaper, got %q", wp.Option)
	}
	if wp.ShadeType != ShadingSolid {
		t.Fatalf("expected default shading solid, got %q", wp.ShadeType)
	}
	if wp.PrimaryColor != nil || wp.AccentColor != nil || wp.DarkAccentColor != nil {
		t.Fatal("expected colors to be unset")
	}
	if title, ok := wp.Title.Default(); !ok || title != "Grass" {
		t.Fatalf("unexpected default title %q", title)
	}
}

func TestParseMultipleWallpapers(t *testing.T) {
	m, err := Parse(strings.NewReader(multipleWallpapers))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(m.Authors) != 0 {
		t.Fatalf("expected no authors, got %d", len(m.Authors))
	}
	if len(m.Wallpapers) != 2 {
		t.Fatalf("expected two wallpapers, got %d", len(m.Wallpapers))
	}
	dawn := m.Wallpapers[0]
	if !dawn.Path.Multiple() {
		t.Fatal("expected list path spec")
	}
	if got := strings.Join(dawn.Path.Paths(), ","); got != "dawn.png,dawn-dark.png" {
		t.Fatalf("unexpected paths %q", got)
	}
	if dawn.Option != PictureZoom || dawn.ShadeType != ShadingVertical {
		t.Fatalf("unexpected enums %q %q", dawn.Option, dawn.ShadeType)
	}
	if dawn.PrimaryColor == nil || dawn.PrimaryColor.Hex() != "#112233" {
		t.Fatalf("unexpected primary color %v", dawn.PrimaryColor)
	}
	if dawn.AccentColor == nil || dawn.AccentColor.Hex() != "#AABBCC" {
		t.Fatalf("unexpected accent color %v", dawn.AccentColor)
	}
	if dawn.DarkAccentColor == nil || dawn.DarkAccentColor.Hex() != "#445566" {
		t.Fatalf("unexpected dark accent color %v", dawn.DarkAccentColor)
	}
	if len(m.UnknownKeys) != 0 {
		t.Fatalf("expected no unknown keys, got %v", m.UnknownKeys)
	}
	if title, _ := dawn.Title.Default(); title != "Dawn" {
		t.Fatalf("plain string title should become default, got %q", title)
	}
	if m.Wallpapers[1].ID != "Dusk" {
		t.Fatalf("declaration order not preserved: %q", m.Wallpapers[1].ID)
	}
}

func TestParseEmptyManifest(t *testing.T) {
	m, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(m.Authors) != 0 || len(m.Wallpapers) != 0 {
		t.Fatalf("expected empty manifest, got %+v", m)
	}
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown option",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\noption = \"tiled\"\n",
			want: "unknown picture option",
		},
		{
			name: "unknown shading",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\nshade_type = \"radial\"\n",
			want: "unknown shade type",
		},
		{
			name: "missing id",
			doc:  "[[wallpapers]]\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\n",
			want: "id is required",
		},
		{
			name: "missing path",
			doc:  "[[wallpapers]]\nid = \"a\"\ntitle = \"A\"\nlicense = \"MIT\"\n",
			want: "path is required",
		},
		{
			name: "missing license",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\n",
			want: "license is required",
		},
		{
			name: "duplicate id",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\n[[wallpapers]]\nid = \"a\"\npath = \"b.jpg\"\ntitle = \"B\"\nlicense = \"MIT\"\n",
			want: "already declared",
		},
		{
			name: "author without email",
			doc:  "[[authors]]\nname = \"Someone\"\n",
			want: "email is required",
		},
		{
			name: "bad color",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\nprimary_color = \"blue\"\n",
			want: "invalid color",
		},
		{
			name: "conflicting accent",
			doc:  "[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\naccent_color = \"#000000\"\nsecondary_color = \"#FFFFFF\"\n",
			want: "accent_color and secondary_color disagree",
		},
		{
			name: "syntax",
			doc:  "[[wallpapers]\n",
			want: "parse manifest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSecondaryColorAlias(t *testing.T) {
	m, err := Parse(strings.NewReader("[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\nsecondary_color = \"#5789ca\"\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if accent := m.Wallpapers[0].AccentColor; accent == nil || accent.Hex() != "#5789CA" {
		t.Fatalf("expected secondary_color to set the accent, got %v", accent)
	}
}

func TestParseReportsUnknownKeys(t *testing.T) {
	doc := "colour = \"x\"\n[[authors]]\nemail = \"a@b\"\nname = \"A\"\nhomepage = \"https://example.org\"\n[[wallpapers]]\nid = \"a\"\npath = \"a.jpg\"\ntitle = \"A\"\nlicense = \"MIT\"\naccent_colour = \"#112233\"\n"
	m, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(m.Authors) != 1 || len(m.Wallpapers) != 1 {
		t.Fatalf("known keys should still decode: authors=%d wallpapers=%d", len(m.Authors), len(m.Wallpapers))
	}
	got := strings.Join(m.UnknownKeys, ",")
	for _, key := range []string{"colour", "homepage", "accent_colour"} {
		if !strings.Contains(got, key) {
			t.Fatalf("expected %q among unknown keys, got %q", key, got)
		}
	}
	if m.Wallpapers[0].AccentColor != nil {
		t.Fatal("misspelled key must not set the accent")
	}
}

func TestParseKeepsEmptyPathList(t *testing.T) {
	m, err := Parse(strings.NewReader("[[authors]]\nemail = \"a@b\"\nname = \"A\"\n[[wallpapers]]\nid = \"a\"\npath = []\ntitle = \"A\"\nlicense = \"MIT\"\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if paths := m.Wallpapers[0].Path.Paths(); len(paths) != 0 {
		t.Fatalf("expected empty path list, got %v", paths)
	}
}

func TestInvalidLocales(t *testing.T) {
	doc := "[[authors]]\nemail = \"a@b\"\nname.default = \"A\"\nname.en-US = \"A\"\nname.\"not a tag\" = \"x\"\n"
	m, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	invalid := m.InvalidLocales()
	if len(invalid) != 1 || !strings.Contains(invalid[0], "not a tag") {
		t.Fatalf("unexpected invalid locales %v", invalid)
	}
}

func TestColorHex(t *testing.T) {
	c := MustColor("#023c88")
	if c.R != 2 || c.G != 60 || c.B != 136 {
		t.Fatalf("unexpected components %+v", c)
	}
	if c.Hex() != "#023C88" {
		t.Fatalf("unexpected hex %q", c.Hex())
	}
}
