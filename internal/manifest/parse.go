package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"wpmeta/internal/localized"
)

type document struct {
	Authors    []authorDoc    `toml:"authors"`
	Wallpapers []wallpaperDoc `toml:"wallpapers"`
}

type authorDoc struct {
	Email string `toml:"email"`
	Name  any    `toml:"name"`
}

type wallpaperDoc struct {
	ID              string        `toml:"id"`
	Path            any           `toml:"path"`
	Title           any           `toml:"title"`
	License         string        `toml:"license"`
	Option          PictureOption `toml:"option"`
	ShadeType       Shading       `toml:"shade_type"`
	PrimaryColor    *Color        `toml:"primary_color"`
	AccentColor     *Color        `toml:"accent_color"`
	SecondaryColor  *Color        `toml:"secondary_color"`
	DarkAccentColor *Color        `toml:"dark_accent_color"`
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a manifest document. Unknown keys do not fail the parse;
// they are listed in Manifest.UnknownKeys.
func Parse(r io.Reader) (*Manifest, error) {
	var doc document
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	var unknown []string
	err := decoder.Decode(&doc)
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		unknown = unknownKeys(strictErr)
		err = nil
	}
	if err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("parse manifest (line %d, column %d): %w", row, col, err)
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m, err := doc.convert()
	if err != nil {
		return nil, err
	}
	m.UnknownKeys = unknown
	return m, nil
}

func (d document) convert() (*Manifest, error) {
	m := &Manifest{
		Authors:    make([]Author, 0, len(d.Authors)),
		Wallpapers: make([]Wallpaper, 0, len(d.Wallpapers)),
	}
	for i, a := range d.Authors {
		author, err := a.convert()
		if err != nil {
			return nil, fmt.Errorf("authors[%d]: %w", i, err)
		}
		m.Authors = append(m.Authors, author)
	}
	seen := make(map[string]int, len(d.Wallpapers))
	for i, w := range d.Wallpapers {
		wp, err := w.convert()
		if err != nil {
			return nil, fmt.Errorf("wallpapers[%d]: %w", i, err)
		}
		if first, dup := seen[wp.ID]; dup {
			return nil, fmt.Errorf("wallpapers[%d]: id %q already declared by wallpapers[%d]", i, wp.ID, first)
		}
		seen[wp.ID] = i
		m.Wallpapers = append(m.Wallpapers, wp)
	}
	return m, nil
}

func (a authorDoc) convert() (Author, error) {
	email := strings.TrimSpace(a.Email)
	if email == "" {
		return Author{}, errors.New("email is required")
	}
	name, err := localizedString("name", a.Name)
	if err != nil {
		return Author{}, err
	}
	return Author{Email: email, Name: name}, nil
}

func (w wallpaperDoc) convert() (Wallpaper, error) {
	id := strings.TrimSpace(w.ID)
	if id == "" {
		return Wallpaper{}, errors.New("id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Wallpaper{}, fmt.Errorf("id %q must not contain path separators", id)
	}
	paths, err := pathSpec(w.Path)
	if err != nil {
		return Wallpaper{}, fmt.Errorf("%s: %w", id, err)
	}
	title, err := localizedString("title", w.Title)
	if err != nil {
		return Wallpaper{}, fmt.Errorf("%s: %w", id, err)
	}
	license := strings.TrimSpace(w.License)
	if license == "" {
		return Wallpaper{}, fmt.Errorf("%s: license is required", id)
	}
	option := w.Option
	if option == "" {
		option = PictureWallpaper
	}
	shading := w.ShadeType
	if shading == "" {
		shading = ShadingSolid
	}
	accent := w.AccentColor
	if w.SecondaryColor != nil {
		if accent != nil && *accent != *w.SecondaryColor {
			return Wallpaper{}, fmt.Errorf("%s: accent_color and secondary_color disagree, set only accent_color", id)
		}
		accent = w.SecondaryColor
	}
	return Wallpaper{
		ID:              id,
		Path:            paths,
		Title:           title,
		License:         license,
		Option:          option,
		ShadeType:       shading,
		PrimaryColor:    w.PrimaryColor,
		AccentColor:     accent,
		DarkAccentColor: w.DarkAccentColor,
	}, nil
}

func unknownKeys(err *toml.StrictMissingError) []string {
	out := make([]string, 0, len(err.Errors))
	for i := range err.Errors {
		out = append(out, strings.Join(err.Errors[i].Key(), "."))
	}
	return out
}

// pathSpec accepts a string or an array of strings. An empty array is kept so
// the normalizer can report it with the wallpaper id.
func pathSpec(raw any) (PathSpec, error) {
	switch v := raw.(type) {
	case nil:
		return PathSpec{}, errors.New("path is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return PathSpec{}, errors.New("path must not be empty")
		}
		return SinglePath(v), nil
	case []any:
		paths := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return PathSpec{}, fmt.Errorf("path[%d] must be a non-empty string", i)
			}
			paths = append(paths, s)
		}
		return MultiplePaths(paths...), nil
	default:
		return PathSpec{}, fmt.Errorf("path must be a string or an array of strings, got %T", raw)
	}
}

// localizedString accepts either a plain string (the default value) or a
// table of locale keys.
func localizedString(field string, raw any) (localized.Localized[string], error) {
	switch v := raw.(type) {
	case nil:
		return localized.Localized[string]{}, fmt.Errorf("%s is required", field)
	case string:
		return localized.New(v), nil
	case map[string]any:
		values := make(map[string]string, len(v))
		for key, item := range v {
			s, ok := item.(string)
			if !ok {
				return localized.Localized[string]{}, fmt.Errorf("%s.%s must be a string", field, key)
			}
			values[key] = s
		}
		out := localized.FromMap(values)
		if out.IsEmpty() {
			return out, fmt.Errorf("%s must not be empty", field)
		}
		return out, nil
	default:
		return localized.Localized[string]{}, fmt.Errorf("%s must be a string or a table, got %T", field, raw)
	}
}

// InvalidLocales lists locale keys anywhere in the manifest that are not
// well-formed BCP 47 tags. They are kept, but generators may emit them as-is.
func (m *Manifest) InvalidLocales() []string {
	var out []string
	check := func(scope string, l localized.Localized[string]) {
		for _, locale := range l.Locales() {
			if !locale.Valid() {
				out = append(out, scope+"."+locale.String())
			}
		}
	}
	for _, a := range m.Authors {
		check("authors."+a.Email+".name", a.Name)
	}
	for _, w := range m.Wallpapers {
		check("wallpapers."+w.ID+".title", w.Title)
	}
	return out
}
