package localized

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a language with an optional region.
type Locale struct {
	Lang   string
	Region string
}

// NewLocale parses a locale identifier. It never fails: malformed input is
// kept as-is after case normalization so manifests can round-trip it.
func NewLocale(s string) Locale {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	lang, region, found := strings.Cut(s, "_")
	if !found {
		return Locale{Lang: strings.ToLower(s)}
	}
	return Locale{Lang: strings.ToLower(lang), Region: strings.ToUpper(region)}
}

// Join concatenates language and region with sep.
func (l Locale) Join(sep string) string {
	if l.Region == "" {
		return l.Lang
	}
	return l.Lang + sep + l.Region
}

// String returns the underscore form, e.g. "en_US".
func (l Locale) String() string {
	return l.Join("_")
}

// Tag parses the locale as a BCP 47 tag.
func (l Locale) Tag() (language.Tag, error) {
	return language.Parse(l.Join("-"))
}

// Valid reports whether the locale is a well-formed BCP 47 tag.
func (l Locale) Valid() bool {
	_, err := l.Tag()
	return err == nil
}

// Less orders locales by language, then region; a locale without region sorts
// before the same language with a region.
func (l Locale) Less(other Locale) bool {
	if l.Lang != other.Lang {
		return l.Lang < other.Lang
	}
	return l.Region < other.Region
}
