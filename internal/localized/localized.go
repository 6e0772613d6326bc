package localized

import (
	"sort"
	"strings"
)

// DefaultKey is the manifest key holding the fallback value.
const DefaultKey = "default"

// Localized holds a default value plus per-locale overrides.
type Localized[T any] struct {
	def        T
	hasDefault bool
	content    map[Locale]T
}

// Entry is one locale-specific value in enumeration order.
type Entry[T any] struct {
	Key   string
	Value T
}

// New returns a container whose default is def.
func New[T any](def T) Localized[T] {
	return Localized[T]{def: def, hasDefault: true}
}

// Empty returns a container without a default value.
func Empty[T any]() Localized[T] {
	return Localized[T]{}
}

// FromMap builds a container from a decoded TOML table. The "default" key,
// in any case, becomes the default value.
func FromMap[T any](m map[string]T) Localized[T] {
	out := Empty[T]()
	for key, value := range m {
		if strings.EqualFold(strings.TrimSpace(key), DefaultKey) {
			out.SetDefault(value)
			continue
		}
		out.Insert(NewLocale(key), value)
	}
	return out
}

// Insert sets the value for locale and returns the value it replaced.
func (l *Localized[T]) Insert(locale Locale, value T) (T, bool) {
	if l.content == nil {
		l.content = make(map[Locale]T)
	}
	prev, ok := l.content[locale]
	l.content[locale] = value
	return prev, ok
}

// SetDefault replaces the default value.
func (l *Localized[T]) SetDefault(value T) {
	l.def = value
	l.hasDefault = true
}

// Default returns the default value.
func (l Localized[T]) Default() (T, bool) {
	return l.def, l.hasDefault
}

// Lookup returns the value stored for locale, falling back to the default.
func (l Localized[T]) Lookup(locale Locale) (T, bool) {
	if value, ok := l.content[locale]; ok {
		return value, true
	}
	return l.Default()
}

// Get is Lookup for a locale string such as "zh-CN" or "zh_CN".
func (l Localized[T]) Get(locale string) (T, bool) {
	return l.Lookup(NewLocale(locale))
}

// Len counts the default (if any) plus every locale entry.
func (l Localized[T]) Len() int {
	n := len(l.content)
	if l.hasDefault {
		n++
	}
	return n
}

// IsEmpty reports whether neither a default nor any locale is set.
func (l Localized[T]) IsEmpty() bool {
	return l.Len() == 0
}

// Locales returns the locale keys in sorted order.
func (l Localized[T]) Locales() []Locale {
	out := make([]Locale, 0, len(l.content))
	for locale := range l.content {
		out = append(out, locale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Entries maps every locale through transform and returns the entries ordered
// by the transformed key. The default value is not included.
func (l Localized[T]) Entries(transform func(Locale) string) []Entry[T] {
	if transform == nil {
		transform = Locale.String
	}
	out := make([]Entry[T], 0, len(l.content))
	for locale, value := range l.content {
		out = append(out, Entry[T]{Key: transform(locale), Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Clone returns a deep copy of the locale map.
func (l Localized[T]) Clone() Localized[T] {
	out := Localized[T]{def: l.def, hasDefault: l.hasDefault}
	if len(l.content) > 0 {
		out.content = make(map[Locale]T, len(l.content))
		for k, v := range l.content {
			out.content[k] = v
		}
	}
	return out
}
