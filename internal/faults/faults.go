package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStructural          = errors.New("structural error")
	ErrInheritance         = errors.New("inheritance violation")
	ErrWallpaperResolution = errors.New("wallpaper resolution error")
	ErrDuplicateID         = errors.New("duplicate wallpaper id")
	ErrGenerate            = errors.New("generator error")
	ErrConfiguration       = errors.New("configuration error")
)

var markers = []struct {
	err  error
	name string
}{
	{ErrStructural, "structural"},
	{ErrInheritance, "inheritance"},
	{ErrWallpaperResolution, "wallpaper_resolution"},
	{ErrDuplicateID, "duplicate_id"},
	{ErrGenerate, "generate"},
	{ErrConfiguration, "configuration"},
}

// Wrap builds an error message that names the offending subject (a path or a
// wallpaper id) and tags it with marker for later classification. marker
// should be one of the exported sentinels above; nil falls back to
// ErrStructural.
func Wrap(marker error, subject, operation, message string, err error) error {
	detail := buildDetail(subject, operation, message)
	if marker == nil {
		marker = ErrStructural
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short machine-friendly name for the marker carried by err,
// or "unknown" when err was not produced by Wrap.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range markers {
		if errors.Is(err, m.err) {
			return m.name
		}
	}
	return "unknown"
}

func buildDetail(subject, operation, message string) string {
	parts := make([]string, 0, 3)
	if subject = strings.TrimSpace(subject); subject != "" {
		parts = append(parts, subject)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
