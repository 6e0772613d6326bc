package wallpaper

import (
	"path/filepath"
	"strings"
)

// Classify derives the variant from a file name: a prefix (everything before
// the first dot) ending in "dark", in any case, is Dark. A leading dot
// belongs to the prefix.
func Classify(name string) Variant {
	base := filepath.Base(name)
	prefix := base
	if i := strings.IndexByte(base[1:], '.'); i >= 0 {
		prefix = base[:i+1]
	}
	if strings.HasSuffix(strings.ToLower(prefix), "dark") {
		return Dark
	}
	return Normal
}
