package wallpaper

// Collection is the flat, ordered result of one build.
type Collection []*Wallpaper

// Flatten concatenates per-directory results in order. Nil entries are
// skipped; nothing is deduplicated.
func Flatten(groups [][]*Wallpaper) Collection {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make(Collection, 0, n)
	for _, g := range groups {
		for _, w := range g {
			if w != nil {
				out = append(out, w)
			}
		}
	}
	return out
}

// Len returns the number of wallpapers.
func (c Collection) Len() int { return len(c) }

// IDs returns the wallpaper ids in collection order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, w := range c {
		ids[i] = w.ID
	}
	return ids
}

// Find returns the last wallpaper with the given id.
func (c Collection) Find(id string) (*Wallpaper, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].ID == id {
			return c[i], true
		}
	}
	return nil, false
}

// FileCount sums the staged files across the collection.
func (c Collection) FileCount() int {
	n := 0
	for _, w := range c {
		n += len(w.Files)
	}
	return n
}
