package tree

import (
	"wpmeta/internal/faults"
	"wpmeta/internal/manifest"
)

// Context is the resolved view of one manifest-bearing directory.
type Context struct {
	Dir          string
	ManifestPath string
	Manifest     *manifest.Manifest
	// Authors are the nearest ancestor's authors followed by this
	// manifest's own. Duplicates are kept.
	Authors []manifest.Author
	// ParentDir is the directory of the nearest ancestor context, empty at
	// the top of the tree.
	ParentDir string
}

// Resolve merges the manifest's authors with those inherited from parent.
// A manifest that declares wallpapers with no author in scope is rejected.
func Resolve(dir, manifestPath string, m *manifest.Manifest, parent *Context) (*Context, error) {
	if m == nil {
		m = &manifest.Manifest{}
	}
	var inherited []manifest.Author
	var parentDir string
	if parent != nil {
		inherited = parent.Authors
		parentDir = parent.Dir
	}

	authors := make([]manifest.Author, 0, len(inherited)+len(m.Authors))
	authors = append(authors, inherited...)
	authors = append(authors, m.Authors...)

	if len(m.Wallpapers) > 0 && len(authors) == 0 {
		return nil, faults.Wrap(faults.ErrInheritance, manifestPath, "resolve authors",
			"wallpaper defined, but no author definition found in this manifest or any parent directory", nil)
	}

	return &Context{
		Dir:          dir,
		ManifestPath: manifestPath,
		Manifest:     m,
		Authors:      authors,
		ParentDir:    parentDir,
	}, nil
}

// FindAuthor returns the most specific author in scope with the given email.
func (c *Context) FindAuthor(email string) (manifest.Author, bool) {
	for i := len(c.Authors) - 1; i >= 0; i-- {
		if c.Authors[i].Email == email {
			return c.Authors[i], true
		}
	}
	return manifest.Author{}, false
}
