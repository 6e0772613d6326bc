package tree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wpmeta/internal/faults"
	"wpmeta/internal/logging"
	"wpmeta/internal/manifest"
)

// Option customizes a Walker.
type Option func(*Walker)

// WithManifestName overrides the manifest file name looked up per directory.
func WithManifestName(name string) Option {
	return func(w *Walker) {
		if name = strings.TrimSpace(name); name != "" {
			w.manifestName = name
		}
	}
}

// WithLogger sets the logger used for traversal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

type pending struct {
	dir    string
	parent *Context
}

// Walker lazily yields resolved contexts. It is single-use and not safe for
// concurrent use.
type Walker struct {
	root         string
	realRoot     string
	manifestName string
	logger       *slog.Logger

	stack   []pending
	visited map[string]struct{}
	err     error
}

// NewWalker prepares a walk rooted at root. The root must exist and be a
// directory.
func NewWalker(root string, opts ...Option) (*Walker, error) {
	w := &Walker{
		manifestName: manifest.DefaultFileName,
		visited:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "walker")

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, root, "open source tree", "resolve absolute path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, abs, "open source tree", "", err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrStructural, abs, "open source tree", "not a directory", nil)
	}
	realRoot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, abs, "open source tree", "resolve symlinks", err)
	}
	w.root = abs
	w.realRoot = realRoot
	w.stack = []pending{{dir: abs}}
	return w, nil
}

// Root returns the absolute root directory.
func (w *Walker) Root() string { return w.root }

// Next returns the next manifest-bearing directory, or io.EOF once the tree
// is exhausted. After an error every later call returns the same error.
func (w *Walker) Next() (*Context, error) {
	if w.err != nil {
		return nil, w.err
	}
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		ctx, err := w.visit(top)
		if err != nil {
			w.err = err
			w.stack = nil
			return nil, err
		}
		if ctx != nil {
			return ctx, nil
		}
	}
	w.err = io.EOF
	return nil, io.EOF
}

// All adapts Next into a range-over-func sequence. Iteration stops after the
// first error; io.EOF is not yielded.
func (w *Walker) All() iter.Seq2[*Context, error] {
	return func(yield func(*Context, error) bool) {
		for {
			ctx, err := w.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ctx, err) || err != nil {
				return
			}
		}
	}
}

// Collect walks root to completion and returns every resolved context in
// traversal order.
func Collect(root string, opts ...Option) ([]*Context, error) {
	w, err := NewWalker(root, opts...)
	if err != nil {
		return nil, err
	}
	var out []*Context
	for ctx, err := range w.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, ctx)
	}
	return out, nil
}

// visit resolves one directory and schedules its children. It returns a nil
// context for directories without a manifest or already seen through a
// symlink.
func (w *Walker) visit(p pending) (*Context, error) {
	realPath, err := filepath.EvalSymlinks(p.dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, p.dir, "resolve directory", "", err)
	}
	if _, seen := w.visited[realPath]; seen {
		w.logger.Debug("directory already visited", logging.String("dir", p.dir), logging.String("real_path", realPath))
		return nil, nil
	}
	w.visited[realPath] = struct{}{}

	inherited := p.parent
	var resolved *Context
	manifestPath := filepath.Join(p.dir, w.manifestName)
	present, err := isManifest(manifestPath)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, manifestPath, "stat manifest", "", err)
	}
	if present {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, faults.Wrap(faults.ErrStructural, manifestPath, "load manifest", "", err)
		}
		resolved, err = Resolve(p.dir, manifestPath, m, p.parent)
		if err != nil {
			return nil, err
		}
		inherited = resolved
		w.logManifest(resolved)
	}

	children, err := w.subdirectories(p.dir)
	if err != nil {
		return nil, err
	}
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, pending{dir: children[i], parent: inherited})
	}
	return resolved, nil
}

// subdirectories lists child directories in lexical order, following
// symlinks that point at directories outside the walk root. A link into the
// root is skipped so its target is resolved under its real parent.
func (w *Walker) subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStructural, dir, "read directory", "", err)
	}
	var out []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			out = append(out, path)
		case entry.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				logging.WarnWithContext(w.logger, "skipping broken symlink", "broken_symlink",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove or fix the symlink"),
					logging.String(logging.FieldImpact, "the link target is not scanned"),
				)
				continue
			}
			if !info.IsDir() {
				continue
			}
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil, faults.Wrap(faults.ErrStructural, path, "resolve directory", "", err)
			}
			if within(w.realRoot, target) {
				w.logger.Debug("skipping symlink into source tree", logging.String("path", path), logging.String("real_path", target))
				continue
			}
			out = append(out, path)
		}
	}
	return out, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (w *Walker) logManifest(ctx *Context) {
	w.logger.Debug("manifest resolved",
		logging.String(logging.FieldManifest, ctx.ManifestPath),
		logging.Int("authors_in_scope", len(ctx.Authors)),
		logging.Int("wallpapers", len(ctx.Manifest.Wallpapers)),
	)
	for _, key := range ctx.Manifest.InvalidLocales() {
		logging.WarnWithContext(w.logger, "locale key is not a valid language tag", "invalid_locale",
			logging.String(logging.FieldManifest, ctx.ManifestPath),
			logging.String("key", key),
			logging.String(logging.FieldErrorHint, "use tags like en, en-US or zh_CN"),
			logging.String(logging.FieldImpact, "generators emit the key verbatim"),
		)
	}
	for _, key := range ctx.Manifest.UnknownKeys {
		logging.WarnWithContext(w.logger, "manifest key is not recognized", "unknown_manifest_key",
			logging.String(logging.FieldManifest, ctx.ManifestPath),
			logging.String("key", key),
			logging.String(logging.FieldErrorHint, "check the key name for typos"),
			logging.String(logging.FieldImpact, "the value is ignored"),
		)
	}
}

func isManifest(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}
