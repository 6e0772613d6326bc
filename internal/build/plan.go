package build

import (
	"fmt"
	"log/slog"
	"strings"

	"wpmeta/internal/faults"
	"wpmeta/internal/logging"
	"wpmeta/internal/manifest"
	"wpmeta/internal/tree"
)

// Job is one wallpaper entry together with the context it was declared in.
type Job struct {
	// Group is the index of the declaring manifest in discovery order.
	Group int
	// Index is the position of the entry within its manifest.
	Index   int
	Entry   manifest.Wallpaper
	Context *tree.Context
}

// Plan is the outcome of walking and resolving a source tree before anything
// is staged.
type Plan struct {
	Root     string
	Contexts []*tree.Context
	Jobs     []Job
	// Overridden lists jobs dropped because a later manifest redeclared
	// their id. It is only populated when duplicates are allowed.
	Overridden []Job
}

// Discover walks root and resolves every manifest. It stops at the first
// structural or inheritance error.
func Discover(root, manifestName string, logger *slog.Logger) (*Plan, error) {
	walker, err := tree.NewWalker(root,
		tree.WithManifestName(manifestName),
		tree.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Root: walker.Root()}
	for ctx, err := range walker.All() {
		if err != nil {
			return nil, err
		}
		group := len(plan.Contexts)
		plan.Contexts = append(plan.Contexts, ctx)
		for i, entry := range ctx.Manifest.Wallpapers {
			plan.Jobs = append(plan.Jobs, Job{Group: group, Index: i, Entry: entry, Context: ctx})
		}
	}
	return plan, nil
}

// CheckDuplicates fails when two manifests declare the same wallpaper id.
// The error names every manifest involved.
func (p *Plan) CheckDuplicates() error {
	seen := make(map[string][]string, len(p.Jobs))
	var order []string
	for _, job := range p.Jobs {
		if _, ok := seen[job.Entry.ID]; !ok {
			order = append(order, job.Entry.ID)
		}
		seen[job.Entry.ID] = append(seen[job.Entry.ID], job.Context.ManifestPath)
	}
	var problems []string
	for _, id := range order {
		if paths := seen[id]; len(paths) > 1 {
			problems = append(problems, fmt.Sprintf("%s (declared in %s)", id, strings.Join(paths, ", ")))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrDuplicateID, p.Root, "check wallpaper ids", strings.Join(problems, "; "), nil)
}

// KeepLast drops every job whose id is declared again later in discovery
// order, so the deepest or last visited declaration wins.
func (p *Plan) KeepLast(logger *slog.Logger) {
	last := make(map[string]int, len(p.Jobs))
	for i, job := range p.Jobs {
		last[job.Entry.ID] = i
	}
	kept := p.Jobs[:0:0]
	for i, job := range p.Jobs {
		if last[job.Entry.ID] == i {
			kept = append(kept, job)
			continue
		}
		winner := p.Jobs[last[job.Entry.ID]]
		p.Overridden = append(p.Overridden, job)
		logging.WarnWithContext(logger, "wallpaper id redeclared, later declaration wins", "duplicate_id_overridden",
			logging.String(logging.FieldWallpaperID, job.Entry.ID),
			logging.String(logging.FieldManifest, job.Context.ManifestPath),
			logging.String("winner", winner.Context.ManifestPath),
			logging.String(logging.FieldImpact, "earlier declaration is not staged"),
		)
	}
	p.Jobs = kept
}

// WallpaperCount is the number of entries left to normalize.
func (p *Plan) WallpaperCount() int { return len(p.Jobs) }
