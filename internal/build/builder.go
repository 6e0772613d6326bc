package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wpmeta/internal/config"
	"wpmeta/internal/faults"
	"wpmeta/internal/generate"
	"wpmeta/internal/ledger"
	"wpmeta/internal/logging"
	"wpmeta/internal/staging"
	"wpmeta/internal/wallpaper"
)

// Options wires a Builder to its collaborators.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Generators run after normalization. Nil builds them from
	// cfg.Build.Generators; an empty non-nil slice disables generation.
	Generators []generate.Generator
	// Ledger records the run when set.
	Ledger *ledger.Store
	// PruneOrphans removes staged wallpapers whose id no longer appears in
	// the source tree.
	PruneOrphans bool
}

// Result summarizes a finished build.
type Result struct {
	RunID      string
	Collection wallpaper.Collection
	Manifests  int
	Generated  int
	Overridden int
	Pruned     []string
	Duration   time.Duration
}

// Builder runs the pipeline for one configuration.
type Builder struct {
	cfg          *config.Config
	base         *slog.Logger
	generators   []generate.Generator
	ledger       *ledger.Store
	pruneOrphans bool
}

// New validates opts and returns a Builder.
func New(opts Options) (*Builder, error) {
	if opts.Config == nil {
		return nil, errors.New("build: config is required")
	}
	gens := opts.Generators
	if gens == nil {
		primary, secondary := opts.Config.DefaultColors()
		selected, err := generate.Select(opts.Config.Build.Generators, generate.Options{
			PrimaryColor:   primary,
			SecondaryColor: secondary,
			PreviewWidth:   opts.Config.Build.PreviewWidth,
			PreviewHeight:  opts.Config.Build.PreviewHeight,
			Logger:         opts.Logger,
		})
		if err != nil {
			return nil, faults.Wrap(faults.ErrConfiguration, "build.generators", "select generators", "", err)
		}
		gens = selected
	}
	return &Builder{
		cfg:          opts.Config,
		base:         opts.Logger,
		generators:   gens,
		ledger:       opts.Ledger,
		pruneOrphans: opts.PruneOrphans,
	}, nil
}

// Run executes one build. The returned error is the first failure; the
// staging root may then hold a partial result, which the next successful
// build brings back in line.
func (b *Builder) Run(ctx context.Context) (result *Result, err error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	runLogger := logging.WithRunID(b.base, runID)
	logger := logging.NewComponentLogger(runLogger, "build")
	source := b.cfg.Paths.SourceDir
	stagingRoot := b.cfg.Paths.StagingDir

	logger.Info("build started",
		logging.String(logging.FieldEventType, "build_start"),
		logging.String("source_dir", source),
		logging.String("staging_dir", stagingRoot),
		logging.Int("workers", b.cfg.WorkerCount()),
	)

	plan, err := Discover(source, b.cfg.Build.ManifestName, runLogger)
	if err != nil {
		return nil, err
	}
	if b.cfg.Build.AllowDuplicateIDs {
		plan.KeepLast(logger)
	} else if err := plan.CheckDuplicates(); err != nil {
		return nil, err
	}

	lock, err := staging.Acquire(ctx, stagingRoot, time.Duration(b.cfg.LockTimeout())*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil {
			logger.Warn("release staging lock failed", logging.Error(relErr))
		}
	}()

	if b.ledger != nil {
		if _, err := b.ledger.BeginRun(ctx, runID, source, stagingRoot); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
		defer func() {
			count := 0
			if result != nil {
				count = result.Collection.Len()
			}
			if finErr := b.ledger.FinishRun(context.WithoutCancel(ctx), runID, count, err); finErr != nil {
				logger.Warn("record run finish failed", logging.Error(finErr))
			}
		}()
	}

	col, err := b.normalize(ctx, plan, runLogger)
	if err != nil {
		b.logFailure(logger, err)
		return nil, err
	}
	generated, err := b.runGenerators(ctx, col)
	if err != nil {
		b.logFailure(logger, err)
		return nil, err
	}

	result = &Result{
		RunID:      runID,
		Collection: col,
		Manifests:  len(plan.Contexts),
		Generated:  generated,
		Overridden: len(plan.Overridden),
	}

	if b.pruneOrphans {
		active := make(map[string]struct{}, col.Len())
		for _, id := range col.IDs() {
			active[id] = struct{}{}
		}
		cleanup := staging.RemoveOrphans(ctx, stagingRoot, active, logger)
		result.Pruned = cleanup.Removed
		for _, e := range cleanup.Errors {
			logging.WarnWithContext(logger, "failed to remove orphaned wallpaper", "staging_orphan_cleanup",
				logging.String("path", e.Path),
				logging.Error(e.Error),
			)
		}
	}

	if b.ledger != nil {
		if err := b.ledger.RecordWallpapers(ctx, runID, col); err != nil {
			return nil, fmt.Errorf("record staged files: %w", err)
		}
	}

	result.Duration = time.Since(started)
	logger.Info("build finished",
		logging.String(logging.FieldEventType, "build_complete"),
		logging.Int("manifests", result.Manifests),
		logging.Int("wallpapers", col.Len()),
		logging.Int("files", col.FileCount()),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// normalize stages every job with at most WorkerCount jobs in flight. Each
// job writes its own slot so the collection keeps discovery order.
func (b *Builder) normalize(ctx context.Context, plan *Plan, logger *slog.Logger) (wallpaper.Collection, error) {
	normalizer := wallpaper.NewNormalizer(b.cfg.Paths.StagingDir, wallpaper.WithLogger(logger))

	groups := make([][]*wallpaper.Wallpaper, len(plan.Contexts))
	for i, c := range plan.Contexts {
		groups[i] = make([]*wallpaper.Wallpaper, len(c.Manifest.Wallpapers))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.WorkerCount())
	for _, job := range plan.Jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wp, err := normalizer.Normalize(gctx, job.Entry, job.Context.Authors, job.Context.Dir)
			if err != nil {
				return err
			}
			groups[job.Group][job.Index] = wp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return wallpaper.Flatten(groups), nil
}

// runGenerators runs every generator for every wallpaper and returns the number
// of documents produced.
func (b *Builder) runGenerators(ctx context.Context, col wallpaper.Collection) (int, error) {
	if len(b.generators) == 0 || col.Len() == 0 {
		return 0, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.WorkerCount())
	for _, wp := range col {
		for _, gen := range b.generators {
			g.Go(func() error {
				if err := gen.Generate(gctx, b.cfg.Paths.StagingDir, wp); err != nil {
					if errors.Is(err, faults.ErrGenerate) {
						return err
					}
					return faults.Wrap(faults.ErrGenerate, wp.ID, "run "+gen.Name()+" generator", "", err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return col.Len() * len(b.generators), nil
}

func (b *Builder) logFailure(logger *slog.Logger, err error) {
	logging.ErrorWithContext(logger, "build failed", "build_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, faults.Kind(err)),
	)
}
