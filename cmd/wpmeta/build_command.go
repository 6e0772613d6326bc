package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wpmeta/internal/build"
	"wpmeta/internal/config"
	"wpmeta/internal/ledger"
	"wpmeta/internal/wallpaper"
)

type buildFlags struct {
	source       string
	staging      string
	preview      string
	workers      int
	generators   []string
	pruneOrphans bool
	noLedger     bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Stage wallpapers and generate desktop metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyBuildFlags(*base, cmd, flags)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := build.Options{
				Config:       cfg,
				Logger:       logger,
				PruneOrphans: flags.pruneOrphans,
			}
			if cfg.Ledger.Enabled {
				store, err := ledger.Open(cfg.Ledger.Path)
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Ledger = store
			}

			builder, err := build.New(opts)
			if err != nil {
				return err
			}
			result, err := builder.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Collection.Len() > 0 {
				fmt.Fprintln(out, renderCollection(result.Collection))
			}
			fmt.Fprintf(out, "Run %s: %d wallpapers (%d files) from %d manifests staged into %s in %s\n",
				result.RunID,
				result.Collection.Len(),
				result.Collection.FileCount(),
				result.Manifests,
				cfg.Paths.StagingDir,
				result.Duration.Round(time.Millisecond),
			)
			if result.Overridden > 0 {
				fmt.Fprintf(out, "%d redeclared wallpaper ids were overridden\n", result.Overridden)
			}
			if len(result.Pruned) > 0 {
				fmt.Fprintf(out, "Removed %d orphaned staging entries\n", len(result.Pruned))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.source, "src", "s", "", "Source tree holding metadata.toml files")
	cmd.Flags().StringVarP(&flags.staging, "dst", "d", "", "Staging root to write the package tree into")
	cmd.Flags().StringVarP(&flags.preview, "preview-resolution-limit", "p", "", "Maximum preview size as W,H")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel normalization jobs (0 = config value)")
	cmd.Flags().StringSliceVar(&flags.generators, "generator", nil, "Generator to run (repeatable; default from config)")
	cmd.Flags().BoolVar(&flags.pruneOrphans, "prune-orphans", false, "Remove staged wallpapers no longer in the source tree")
	cmd.Flags().BoolVar(&flags.noLedger, "no-ledger", false, "Do not record this run in the build ledger")
	return cmd
}

// applyBuildFlags returns a copy of cfg with the command line overrides
// applied and validated.
func applyBuildFlags(cfg config.Config, cmd *cobra.Command, flags buildFlags) (*config.Config, error) {
	if v := strings.TrimSpace(flags.source); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, fmt.Errorf("resolve --src: %w", err)
		}
		cfg.Paths.SourceDir = expanded
	}
	if v := strings.TrimSpace(flags.staging); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, fmt.Errorf("resolve --dst: %w", err)
		}
		cfg.Paths.StagingDir = expanded
	}
	if v := strings.TrimSpace(flags.preview); v != "" {
		w, h, err := parsePreviewLimit(v)
		if err != nil {
			return nil, err
		}
		cfg.Build.PreviewWidth, cfg.Build.PreviewHeight = w, h
	}
	if cmd.Flags().Changed("workers") {
		if flags.workers < 0 {
			return nil, fmt.Errorf("--workers must be >= 0")
		}
		cfg.Build.Workers = flags.workers
	}
	if len(flags.generators) > 0 {
		cfg.Build.Generators = nil
		for _, name := range flags.generators {
			cfg.Build.Generators = append(cfg.Build.Generators, strings.ToLower(strings.TrimSpace(name)))
		}
	}
	if flags.noLedger {
		cfg.Ledger.Enabled = false
	}
	if cfg.Paths.SourceDir == "" {
		return nil, fmt.Errorf("no source tree: pass --src or set paths.source_dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parsePreviewLimit parses "W,H" (an "x" separator is accepted too).
func parsePreviewLimit(value string) (int, int, error) {
	sep := ","
	if !strings.Contains(value, sep) {
		sep = "x"
	}
	wRaw, hRaw, ok := strings.Cut(value, sep)
	if !ok {
		return 0, 0, fmt.Errorf("invalid preview resolution %q (want W,H)", value)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(wRaw))
	h, errH := strconv.Atoi(strings.TrimSpace(hRaw))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid preview resolution %q (want positive W,H)", value)
	}
	return w, h, nil
}

func renderCollection(col wallpaper.Collection) string {
	headers := []string{"ID", "Title", "License", "Authors", "Normal", "Dark"}
	rows := make([][]string, 0, col.Len())
	for _, wp := range col {
		title, _ := wp.Title.Default()
		authors := make([]string, 0, len(wp.Authors))
		for _, a := range wp.Authors {
			authors = append(authors, a.Email)
		}
		rows = append(rows, []string{
			wp.ID,
			title,
			wp.License,
			strings.Join(authors, ", "),
			resolutions(wp.FilesOf(wallpaper.Normal)),
			resolutions(wp.FilesOf(wallpaper.Dark)),
		})
	}
	return renderTable(headers, rows, nil)
}

func resolutions(files []wallpaper.File) string {
	if len(files) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, f.Resolution.String())
	}
	return strings.Join(parts, " ")
}
