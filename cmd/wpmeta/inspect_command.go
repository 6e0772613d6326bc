package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language/display"

	"wpmeta/internal/build"
	"wpmeta/internal/config"
	"wpmeta/internal/localized"
	"wpmeta/internal/staging"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var source string
	var showStaged bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Walk a source tree and show resolved manifests without staging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			root := cfg.Paths.SourceDir
			if v := strings.TrimSpace(source); v != "" {
				if root, err = config.ExpandPath(v); err != nil {
					return fmt.Errorf("resolve --src: %w", err)
				}
			}
			if root == "" {
				return fmt.Errorf("no source tree: pass --src or set paths.source_dir")
			}

			plan, err := build.Discover(root, cfg.Build.ManifestName, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlan(plan))
			if len(plan.Jobs) > 0 {
				fmt.Fprintln(out, renderWallpaperEntries(plan))
			}
			if err := plan.CheckDuplicates(); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}

			if showStaged {
				dirs, err := staging.ListWallpapers(cfg.Paths.StagingDir)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStaged(dirs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "src", "s", "", "Source tree holding metadata.toml files")
	cmd.Flags().BoolVar(&showStaged, "staged", false, "Also list wallpapers already in the staging root")
	return cmd
}

func renderPlan(plan *build.Plan) string {
	headers := []string{"Manifest", "Authors in scope", "Wallpapers"}
	rows := make([][]string, 0, len(plan.Contexts))
	for _, c := range plan.Contexts {
		emails := make([]string, 0, len(c.Authors))
		for _, a := range c.Authors {
			emails = append(emails, a.Email)
		}
		ids := make([]string, 0, len(c.Manifest.Wallpapers))
		for _, w := range c.Manifest.Wallpapers {
			ids = append(ids, w.ID)
		}
		rows = append(rows, []string{
			relativeTo(plan.Root, c.ManifestPath),
			strings.Join(emails, ", "),
			strings.Join(ids, ", "),
		})
	}
	return renderTable(headers, rows, nil)
}

func renderWallpaperEntries(plan *build.Plan) string {
	headers := []string{"ID", "Title", "Languages", "License", "Files", "Option", "Shading"}
	rows := make([][]string, 0, len(plan.Jobs))
	for _, job := range plan.Jobs {
		title, _ := job.Entry.Title.Default()
		rows = append(rows, []string{
			job.Entry.ID,
			title,
			languageNames(job.Entry.Title),
			job.Entry.License,
			strconv.Itoa(len(job.Entry.Path.Paths())),
			string(job.Entry.Option),
			string(job.Entry.ShadeType),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}

// languageNames lists the English display names of the title's locales.
func languageNames(title localized.Localized[string]) string {
	locales := title.Locales()
	if len(locales) == 0 {
		return "-"
	}
	namer := display.English.Tags()
	names := make([]string, 0, len(locales))
	for _, l := range locales {
		tag, err := l.Tag()
		if err != nil {
			names = append(names, l.String())
			continue
		}
		names = append(names, namer.Name(tag))
	}
	return strings.Join(names, ", ")
}

func renderStaged(dirs []staging.DirInfo) string {
	headers := []string{"Staged ID", "Files", "Size", "Modified"}
	rows := make([][]string, 0, len(dirs))
	for _, d := range dirs {
		rows = append(rows, []string{
			d.Name,
			strconv.Itoa(d.Files),
			humanize.IBytes(uint64(d.Size)),
			humanize.Time(d.ModTime),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight})
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

