package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wpmeta/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded builds, or the files staged by one build",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return errors.New("build ledger is disabled (ledger.enabled = false)")
			}
			store, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				files, err := store.Files(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s (%s) %s -> %s\n", run.ID, run.Status, run.SourceDir, run.StagingDir)
				if run.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", run.Error)
				}
				fmt.Fprintln(out, renderStagedFiles(files))
				return nil
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No builds recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 = all)")
	return cmd
}

func renderRuns(runs []ledger.Run, colorize bool) string {
	headers := []string{"Run", "Started", "Duration", "Status", "Wallpapers", "Source"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			humanize.Time(r.StartedAt),
			duration,
			colorizeStatus(r.Status, colorize),
			strconv.Itoa(r.Wallpapers),
			r.SourceDir,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight})
}

func renderStagedFiles(files []ledger.StagedFile) string {
	headers := []string{"Wallpaper", "Variant", "Resolution", "Format", "Path"}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.WallpaperID,
			f.Variant,
			fmt.Sprintf("%dx%d", f.Width, f.Height),
			f.Format,
			f.Path,
		})
	}
	return renderTable(headers, rows, nil)
}

func colorizeStatus(status ledger.Status, colorize bool) string {
	kind := statusInfo
	switch status {
	case ledger.StatusSucceeded:
		kind = statusOK
	case ledger.StatusFailed:
		kind = statusError
	}
	text := string(status)
	if colorize {
		return statusKindColor(kind) + text + ansiReset
	}
	return text
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
