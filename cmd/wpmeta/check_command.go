package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wpmeta/internal/config"
	"wpmeta/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var source string

	return &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks against the configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if v := strings.TrimSpace(source); v != "" {
				if cfg.Paths.SourceDir, err = config.ExpandPath(v); err != nil {
					return fmt.Errorf("resolve --src: %w", err)
				}
			}

			results := preflight.RunAll(cmd.Context(), &cfg)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
