package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"wpmeta/internal/manifest"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateColors(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBuild() error {
	name := c.Build.ManifestName
	if name == "" || strings.ContainsRune(name, filepath.Separator) || name == "." || name == ".." {
		return fmt.Errorf("build.manifest_name must be a plain file name, got %q", name)
	}
	if c.Build.Workers < 0 {
		return errors.New("build.workers must be >= 0")
	}
	for _, generator := range c.Build.Generators {
		if !slices.Contains(KnownGenerators, generator) {
			return fmt.Errorf("build.generators: unknown generator %q (known: %s)", generator, strings.Join(KnownGenerators, ", "))
		}
	}
	if c.Build.PreviewWidth <= 0 || c.Build.PreviewHeight <= 0 {
		return errors.New("build.preview_width and build.preview_height must be positive")
	}
	if c.Build.LockTimeoutSeconds < 0 {
		return errors.New("build.lock_timeout_seconds must be >= 0")
	}
	if c.Paths.StagingDir != "" && c.Paths.SourceDir != "" && c.Paths.StagingDir == c.Paths.SourceDir {
		return errors.New("paths.staging_dir must differ from paths.source_dir")
	}
	return nil
}

func (c *Config) validateColors() error {
	if _, err := manifest.ParseColor(c.Colors.Primary); err != nil {
		return fmt.Errorf("colors.primary: %w", err)
	}
	if _, err := manifest.ParseColor(c.Colors.Secondary); err != nil {
		return fmt.Errorf("colors.secondary: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
