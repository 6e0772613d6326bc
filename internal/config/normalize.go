package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBuild()
	c.Colors.Primary = strings.TrimSpace(c.Colors.Primary)
	c.Colors.Secondary = strings.TrimSpace(c.Colors.Secondary)
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

// applyEnv lets environment variables override values from the file.
// WPMETA_LOG is the older name for WPMETA_LOG_LEVEL.
func (c *Config) applyEnv() {
	if value, ok := lookupEnv("WPMETA_SOURCE_DIR"); ok {
		c.Paths.SourceDir = value
	}
	if value, ok := lookupEnv("WPMETA_STAGING_DIR"); ok {
		c.Paths.StagingDir = value
	}
	if value, ok := lookupEnv("WPMETA_LOG_LEVEL"); ok {
		c.Logging.Level = value
	} else if value, ok := lookupEnv("WPMETA_LOG"); ok {
		c.Logging.Level = value
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBuild() {
	c.Build.ManifestName = strings.TrimSpace(c.Build.ManifestName)
	if c.Build.ManifestName == "" {
		c.Build.ManifestName = Default().Build.ManifestName
	}
	generators := make([]string, 0, len(c.Build.Generators))
	seen := make(map[string]struct{}, len(c.Build.Generators))
	for _, name := range c.Build.Generators {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		generators = append(generators, name)
	}
	c.Build.Generators = generators
	if c.Build.PreviewWidth == 0 {
		c.Build.PreviewWidth = defaultPreviewWidth
	}
	if c.Build.PreviewHeight == 0 {
		c.Build.PreviewHeight = defaultPreviewHeight
	}
}

func (c *Config) normalizeLedger() error {
	path := strings.TrimSpace(c.Ledger.Path)
	if path == "" {
		c.Ledger.Path = filepath.Join(c.Paths.StateDir, defaultLedgerFile)
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	c.Ledger.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
