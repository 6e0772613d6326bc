package testsupport

import (
	"path/filepath"
	"testing"

	"wpmeta/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source tree lives in <base>/src and is not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "src")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Build.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceDir points the config at an existing source tree.
func WithSourceDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.SourceDir = dir
	}
}

// WithGenerators replaces the generator list.
func WithGenerators(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.Generators = append([]string(nil), names...)
	}
}

// WithWorkers sets the normalization fan-out.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.Workers = n
	}
}

// WithoutLedger disables the build ledger.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}

// WithAllowDuplicateIDs lets later declarations of an id replace earlier ones.
func WithAllowDuplicateIDs() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.AllowDuplicateIDs = true
	}
}
