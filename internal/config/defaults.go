package config

import "wpmeta/internal/manifest"

const (
	defaultStagingDir         = "~/.local/share/wpmeta/staging"
	defaultStateDir           = "~/.local/share/wpmeta"
	defaultPreviewWidth       = 500
	defaultPreviewHeight      = 500
	defaultLockTimeoutSeconds = 30
	defaultPrimaryColor       = "#023C88"
	defaultSecondaryColor     = "#5789CA"
	defaultLedgerFile         = "ledger.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// KnownGenerators lists the generator names accepted in build.generators.
var KnownGenerators = []string{"gnome", "kde"}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
		},
		Build: Build{
			ManifestName:       manifest.DefaultFileName,
			Generators:         append([]string(nil), KnownGenerators...),
			PreviewWidth:       defaultPreviewWidth,
			PreviewHeight:      defaultPreviewHeight,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Colors: Colors{
			Primary:   defaultPrimaryColor,
			Secondary: defaultSecondaryColor,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
