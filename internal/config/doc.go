// Package config loads, normalizes, and validates wpmeta configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides such as WPMETA_SOURCE_DIR and
// WPMETA_LOG_LEVEL. Command-line flags are applied on top by cmd/wpmeta.
package config
