// Package manifest decodes the metadata.toml files that describe authors and
// wallpapers for one directory of the source tree.
//
// The decoded Manifest is the raw, per-directory view: authors are not yet
// merged with ancestors and wallpaper files have not been touched. Package
// tree resolves inheritance and package wallpaper turns entries into staged,
// normalized wallpapers.
package manifest
